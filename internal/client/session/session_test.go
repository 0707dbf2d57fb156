package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/common"
)

func newSQLiteSession(t *testing.T) *Session {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(NewSQLiteStore(db), nil)
}

type failingStore struct {
	loadErr, saveErr, clearErr error
	creds                      Credentials
}

func (f *failingStore) Load(context.Context) (Credentials, error) { return f.creds, f.loadErr }
func (f *failingStore) Save(_ context.Context, c Credentials) error {
	if f.saveErr == nil {
		f.creds = c
	}
	return f.saveErr
}
func (f *failingStore) Clear(context.Context) error {
	if f.clearErr == nil {
		f.creds = Credentials{}
	}
	return f.clearErr
}

func TestSession_SetTokenAndRead(t *testing.T) {
	s := newSQLiteSession(t)
	ctx := context.Background()

	assert.False(t, s.LoggedIn(ctx))
	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SetToken(ctx, "admin", "abc.def"))

	assert.True(t, s.LoggedIn(ctx))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)
	assert.Equal(t, "admin", s.Username(ctx))
}

func TestSession_ClearRemovesToken(t *testing.T) {
	s := newSQLiteSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetToken(ctx, "admin", "abc"))
	require.NoError(t, s.Clear(ctx))

	assert.False(t, s.LoggedIn(ctx))
	assert.Empty(t, s.Username(ctx))
}

func TestSession_SetTokenRejectsBlank(t *testing.T) {
	s := newSQLiteSession(t)
	require.ErrorIs(t, s.SetToken(context.Background(), "admin", "  "), common.ErrInvalidToken)
}

func TestSession_SubscribersNotifiedOnStateChange(t *testing.T) {
	s := newSQLiteSession(t)
	ctx := context.Background()

	var events []bool
	var order []string
	unsub := s.Subscribe(func(loggedIn bool) {
		events = append(events, loggedIn)
		order = append(order, "first")
	})
	s.Subscribe(func(bool) { order = append(order, "second") })

	require.NoError(t, s.SetToken(ctx, "admin", "t1"))
	require.NoError(t, s.SetToken(ctx, "admin", "t2"))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []bool{true, false}, events)
	assert.Equal(t, []string{"first", "second", "first", "second"}, order)

	unsub()
	require.NoError(t, s.SetToken(ctx, "admin", "t3"))
	assert.Equal(t, []bool{true, false}, events)
}

func TestSession_ListenerMayReadSession(t *testing.T) {
	s := newSQLiteSession(t)
	ctx := context.Background()

	var seen bool
	s.Subscribe(func(bool) { seen = s.LoggedIn(ctx) })

	require.NoError(t, s.SetToken(ctx, "", "tok"))
	assert.True(t, seen)
}

func TestSession_StoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("database is locked")

	s := New(&failingStore{loadErr: boom}, nil)
	_, err := s.Token(ctx)
	require.ErrorIs(t, err, boom)
	assert.False(t, s.LoggedIn(ctx))

	notified := false
	s = New(&failingStore{saveErr: boom}, nil)
	s.Subscribe(func(bool) { notified = true })
	require.ErrorIs(t, s.SetToken(ctx, "u", "tok"), boom)
	assert.False(t, notified)

	s = New(&failingStore{clearErr: boom, creds: Credentials{Token: "x"}}, nil)
	require.ErrorIs(t, s.Clear(ctx), boom)
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	info := InspectToken(signed)
	assert.False(t, info.Opaque)
	assert.Equal(t, "admin", info.Subject)
	assert.True(t, exp.Equal(info.ExpiresAt))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Minute)))

	opaque := InspectToken("3f2a9c1e-opaque")
	assert.True(t, opaque.Opaque)
	assert.False(t, opaque.Expired(time.Now()))
}

func TestSession_Info(t *testing.T) {
	s := newSQLiteSession(t)
	ctx := context.Background()

	_, err := s.Info(ctx)
	require.ErrorIs(t, err, common.ErrorNotLoggedIn)

	require.NoError(t, s.SetToken(ctx, "admin", "opaque-token"))
	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Opaque)
}
