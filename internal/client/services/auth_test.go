package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/common"
)

type fakeTokens struct {
	user, token string
	err         error
}

func (f *fakeTokens) SetToken(_ context.Context, user, token string) error {
	if f.err != nil {
		return f.err
	}
	f.user, f.token = user, token
	return nil
}

func TestAuthService_Login(t *testing.T) {
	fc := &fakeClient{PostResp: `{"token":"jwt-abc"}`}
	tokens := &fakeTokens{}
	svc := NewAuthService(fc, tokens)

	require.NoError(t, svc.Login(context.Background(), "admin", []byte("pw")))

	assert.Equal(t, "admin", tokens.user)
	assert.Equal(t, "jwt-abc", tokens.token)
	require.Len(t, fc.calls, 1)
	assert.Equal(t, "/api/auth/login", fc.calls[0].Path)
	assert.Equal(t, models.LoginRequest{Username: "admin", Password: "pw"}, fc.calls[0].Body)
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		svc := NewAuthService(&fakeClient{PostErr: client.ErrUnauthorized}, &fakeTokens{})
		err := svc.Login(context.Background(), "admin", []byte("bad"))
		require.ErrorIs(t, err, client.ErrUnauthorized)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := NewAuthService(&fakeClient{PostResp: `{}`}, &fakeTokens{})
		err := svc.Login(context.Background(), "admin", []byte("pw"))
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("readonly database")
		svc := NewAuthService(&fakeClient{PostResp: `{"token":"t"}`}, &fakeTokens{err: boom})
		err := svc.Login(context.Background(), "admin", []byte("pw"))
		require.ErrorIs(t, err, boom)
	})
}

func TestAuthService_Logout(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeTokens{})

	require.NoError(t, svc.Logout(context.Background(), "abc.def"))
	require.Len(t, fc.calls, 1)
	assert.Equal(t, "/api/logout/abc.def", fc.calls[0].Path)

	require.ErrorIs(t, svc.Logout(context.Background(), ""), common.ErrorNotLoggedIn)

	fc.PostErr = client.ErrUnavailable
	require.ErrorIs(t, svc.Logout(context.Background(), "abc"), client.ErrUnavailable)
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&client.StatusError{Code: 401}))
	assert.True(t, IsAuthError(&client.StatusError{Code: 403}))
	assert.False(t, IsAuthError(&client.StatusError{Code: 500}))
	assert.False(t, IsAuthError(client.ErrUnavailable))
}
