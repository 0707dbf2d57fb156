// Package session owns the console's login state: the bearer token kept in
// the local store and the subscribers interested in login/logout.
package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/docadmin/internal/common"
	"github.com/dmitrijs2005/docadmin/internal/logging"
)

// Listener is called with the new login state after it changes.
type Listener func(loggedIn bool)

// Session reads and writes the token through a Store. It satisfies
// client.TokenSource.
type Session struct {
	mu    sync.Mutex
	store Store
	log   logging.Logger

	subsMu sync.Mutex
	subs   map[int]Listener
	nextID int
}

func New(store Store, log logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	return &Session{store: store, log: log, subs: make(map[int]Listener)}
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return c.Token, nil
}

// Username returns the name given at login, if any.
func (s *Session) Username(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx)
	if err != nil {
		return ""
	}
	return c.Username
}

// LoggedIn reports whether a token is present. A store failure counts as
// logged out.
func (s *Session) LoggedIn(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		s.log.Warn(ctx, "session state unknown", "error", err)
		return false
	}
	return token != ""
}

// SetToken stores token for username and notifies subscribers when the
// session was logged out before.
func (s *Session) SetToken(ctx context.Context, username, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return common.ErrInvalidToken
	}

	s.mu.Lock()
	prev, _ := s.store.Load(ctx)
	err := s.store.Save(ctx, Credentials{Token: token, Username: username})
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	s.log.Info(ctx, "session opened", "user", username)
	if prev.Token == "" {
		s.notify(true)
	}
	return nil
}

// Clear removes the token and notifies subscribers when the session was
// logged in before.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	prev, _ := s.store.Load(ctx)
	err := s.store.Clear(ctx)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}

	s.log.Info(ctx, "session closed")
	if prev.Token != "" {
		s.notify(false)
	}
	return nil
}

// Subscribe registers fn for login state changes. The returned func removes
// it. Listeners run synchronously, in registration order, on the goroutine
// that changed the state.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Session) notify(loggedIn bool) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range listeners {
		fn(loggedIn)
	}
}

// TokenInfo is what can be read from the token without verifying it.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	// Opaque is true when the token is not a JWT.
	Opaque bool
}

// Expired reports whether the token carries an expiry that lies before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Info decodes the stored token's claims without checking the signature.
// The backend stays the only authority on validity; this is for display.
func (s *Session) Info(ctx context.Context) (TokenInfo, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return TokenInfo{}, err
	}
	if token == "" {
		return TokenInfo{}, common.ErrorNotLoggedIn
	}
	return InspectToken(token), nil
}

// InspectToken reads subject and expiry from a JWT. Tokens that do not parse
// as JWT are reported as opaque.
func InspectToken(token string) TokenInfo {
	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return TokenInfo{Opaque: true}
	}

	info := TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}
