package views

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/docadmin/internal/logging"
)

// Authenticator exchanges credentials for a stored session token.
type Authenticator interface {
	Login(ctx context.Context, username string, password []byte) error
}

// LoginScreen is mounted on /login.
type LoginScreen struct {
	auth   Authenticator
	notify Notifier
	log    logging.Logger
}

func NewLoginScreen(auth Authenticator, n Notifier, log logging.Logger) *LoginScreen {
	if log == nil {
		log = logging.Nop()
	}
	return &LoginScreen{auth: auth, notify: orNop(n), log: log}
}

func (s *LoginScreen) Mount(context.Context) error { return nil }

func (s *LoginScreen) Render(w io.Writer) {
	fmt.Fprintln(w, "Not signed in. Use: login <username>")
}

func (s *LoginScreen) Login(ctx context.Context, username string, password []byte) error {
	if err := s.auth.Login(ctx, username, password); err != nil {
		s.log.Warn(ctx, "login failed", "user", username, "error", err)
		failure(s.notify, fmt.Sprintf("login failed: %v", err))
		return err
	}
	success(s.notify, "login success")
	return nil
}
