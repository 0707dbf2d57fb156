package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/common"
)

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/logout/"
)

// TokenStore receives the token after a successful login.
type TokenStore interface {
	SetToken(ctx context.Context, username, token string) error
}

// AuthService defines authentication calls for the console.
//
//   - Login exchanges credentials for a bearer token and stores it.
//   - Logout asks the backend to invalidate token. It does not touch the
//     local session; callers clear it regardless of the result.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context, token string) error
}

type authService struct {
	client client.Client
	tokens TokenStore
}

func NewAuthService(c client.Client, tokens TokenStore) AuthService {
	return &authService{client: c, tokens: tokens}
}

func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	req := models.LoginRequest{Username: username, Password: string(password)}

	var resp models.LoginResponse
	if err := a.client.Post(ctx, loginPath, req, &resp); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("login error: %w", common.ErrInvalidToken)
	}

	if err := a.tokens.SetToken(ctx, username, resp.Token); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrorNotLoggedIn
	}
	if err := a.client.Post(ctx, logoutPath+url.PathEscape(token), nil, nil); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

// IsAuthError reports whether err means the backend rejected the token.
func IsAuthError(err error) bool {
	return errors.Is(err, client.ErrUnauthorized)
}
