package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docadmin/internal/client/views"
	"github.com/dmitrijs2005/docadmin/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Login asks for the password (and the user name unless given as argument)
// and stores the returned token. The menu follows the session; the current
// screen is rebuilt so it queries with the new token.
//
// The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context, args []string) error {
	if a.isLoggedIn(ctx) {
		printlnFn("Already logged in as", a.session.Username(ctx))
		return nil
	}
	if len(args) > 1 {
		return usage("login [user]")
	}

	var userName string
	if len(args) == 1 {
		userName = args[0]
	} else {
		var err error
		if userName, err = getSimpleText(a.reader, "Enter user name", a.out); err != nil {
			return err
		}
	}
	if userName == "" {
		return errors.New("user name is required")
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.login.Login(ctx, userName, password); err != nil {
		return notified(err)
	}

	// Leave the login screen, or re-mount the current one with the token.
	if path, _ := a.shell.Current(); path == views.RouteLogin || path == "" {
		err = a.shell.Navigate(ctx, views.RouteDefault)
	} else {
		err = a.shell.Reload(ctx)
	}
	a.render()
	return notified(err)
}

// Logout invalidates the token on the server when possible and always
// forgets it locally.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn(ctx) {
		printlnFn("Not logged in")
		return nil
	}
	err := a.shell.Logout(ctx)
	a.render()
	return notified(err)
}

// Whoami prints the user and token expiry read from the stored token.
func (a *App) Whoami(ctx context.Context) error {
	info, err := a.session.Info(ctx)
	if errors.Is(err, common.ErrorNotLoggedIn) {
		printlnFn("Not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	user := common.FirstNonEmpty(a.session.Username(ctx), info.Subject, "(unknown)")
	switch {
	case info.Opaque:
		printlnFn(fmt.Sprintf("%s (opaque token)", user))
	case info.ExpiresAt.IsZero():
		printlnFn(fmt.Sprintf("%s (token without expiry)", user))
	case info.Expired(time.Now()):
		printlnFn(fmt.Sprintf("%s (token expired at %s)", user, info.ExpiresAt.Format(time.DateTime)))
	default:
		printlnFn(fmt.Sprintf("%s (token valid until %s)", user, info.ExpiresAt.Format(time.DateTime)))
	}
	return nil
}
