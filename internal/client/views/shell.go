package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/docadmin/internal/client/session"
	"github.com/dmitrijs2005/docadmin/internal/logging"
)

const (
	RouteRoot        = "/"
	RouteDefault     = "/pdf_articles"
	RouteLogin       = "/login"
	maxRedirectChain = 4
)

var ErrUnknownRoute = errors.New("unknown route")

// SessionState is what the shell needs from the session.
type SessionState interface {
	Token(ctx context.Context) (string, error)
	LoggedIn(ctx context.Context) bool
	Clear(ctx context.Context) error
	Subscribe(fn session.Listener) (unsubscribe func())
}

// Logouter invalidates a token on the backend.
type Logouter interface {
	Logout(ctx context.Context, token string) error
}

// ScreenFactory builds a fresh screen for a matched route.
type ScreenFactory func(params map[string]string) (Screen, error)

// Route binds a path pattern such as "/pdf_articles/:id" to a screen.
type Route struct {
	Pattern string
	Title   string
	Build   ScreenFactory
	// Menu puts the route in the navigation menu.
	Menu bool
	// RequiresLogin hides the menu item while logged out.
	RequiresLogin bool
	// GuestOnly hides the menu item while logged in.
	GuestOnly bool
}

// MenuItem is one visible navigation entry.
type MenuItem struct {
	Path  string
	Title string
}

// Shell routes between screens and owns the navigation menu and logout.
type Shell struct {
	routes  []Route
	session SessionState
	auth    Logouter
	notify  Notifier
	log     logging.Logger

	mu       sync.Mutex
	current  string
	screen   Screen
	menu     []MenuItem
	redirect string
	onMenu   func([]MenuItem)
	unsub    func()
}

func NewShell(routes []Route, sess SessionState, auth Logouter, n Notifier, log logging.Logger) *Shell {
	if log == nil {
		log = logging.Nop()
	}
	s := &Shell{
		routes:  routes,
		session: sess,
		auth:    auth,
		notify:  orNop(n),
		log:     log.With("module", "shell"),
	}
	s.menu = s.buildMenu(sess.LoggedIn(context.Background()))
	s.unsub = sess.Subscribe(s.onSessionChange)
	return s
}

// Close detaches the shell from the session.
func (s *Shell) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

// OnMenuChange registers fn to receive the menu after every login state
// change.
func (s *Shell) OnMenuChange(fn func([]MenuItem)) {
	s.mu.Lock()
	s.onMenu = fn
	s.mu.Unlock()
}

func (s *Shell) onSessionChange(loggedIn bool) {
	menu := s.buildMenu(loggedIn)

	s.mu.Lock()
	s.menu = menu
	fn := s.onMenu
	s.mu.Unlock()

	if fn != nil {
		fn(menu)
	}
}

func (s *Shell) buildMenu(loggedIn bool) []MenuItem {
	items := make([]MenuItem, 0, len(s.routes))
	for _, r := range s.routes {
		if !r.Menu {
			continue
		}
		if r.RequiresLogin && !loggedIn {
			continue
		}
		if r.GuestOnly && loggedIn {
			continue
		}
		items = append(items, MenuItem{Path: r.Pattern, Title: r.Title})
	}
	return items
}

// Menu returns the items visible for the current login state.
func (s *Shell) Menu() []MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MenuItem(nil), s.menu...)
}

// Current returns the mounted path and screen.
func (s *Shell) Current() (string, Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.screen
}

// Redirect asks the shell to navigate to path once the running navigation
// finishes. Screens use it from error hooks.
func (s *Shell) Redirect(path string) {
	s.mu.Lock()
	s.redirect = path
	s.mu.Unlock()
}

// FollowRedirect performs a redirect requested while no navigation was
// running, e.g. by a list refreshed from the console. It reports whether
// one was pending.
func (s *Shell) FollowRedirect(ctx context.Context) (bool, error) {
	s.mu.Lock()
	next := s.redirect
	s.redirect = ""
	s.mu.Unlock()

	if next == "" {
		return false, nil
	}
	return true, s.Navigate(ctx, next)
}

// Navigate builds and mounts a fresh screen for path, so every visit
// queries the backend again.
func (s *Shell) Navigate(ctx context.Context, path string) error {
	var err error
	for i := 0; i < maxRedirectChain; i++ {
		err = s.navigate(ctx, path)

		s.mu.Lock()
		next := s.redirect
		s.redirect = ""
		s.mu.Unlock()

		if next == "" || next == path {
			return err
		}
		s.log.Info(ctx, "redirect", "from", path, "to", next)
		path = next
	}
	return err
}

func (s *Shell) navigate(ctx context.Context, path string) error {
	path = normalizePath(path)
	if path == RouteRoot {
		path = RouteDefault
	}

	route, params, ok := s.match(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	screen, err := route.Build(params)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	s.mu.Lock()
	s.current = path
	s.screen = screen
	s.mu.Unlock()

	s.log.Debug(ctx, "mount", "path", path)
	return screen.Mount(ctx)
}

// Reload drops the current screen state and re-mounts the current route.
func (s *Shell) Reload(ctx context.Context) error {
	s.mu.Lock()
	path := s.current
	s.screen = nil
	s.mu.Unlock()

	if path == "" {
		path = RouteRoot
	}
	return s.Navigate(ctx, path)
}

// Logout asks the backend to invalidate the token, then clears it locally
// and reloads. The local logout happens even when the backend call fails.
func (s *Shell) Logout(ctx context.Context) error {
	token, err := s.session.Token(ctx)
	if err != nil {
		s.log.Warn(ctx, "token read failed before logout", "error", err)
	}
	if token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			s.log.Warn(ctx, "server-side logout failed", "error", err)
		}
	}

	clearErr := s.session.Clear(ctx)
	if clearErr != nil {
		s.log.Error(ctx, "local logout failed", "error", clearErr)
		failure(s.notify, fmt.Sprintf("logout failed: %v", clearErr))
	} else {
		info(s.notify, "logged out")
	}

	_ = s.Reload(ctx)
	return clearErr
}

func (s *Shell) match(path string) (Route, map[string]string, bool) {
	for _, r := range s.routes {
		if params, ok := matchPattern(r.Pattern, path); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func (s *Shell) Render(w io.Writer) {
	path, screen := s.Current()
	for _, m := range s.Menu() {
		marker := " "
		if m.Path == path {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-26s %s\n", marker, m.Path, m.Title)
	}
	if screen != nil {
		fmt.Fprintln(w)
		screen.Render(w)
	}
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// matchPattern matches path against a pattern whose ":name" segments
// capture one path segment each.
func matchPattern(pattern, path string) (map[string]string, bool) {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range ps {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if xs[i] == "" {
				return nil, false
			}
			params[name] = xs[i]
			continue
		}
		if seg != xs[i] {
			return nil, false
		}
	}
	return params, true
}
