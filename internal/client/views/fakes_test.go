package views

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/client/services"
	"github.com/dmitrijs2005/docadmin/internal/client/session"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

// recorder collects notifications.
type recorder struct {
	mu   sync.Mutex
	msgs []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	r.msgs = append(r.msgs, n)
	r.mu.Unlock()
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, n := range r.msgs {
		out[i] = n.Message
	}
	return out
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return Notification{}
	}
	return r.msgs[len(r.msgs)-1]
}

// fakeLister answers queries through fn and records them.
type fakeLister[T any] struct {
	mu      sync.Mutex
	queries []services.Query
	fn      func(ctx context.Context, q services.Query) (services.ListResult[T], error)
}

func (f *fakeLister[T]) List(ctx context.Context, q services.Query) (services.ListResult[T], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.fn(ctx, q)
}

func (f *fakeLister[T]) seen() []services.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]services.Query(nil), f.queries...)
}

// pages serves total records numbered from 1.
func pages(total int) func(context.Context, services.Query) (services.ListResult[models.Log], error) {
	return func(_ context.Context, q services.Query) (services.ListResult[models.Log], error) {
		var items []models.Log
		for i := (q.Page-1)*q.Size + 1; i <= min(q.Page*q.Size, total); i++ {
			items = append(items, models.Log{ID: int64(i), Content: "entry"})
		}
		return services.ListResult[models.Log]{
			Items: items,
			Page: models.Page{
				Size:          q.Size,
				TotalElements: int64(total),
				TotalPages:    (total + q.Size - 1) / q.Size,
				Number:        q.Page - 1,
			},
		}, nil
	}
}

type mutation struct {
	Op     string
	ID     int64
	Values map[string]any
}

type fakeMutator struct {
	calls []mutation
	err   error
}

func (f *fakeMutator) Create(_ context.Context, values map[string]any) error {
	f.calls = append(f.calls, mutation{Op: "create", Values: values})
	return f.err
}

func (f *fakeMutator) Update(_ context.Context, id int64, values map[string]any) error {
	f.calls = append(f.calls, mutation{Op: "update", ID: id, Values: values})
	return f.err
}

func (f *fakeMutator) Delete(_ context.Context, id int64) error {
	f.calls = append(f.calls, mutation{Op: "delete", ID: id})
	return f.err
}

// fakeFiles implements the transfer and content interfaces.
type fakeFiles struct {
	uploads   []string
	uploadErr error

	downloadPath string
	downloadErr  error

	content    map[string][]byte
	contentErr error
	fetched    []string
}

func (f *fakeFiles) Upload(_ context.Context, res services.Resource, path string, progress netx.ProgressFunc) (models.UploadResult, error) {
	f.uploads = append(f.uploads, res.Name+":"+path)
	if f.uploadErr != nil {
		return models.UploadResult{}, f.uploadErr
	}
	if progress != nil {
		progress(netx.Progress{Loaded: 10, Total: 10})
	}
	return models.UploadResult{FileIDs: []int64{42}}, nil
}

func (f *fakeFiles) Download(_ context.Context, id int64) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return f.downloadPath, nil
}

func (f *fakeFiles) Content(_ context.Context, path string) ([]byte, error) {
	f.fetched = append(f.fetched, path)
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	b, ok := f.content[path]
	if !ok {
		return nil, services.ErrInvalidPage
	}
	return b, nil
}

// fakeSession is an in-memory SessionState.
type fakeSession struct {
	mu        sync.Mutex
	token     string
	clearErr  error
	listeners []session.Listener
}

func (s *fakeSession) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *fakeSession) LoggedIn(ctx context.Context) bool {
	t, _ := s.Token(ctx)
	return t != ""
}

func (s *fakeSession) set(token string) {
	s.mu.Lock()
	changed := (s.token != "") != (token != "")
	s.token = token
	ls := append([]session.Listener(nil), s.listeners...)
	s.mu.Unlock()
	if changed {
		for _, l := range ls {
			l(token != "")
		}
	}
}

func (s *fakeSession) Clear(context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.set("")
	return nil
}

func (s *fakeSession) Subscribe(fn session.Listener) func() {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.listeners = nil
		s.mu.Unlock()
	}
}

type fakeAuth struct {
	logins    []string
	loginErr  error
	logouts   []string
	logoutErr error
	sess      *fakeSession
}

func (a *fakeAuth) Login(_ context.Context, username string, password []byte) error {
	a.logins = append(a.logins, username)
	if a.loginErr != nil {
		return a.loginErr
	}
	if a.sess != nil {
		a.sess.set("tok-" + username)
	}
	return nil
}

func (a *fakeAuth) Logout(_ context.Context, token string) error {
	a.logouts = append(a.logouts, token)
	return a.logoutErr
}

type fakeStats struct {
	stat models.HomeStat
	err  error
}

func (f fakeStats) Home(context.Context) (models.HomeStat, error) { return f.stat, f.err }
