package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/docadmin/internal/common"
	"github.com/dmitrijs2005/docadmin/internal/logging"
)

var ErrNotSupported = errors.New("not supported on this screen")

// Mutator performs the write calls of a collection.
type Mutator interface {
	Create(ctx context.Context, values map[string]any) error
	Update(ctx context.Context, id int64, values map[string]any) error
	Delete(ctx context.Context, id int64) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Screen is anything the shell can mount on a route.
type Screen interface {
	Mount(ctx context.Context) error
	Render(w io.Writer)
}

// Table is the non-generic face of a CrudScreen used by the console.
type Table interface {
	Screen
	Name() string
	Refresh(ctx context.Context) error
	Paginate(ctx context.Context, page, size int) error
	Filter(ctx context.Context, filters map[string]string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	FilterFields() []string
	PageSize() int
	CreateDialog() (*Dialog, error)
	UpdateDialog(id int64) (*Dialog, error)
	Delete(ctx context.Context, id int64) error
	Upload(ctx context.Context, path string) error
	Download(ctx context.Context, id int64) (string, error)
	ViewRoute(id int64) (string, error)
}

// CrudSpec configures a CrudScreen. Optional parts left nil disable the
// matching action.
type CrudSpec[T any] struct {
	List    *ListView[T]
	Filters []string
	ID      func(T) int64

	Mutator Mutator
	// CreateFields enables the create dialog.
	CreateFields []Field
	// UpdateFields enables the update dialog. ToValues fills it from a record.
	UpdateFields []Field
	ToValues     func(T) map[string]string
	Deletable    bool

	Uploader   *Uploader
	Downloader *Downloader
	// ViewRoute maps a record id to a viewer route.
	ViewRoute func(id int64) string

	Confirm Confirmer
	Notify  Notifier
	Log     logging.Logger
}

// CrudScreen is the generic paginated list with create, update, delete,
// upload, download and view actions.
type CrudScreen[T any] struct {
	spec   CrudSpec[T]
	create *Dialog
	update *Dialog
	notify Notifier
	log    logging.Logger
}

const idField = "id"

func NewCrudScreen[T any](spec CrudSpec[T]) *CrudScreen[T] {
	s := &CrudScreen[T]{spec: spec, notify: orNop(spec.Notify), log: spec.Log}
	if s.log == nil {
		s.log = logging.Nop()
	}
	s.log = s.log.With("screen", spec.List.Name())

	if spec.Mutator != nil && len(spec.CreateFields) > 0 {
		s.create = NewDialog("Create", "create", NewForm(spec.CreateFields...),
			func(ctx context.Context, f *Form) error {
				return spec.Mutator.Create(ctx, f.Values())
			}, spec.List.Refresh, s.notify, s.log)
	}
	if spec.Mutator != nil && len(spec.UpdateFields) > 0 {
		fields := append([]Field{{Name: idField, Label: "ID", Hidden: true, Required: true}}, spec.UpdateFields...)
		s.update = NewDialog("Update", "update", NewForm(fields...),
			func(ctx context.Context, f *Form) error {
				id, err := strconv.ParseInt(f.Get(idField), 10, 64)
				if err != nil {
					return fmt.Errorf("bad id %q: %w", f.Get(idField), err)
				}
				return spec.Mutator.Update(ctx, id, f.Values())
			}, spec.List.Refresh, s.notify, s.log)
	}
	return s
}

func (s *CrudScreen[T]) Mount(ctx context.Context) error { return s.spec.List.Refresh(ctx) }
func (s *CrudScreen[T]) Render(w io.Writer)              { s.spec.List.Render(w) }
func (s *CrudScreen[T]) Name() string                    { return s.spec.List.Name() }
func (s *CrudScreen[T]) View() *ListView[T]              { return s.spec.List }
func (s *CrudScreen[T]) Refresh(ctx context.Context) error {
	return s.spec.List.Refresh(ctx)
}

func (s *CrudScreen[T]) Paginate(ctx context.Context, page, size int) error {
	return s.spec.List.Paginate(ctx, page, size)
}

// Filter rejects fields the collection does not filter on.
func (s *CrudScreen[T]) Filter(ctx context.Context, filters map[string]string) error {
	for k := range filters {
		if !s.hasFilter(k) {
			return fmt.Errorf("unknown filter %q", k)
		}
	}
	return s.spec.List.Filter(ctx, filters)
}

func (s *CrudScreen[T]) hasFilter(name string) bool {
	for _, f := range s.spec.Filters {
		if f == name {
			return true
		}
	}
	return false
}

func (s *CrudScreen[T]) Next(ctx context.Context) error { return s.spec.List.Next(ctx) }
func (s *CrudScreen[T]) Prev(ctx context.Context) error { return s.spec.List.Prev(ctx) }
func (s *CrudScreen[T]) FilterFields() []string         { return append([]string(nil), s.spec.Filters...) }
func (s *CrudScreen[T]) PageSize() int                  { return s.spec.List.State().Size }

// CreateDialog opens an empty create dialog.
func (s *CrudScreen[T]) CreateDialog() (*Dialog, error) {
	if s.create == nil {
		return nil, ErrNotSupported
	}
	if err := s.create.Open(nil); err != nil {
		return nil, err
	}
	return s.create, nil
}

// UpdateDialog opens the update dialog filled from the record id on the
// current page.
func (s *CrudScreen[T]) UpdateDialog(id int64) (*Dialog, error) {
	if s.update == nil || s.spec.ToValues == nil {
		return nil, ErrNotSupported
	}
	rec, ok := s.spec.List.Find(func(it T) bool { return s.spec.ID(it) == id })
	if !ok {
		return nil, fmt.Errorf("record %d is not on the current page: %w", id, common.ErrorNotFound)
	}

	initial := make(map[string]string)
	for k, v := range s.spec.ToValues(rec) {
		if _, declared := s.update.form.field(k); declared {
			initial[k] = v
		}
	}
	initial[idField] = strconv.FormatInt(id, 10)

	if err := s.update.Open(initial); err != nil {
		return nil, err
	}
	return s.update, nil
}

// Delete asks for confirmation, deletes id and re-queries the current page
// whatever the outcome. A dismissed confirmation sends nothing and returns
// common.ErrCancelled. Without a Confirmer deletion is not supported.
func (s *CrudScreen[T]) Delete(ctx context.Context, id int64) error {
	if !s.spec.Deletable || s.spec.Mutator == nil || s.spec.Confirm == nil {
		return ErrNotSupported
	}

	ok, err := s.spec.Confirm.Confirm(ctx, "Are you sure you want to delete this record?")
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrCancelled
	}

	err = s.spec.Mutator.Delete(ctx, id)
	if err != nil {
		s.log.Error(ctx, "delete failed", "id", id, "error", err)
		failure(s.notify, fmt.Sprintf("delete failed: %v", err))
	} else {
		success(s.notify, "delete success")
	}

	_ = s.spec.List.Refresh(ctx)
	return err
}

func (s *CrudScreen[T]) Upload(ctx context.Context, path string) error {
	if s.spec.Uploader == nil {
		return ErrNotSupported
	}
	_, err := s.spec.Uploader.Upload(ctx, path)
	return err
}

func (s *CrudScreen[T]) Download(ctx context.Context, id int64) (string, error) {
	if s.spec.Downloader == nil {
		return "", ErrNotSupported
	}
	return s.spec.Downloader.Download(ctx, id)
}

func (s *CrudScreen[T]) ViewRoute(id int64) (string, error) {
	if s.spec.ViewRoute == nil {
		return "", ErrNotSupported
	}
	return s.spec.ViewRoute(id), nil
}
