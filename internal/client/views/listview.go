package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/client/services"
	"github.com/dmitrijs2005/docadmin/internal/logging"
)

// ErrSuperseded is returned by a query whose response arrived after a newer
// query had been issued. Its result was dropped.
var ErrSuperseded = errors.New("query superseded by a newer one")

// Lister fetches one page of T.
type Lister[T any] interface {
	List(ctx context.Context, q services.Query) (services.ListResult[T], error)
}

// Column renders one table column.
type Column[T any] struct {
	Title string
	Value func(T) string
}

// ErrorHook runs after a failed query has been applied.
type ErrorHook func(ctx context.Context, err error)

// ListState is a snapshot of a ListView.
type ListState[T any] struct {
	Items   []T
	Page    int
	Size    int
	Filters map[string]string
	Meta    models.Page
	Loading bool
	Loaded  bool
}

// ListView keeps the current page of a collection. Each query gets a
// generation number; a response is applied only if no newer query was
// issued meanwhile.
type ListView[T any] struct {
	name    string
	lister  Lister[T]
	columns []Column[T]
	notify  Notifier
	log     logging.Logger
	onError ErrorHook

	mu      sync.Mutex
	gen     uint64
	items   []T
	page    int
	size    int
	filters map[string]string
	meta    models.Page
	loading bool
	loaded  bool
}

type ListOption[T any] func(*ListView[T])

func WithErrorHook[T any](h ErrorHook) ListOption[T] {
	return func(v *ListView[T]) { v.onError = h }
}

func WithListNotifier[T any](n Notifier) ListOption[T] {
	return func(v *ListView[T]) { v.notify = orNop(n) }
}

func WithListLogger[T any](l logging.Logger) ListOption[T] {
	return func(v *ListView[T]) { v.log = l }
}

// NewListView returns a view starting at page 1 with the given page size.
func NewListView[T any](name string, lister Lister[T], size int, columns []Column[T], opts ...ListOption[T]) *ListView[T] {
	if size <= 0 {
		size = 5
	}
	v := &ListView[T]{
		name:    name,
		lister:  lister,
		columns: columns,
		notify:  nopNotifier{},
		log:     logging.Nop(),
		items:   []T{},
		page:    1,
		size:    size,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = v.log.With("view", name)
	return v
}

// Query fetches page/size with filters. On success the records, page
// metadata, page, size and filters become current. On failure the previous
// state is kept and the error hook runs.
func (v *ListView[T]) Query(ctx context.Context, page, size int, filters map[string]string) error {
	q := services.Query{Page: page, Size: size, Filters: services.CleanFilters(filters)}
	if err := q.Validate(); err != nil {
		return err
	}

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.loading = true
	v.mu.Unlock()

	res, err := v.lister.List(ctx, q)

	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		v.log.Debug(ctx, "stale response dropped", "generation", gen, "page", page)
		return ErrSuperseded
	}
	v.loading = false
	if err != nil {
		v.mu.Unlock()
		v.log.Error(ctx, "query failed", "page", page, "size", size, "error", err)
		failure(v.notify, fmt.Sprintf("%s: query failed: %v", v.name, err))
		if v.onError != nil {
			v.onError(ctx, err)
		}
		return err
	}
	v.items = res.Items
	if v.items == nil {
		v.items = []T{}
	}
	v.meta = res.Page
	v.page = page
	v.size = size
	v.filters = q.Filters
	v.loaded = true
	n := len(v.items)
	v.mu.Unlock()

	v.log.Debug(ctx, "query applied", "page", page, "size", size, "rows", n)
	success(v.notify, fmt.Sprintf("%s: query succeeded", v.name))
	return nil
}

// Refresh re-runs the current query.
func (v *ListView[T]) Refresh(ctx context.Context) error {
	page, size, filters := v.current()
	return v.Query(ctx, page, size, filters)
}

// Paginate moves to page/size keeping the current filters.
func (v *ListView[T]) Paginate(ctx context.Context, page, size int) error {
	_, _, filters := v.current()
	return v.Query(ctx, page, size, filters)
}

// Filter applies filters from page 1 at the current size.
func (v *ListView[T]) Filter(ctx context.Context, filters map[string]string) error {
	_, size, _ := v.current()
	return v.Query(ctx, 1, size, filters)
}

// Next moves one page forward, staying on the last page.
func (v *ListView[T]) Next(ctx context.Context) error {
	page, size, filters := v.current()
	return v.Query(ctx, v.clamp(page+1), size, filters)
}

// Prev moves one page back, staying on page 1.
func (v *ListView[T]) Prev(ctx context.Context) error {
	page, size, filters := v.current()
	return v.Query(ctx, v.clamp(page-1), size, filters)
}

func (v *ListView[T]) clamp(page int) int {
	v.mu.Lock()
	total := v.meta.TotalPages
	v.mu.Unlock()

	if total < 1 {
		total = 1
	}
	return min(max(page, 1), total)
}

func (v *ListView[T]) current() (int, int, map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page, v.size, maps.Clone(v.filters)
}

// State returns a copy of the current state.
func (v *ListView[T]) State() ListState[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ListState[T]{
		Items:   append([]T(nil), v.items...),
		Page:    v.page,
		Size:    v.size,
		Filters: maps.Clone(v.filters),
		Meta:    v.meta,
		Loading: v.loading,
		Loaded:  v.loaded,
	}
}

// Find returns the first current record matching pred.
func (v *ListView[T]) Find(pred func(T) bool) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, it := range v.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (v *ListView[T]) Name() string { return v.name }

// Render writes the current page as a table followed by a pagination line.
func (v *ListView[T]) Render(w io.Writer) {
	st := v.State()

	headers := make([]string, len(v.columns))
	for i, c := range v.columns {
		headers[i] = c.Title
	}
	rows := make([][]string, 0, len(st.Items))
	for _, it := range st.Items {
		row := make([]string, len(v.columns))
		for i, c := range v.columns {
			row[i] = c.Value(it)
		}
		rows = append(rows, row)
	}
	writeTable(w, headers, rows)

	totalPages := max(st.Meta.TotalPages, 1)
	fmt.Fprintf(w, "page %d/%d, size %d, %d total", st.Page, totalPages, st.Size, st.Meta.TotalElements)
	if len(st.Filters) > 0 {
		fmt.Fprintf(w, ", filters %s", formatFilters(st.Filters))
	}
	if st.Loading {
		fmt.Fprint(w, " (loading)")
	}
	fmt.Fprintln(w)
}
