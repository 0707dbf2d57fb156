package views

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/dmitrijs2005/docadmin/internal/logging"
)

var (
	ErrNotLoaded = errors.New("document not loaded")
	ErrNoPages   = errors.New("document has no pages")
)

// ContentLoader fetches a binary document with the session's bearer token.
type ContentLoader interface {
	Content(ctx context.Context, path string) ([]byte, error)
}

// PdfViewer shows a remote PDF one page at a time as extracted text. The
// page count is known only after Load; until then navigation is disabled.
type PdfViewer struct {
	loader ContentLoader
	path   string
	notify Notifier
	log    logging.Logger

	mu    sync.Mutex
	doc   *pdf.Reader
	total int
	page  int
}

func NewPdfViewer(loader ContentLoader, path string, n Notifier, log logging.Logger) *PdfViewer {
	if log == nil {
		log = logging.Nop()
	}
	return &PdfViewer{loader: loader, path: path, notify: orNop(n), log: log.With("document", path)}
}

func (v *PdfViewer) Mount(ctx context.Context) error { return v.Load(ctx) }

// Load fetches and parses the document and shows page 1.
func (v *PdfViewer) Load(ctx context.Context) error {
	b, err := v.loader.Content(ctx, v.path)
	if err != nil {
		v.log.Error(ctx, "load failed", "error", err)
		failure(v.notify, fmt.Sprintf("load failed: %v", err))
		return err
	}

	doc, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		v.log.Error(ctx, "parse failed", "error", err)
		failure(v.notify, fmt.Sprintf("not a readable PDF: %v", err))
		return fmt.Errorf("parse pdf: %w", err)
	}
	total := doc.NumPage()
	if total < 1 {
		failure(v.notify, ErrNoPages.Error())
		return ErrNoPages
	}

	v.mu.Lock()
	v.doc, v.total, v.page = doc, total, 1
	v.mu.Unlock()

	v.log.Debug(ctx, "document loaded", "pages", total)
	return nil
}

func (v *PdfViewer) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc != nil
}

// Total is the page count, 0 before load.
func (v *PdfViewer) Total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// Page is the current page, 0 before load.
func (v *PdfViewer) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

func (v *PdfViewer) CanPrev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc != nil && v.page > 1
}

func (v *PdfViewer) CanNext() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc != nil && v.page < v.total
}

// Next advances one page. It reports false when already on the last page or
// before load.
func (v *PdfViewer) Next() bool {
	if !v.CanNext() {
		return false
	}
	v.mu.Lock()
	v.page++
	v.mu.Unlock()
	return true
}

// Prev goes back one page. It reports false on page 1 or before load.
func (v *PdfViewer) Prev() bool {
	if !v.CanPrev() {
		return false
	}
	v.mu.Lock()
	v.page--
	v.mu.Unlock()
	return true
}

// GoTo jumps to n clamped to [1, total].
func (v *PdfViewer) GoTo(n int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.doc == nil {
		return ErrNotLoaded
	}
	v.page = min(max(n, 1), v.total)
	return nil
}

// Text extracts the plain text of the current page.
func (v *PdfViewer) Text() (string, error) {
	v.mu.Lock()
	doc, n := v.doc, v.page
	v.mu.Unlock()

	if doc == nil {
		return "", ErrNotLoaded
	}
	p := doc.Page(n)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: %w", n, ErrNoPages)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	return text, nil
}

func (v *PdfViewer) Render(w io.Writer) {
	if !v.Loaded() {
		fmt.Fprintln(w, "(document not loaded)")
		return
	}
	text, err := v.Text()
	if err != nil {
		fmt.Fprintf(w, "(cannot extract text: %v)\n", err)
	} else {
		fmt.Fprintln(w, strings.TrimRight(text, "\n"))
	}

	nav := []string{}
	if v.CanPrev() {
		nav = append(nav, "[p]rev")
	}
	if v.CanNext() {
		nav = append(nav, "[n]ext")
	}
	fmt.Fprintf(w, "-- page %d/%d %s\n", v.Page(), v.Total(), strings.Join(nav, " "))
}
