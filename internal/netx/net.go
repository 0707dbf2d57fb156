// Package netx contains transport helpers for streaming request bodies:
// multipart encoding with a known length and byte-level progress reporting.
package netx

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Progress is a snapshot of a transfer. Total is zero or negative when the
// size is unknown.
type Progress struct {
	Loaded int64
	Total  int64
}

// Percent returns round(Loaded*100/Total). ok is false when Total is not
// known, in which case no percentage must be shown.
func (p Progress) Percent() (pct int, ok bool) {
	if p.Total <= 0 {
		return 0, false
	}
	return int(math.Round(float64(p.Loaded) * 100 / float64(p.Total))), true
}

// ProgressFunc receives progress snapshots as bytes are read.
type ProgressFunc func(Progress)

// ProgressReader wraps a reader and calls fn after every non-empty read.
type ProgressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	fn     ProgressFunc
}

func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, fn: fn}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.fn != nil {
			p.fn(Progress{Loaded: p.loaded, Total: p.total})
		}
	}
	return n, err
}

// Loaded reports the bytes read so far.
func (p *ProgressReader) Loaded() int64 { return p.loaded }

// MultipartBody is a streaming multipart/form-data body holding one file
// part. The file is never buffered in memory.
type MultipartBody struct {
	Reader      io.Reader
	ContentType string
	// Length is the exact encoded size, or -1 when the file size is unknown.
	Length int64
}

// NewMultipartBody encodes file under the form field name. size is the file
// length in bytes; pass -1 when it is unknown.
func NewMultipartBody(field, filename string, file io.Reader, size int64) (*MultipartBody, error) {
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(filename)))
	h.Set("Content-Type", "application/octet-stream")
	if _, err := mw.CreatePart(h); err != nil {
		return nil, fmt.Errorf("multipart header: %w", err)
	}
	headLen := head.Len()

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart trailer: %w", err)
	}
	all := head.Bytes()
	headBytes := append([]byte(nil), all[:headLen]...)
	tailBytes := append([]byte(nil), all[headLen:]...)

	length := int64(-1)
	if size >= 0 {
		length = int64(len(headBytes)) + size + int64(len(tailBytes))
	}

	return &MultipartBody{
		Reader:      io.MultiReader(bytes.NewReader(headBytes), file, bytes.NewReader(tailBytes)),
		ContentType: mw.FormDataContentType(),
		Length:      length,
	}, nil
}

// ReadExcerpt reads at most limit bytes from r for use in error messages.
func ReadExcerpt(r io.Reader, limit int64) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, limit))
	return strings.TrimSpace(string(b))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
