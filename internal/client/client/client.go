package client

import (
	"context"
	"io"
	"net/url"

	"github.com/dmitrijs2005/docadmin/internal/netx"
)

// Client is the REST transport used by services. Paths are relative to the
// configured base URL.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
	Download(ctx context.Context, path string) (*Download, error)
	Upload(ctx context.Context, path string, file UploadFile, progress netx.ProgressFunc, out any) error
}

// TokenSource yields the bearer token for outgoing requests. An empty token
// means the request is sent unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Download is a streaming binary response. The caller must close Body.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// UploadFile describes a file to send as multipart form data. Size is -1
// when unknown.
type UploadFile struct {
	Field  string
	Name   string
	Reader io.Reader
	Size   int64
}
