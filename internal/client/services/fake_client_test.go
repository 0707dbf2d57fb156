package services

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

type call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	calls []call

	GetResp  string
	GetErr   error
	PostResp string
	PostErr  error
	PatchErr error
	DelErr   error

	DownloadResp *client.Download
	DownloadErr  error

	UploadResp    string
	UploadErr     error
	LastUpload    client.UploadFile
	UploadContent string
}

func (f *fakeClient) Get(_ context.Context, path string, q url.Values, out any) error {
	f.calls = append(f.calls, call{Method: "GET", Path: path, Query: q})
	if f.GetErr != nil {
		return f.GetErr
	}
	if out != nil && f.GetResp != "" {
		return json.Unmarshal([]byte(f.GetResp), out)
	}
	return nil
}

func (f *fakeClient) Post(_ context.Context, path string, body, out any) error {
	f.calls = append(f.calls, call{Method: "POST", Path: path, Body: body})
	if f.PostErr != nil {
		return f.PostErr
	}
	if out != nil && f.PostResp != "" {
		return json.Unmarshal([]byte(f.PostResp), out)
	}
	return nil
}

func (f *fakeClient) Patch(_ context.Context, path string, body, _ any) error {
	f.calls = append(f.calls, call{Method: "PATCH", Path: path, Body: body})
	return f.PatchErr
}

func (f *fakeClient) Delete(_ context.Context, path string) error {
	f.calls = append(f.calls, call{Method: "DELETE", Path: path})
	return f.DelErr
}

func (f *fakeClient) Download(_ context.Context, path string) (*client.Download, error) {
	f.calls = append(f.calls, call{Method: "GET", Path: path})
	return f.DownloadResp, f.DownloadErr
}

func (f *fakeClient) Upload(_ context.Context, path string, file client.UploadFile, progress netx.ProgressFunc, out any) error {
	f.calls = append(f.calls, call{Method: "POST", Path: path})
	f.LastUpload = file
	b, _ := io.ReadAll(file.Reader)
	f.UploadContent = string(b)
	if progress != nil {
		progress(netx.Progress{Loaded: int64(len(b)), Total: file.Size})
	}
	if f.UploadErr != nil {
		return f.UploadErr
	}
	if out != nil && f.UploadResp != "" {
		return json.Unmarshal([]byte(f.UploadResp), out)
	}
	return nil
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }
