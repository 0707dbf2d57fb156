package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docadmin/internal/netx"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context) (string, error) { return s.token, s.err }

type captured struct {
	mu      sync.Mutex
	method  string
	path    string
	query   url.Values
	auth    string
	reqID   string
	ctype   string
	body    []byte
	clength int64
}

func newServer(t *testing.T, status int, respBody string, headers map[string]string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.method = r.Method
		c.path = r.URL.Path
		c.query = r.URL.Query()
		c.auth = r.Header.Get("Authorization")
		c.reqID = r.Header.Get("X-Request-ID")
		c.ctype = r.Header.Get("Content-Type")
		c.clength = r.ContentLength
		c.body, _ = io.ReadAll(r.Body)
		c.mu.Unlock()
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(ts.Close)
	return ts, c
}

func newClient(t *testing.T, baseURL string, tokens TokenSource) *RESTClient {
	t.Helper()
	c, err := NewRESTClient(baseURL, tokens)
	require.NoError(t, err)
	return c
}

func TestNewRESTClient_RejectsBadURL(t *testing.T) {
	_, err := NewRESTClient("ftp://example.com", nil)
	require.Error(t, err)

	_, err = NewRESTClient("://bad", nil)
	require.Error(t, err)
}

func TestGet_AttachesBearerAndDecodes(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"id":1,"title":"t"}`, nil)
	c := newClient(t, ts.URL+"/", staticTokens{token: "abc"})

	var out struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	q := url.Values{"page": {"0"}, "size": {"20"}}
	require.NoError(t, c.Get(context.Background(), "/api/articles", q, &out))

	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "t", out.Title)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/articles", got.path)
	assert.Equal(t, "0", got.query.Get("page"))
	assert.Equal(t, "20", got.query.Get("size"))
	assert.Equal(t, "Bearer abc", got.auth)

	_, err := uuid.Parse(got.reqID)
	assert.NoError(t, err, "X-Request-ID must be a uuid")
}

func TestRequest_WithoutTokenIsUnauthenticated(t *testing.T) {
	tests := []struct {
		name   string
		tokens TokenSource
	}{
		{"nil source", nil},
		{"empty token", staticTokens{}},
		{"store read failure", staticTokens{token: "ignored", err: errors.New("db locked")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, got := newServer(t, http.StatusOK, `{}`, nil)
			c := newClient(t, ts.URL, tt.tokens)

			require.NoError(t, c.Get(context.Background(), "/api/logs", nil, nil))
			assert.Empty(t, got.auth)
		})
	}
}

func TestPostAndPatch_SendJSON(t *testing.T) {
	ts, got := newServer(t, http.StatusCreated, `{"id":7}`, nil)
	c := newClient(t, ts.URL, nil)

	var out map[string]any
	require.NoError(t, c.Post(context.Background(), "/api/articles", map[string]string{"title": "a"}, &out))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/json", got.ctype)
	assert.JSONEq(t, `{"title":"a"}`, string(got.body))
	assert.EqualValues(t, 7, out["id"])

	require.NoError(t, c.Patch(context.Background(), "/api/articles/7", map[string]any{"id": 7, "title": "b"}, nil))
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/api/articles/7", got.path)
	assert.JSONEq(t, `{"id":7,"title":"b"}`, string(got.body))
}

func TestDelete_EmptyBody(t *testing.T) {
	ts, got := newServer(t, http.StatusNoContent, ``, nil)
	c := newClient(t, ts.URL, nil)

	require.NoError(t, c.Delete(context.Background(), "/api/articles/3"))
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/api/articles/3", got.path)
}

func TestStatusErrors_MapToSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnprocessableEntity, ErrBadRequest},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusGatewayTimeout, ErrUnavailable},
		{http.StatusInternalServerError, ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts, _ := newServer(t, tt.status, `{"message":"nope"}`, nil)
			c := newClient(t, ts.URL, nil)

			err := c.Get(context.Background(), "/api/articles", nil, nil)
			require.ErrorIs(t, err, tt.want)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Code)
			assert.Contains(t, se.Error(), `{"message":"nope"}`)
		})
	}
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	c := newClient(t, ts.URL, nil)
	err := c.Get(context.Background(), "/api/articles", nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCancelledContext_ReturnsContextError(t *testing.T) {
	ts, _ := newServer(t, http.StatusOK, `{}`, nil)
	c := newClient(t, ts.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/api/articles", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() { close(block); ts.Close() })

	c, err := NewRESTClient(ts.URL, nil, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	err = c.Get(context.Background(), "/slow", nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDecode_InvalidJSON(t *testing.T) {
	ts, _ := newServer(t, http.StatusOK, `{not json`, nil)
	c := newClient(t, ts.URL, nil)

	var out map[string]any
	err := c.Get(context.Background(), "/api/articles", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /api/articles")
}

func TestDownload_FilenameFromHeader(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		want        string
	}{
		{"quoted filename", `attachment; filename="report.pdf"`, "report.pdf"},
		{"rfc 2231", `attachment; filename*=UTF-8''%D0%BE%D1%82%D1%87%D0%B5%D1%82.pdf`, "отчет.pdf"},
		{"absent", ``, "download.bin"},
		{"malformed", `attachment; filename="unterminated`, "download.bin"},
		{"no filename param", `attachment`, "download.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{"Content-Type": "application/pdf"}
			if tt.disposition != "" {
				headers["Content-Disposition"] = tt.disposition
			}
			ts, got := newServer(t, http.StatusOK, "%PDF-1.4", headers)
			c := newClient(t, ts.URL, staticTokens{token: "tok"})

			d, err := c.Download(context.Background(), "/api/files/5")
			require.NoError(t, err)
			defer d.Body.Close()

			assert.Equal(t, tt.want, d.Filename)
			assert.Equal(t, "application/pdf", d.ContentType)
			b, err := io.ReadAll(d.Body)
			require.NoError(t, err)
			assert.Equal(t, "%PDF-1.4", string(b))
			assert.Equal(t, "Bearer tok", got.auth)
		})
	}
}

func TestDownload_NotFound(t *testing.T) {
	ts, _ := newServer(t, http.StatusNotFound, ``, nil)
	c := newClient(t, ts.URL, nil)

	_, err := c.Download(context.Background(), "/api/files/404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpload_StreamsMultipartWithProgress(t *testing.T) {
	var field, name string
	var content []byte
	var clength int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clength = r.ContentLength
		f, h, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		field = "file"
		name = h.Filename
		content, _ = io.ReadAll(f)
		_ = json.NewEncoder(w).Encode(map[string]any{"file_ids": []int64{11}})
	}))
	t.Cleanup(ts.Close)

	c := newClient(t, ts.URL, nil)
	payload := strings.Repeat("x", 4096)

	var last netx.Progress
	calls := 0
	var out struct {
		FileIDs []int64 `json:"file_ids"`
	}
	err := c.Upload(context.Background(), "/api/files", UploadFile{
		Name:   "notes.txt",
		Reader: strings.NewReader(payload),
		Size:   int64(len(payload)),
	}, func(p netx.Progress) {
		calls++
		last = p
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "file", field)
	assert.Equal(t, "notes.txt", name)
	assert.Equal(t, payload, string(content))
	assert.Equal(t, []int64{11}, out.FileIDs)

	require.Positive(t, calls)
	assert.Equal(t, last.Total, last.Loaded)
	assert.Equal(t, clength, last.Total)
	pct, ok := last.Percent()
	assert.True(t, ok)
	assert.Equal(t, 100, pct)
}

func TestUpload_ServerError(t *testing.T) {
	ts, _ := newServer(t, http.StatusInternalServerError, `boom`, nil)
	c := newClient(t, ts.URL, nil)

	err := c.Upload(context.Background(), "/api/files", UploadFile{
		Name: "a.bin", Reader: strings.NewReader("a"), Size: 1,
	}, nil, nil)
	require.ErrorIs(t, err, ErrServer)
}

func TestFilenameFromDisposition(t *testing.T) {
	name, ok := FilenameFromDisposition(`inline; filename=plain.txt`)
	assert.True(t, ok)
	assert.Equal(t, "plain.txt", name)

	_, ok = FilenameFromDisposition(`attachment; filename=""`)
	assert.False(t, ok)

	_, ok = FilenameFromDisposition("  ")
	assert.False(t, ok)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithHTTPClient_UsesTransport(t *testing.T) {
	var seen string
	h := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Request:    r,
		}, nil
	})}

	c, err := NewRESTClient("http://backend.local:2020/", nil, WithHTTPClient(h))
	require.NoError(t, err)
	assert.Equal(t, "http://backend.local:2020", c.BaseURL())

	require.NoError(t, c.Get(context.Background(), "/api/logs", url.Values{"size": {"5"}}, nil))
	assert.Equal(t, "http://backend.local:2020/api/logs?size=5", seen)
}
