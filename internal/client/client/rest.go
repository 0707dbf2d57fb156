package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/docadmin/internal/common"
	"github.com/dmitrijs2005/docadmin/internal/logging"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

const errorBodyLimit = 512

type RESTClient struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

type Option func(*RESTClient)

func WithHTTPClient(h *http.Client) Option {
	return func(c *RESTClient) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *RESTClient) { c.log = l }
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
// Zero keeps the transport default (no timeout).
func WithTimeout(d time.Duration) Option {
	return func(c *RESTClient) {
		h := *c.http
		h.Timeout = d
		c.http = &h
	}
}

// NewRESTClient returns a client for the backend at baseURL. tokens may be
// nil, in which case no Authorization header is ever sent.
func NewRESTClient(baseURL string, tokens TokenSource, opts ...Option) (*RESTClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &RESTClient{
		baseURL: u,
		http:    &http.Client{},
		tokens:  tokens,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *RESTClient) BaseURL() string {
	return c.baseURL.String()
}

func (c *RESTClient) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *RESTClient) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *RESTClient) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *RESTClient) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Download issues a GET and returns the body unread. The file name comes
// from Content-Disposition, falling back to common.DefaultDownloadName.
func (c *RESTClient) Download(ctx context.Context, path string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}

	name, ok := FilenameFromDisposition(resp.Header.Get(common.ContentDisposition))
	if !ok {
		name = common.DefaultDownloadName
	}

	return &Download{
		Body:        resp.Body,
		Filename:    name,
		ContentType: resp.Header.Get(common.ContentTypeHeader),
		Size:        resp.ContentLength,
	}, nil
}

// Upload streams file as multipart/form-data to path. progress, if set, is
// called as bytes of the encoded body are sent.
func (c *RESTClient) Upload(ctx context.Context, path string, file UploadFile, progress netx.ProgressFunc, out any) error {
	field := file.Field
	if field == "" {
		field = "file"
	}

	body, err := netx.NewMultipartBody(field, file.Name, file.Reader, file.Size)
	if err != nil {
		return err
	}

	var r io.Reader = body.Reader
	if progress != nil {
		r = netx.NewProgressReader(r, body.Length, progress)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, r)
	if err != nil {
		return err
	}
	req.Header.Set(common.ContentTypeHeader, body.ContentType)
	if body.Length >= 0 {
		req.ContentLength = body.Length
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeBody(resp, out)
}

func (c *RESTClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set(common.ContentTypeHeader, common.JSONContentType)
	}
	req.Header.Set("Accept", common.JSONContentType)

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeBody(resp, out)
}

func (c *RESTClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set(common.RequestIDHeader, uuid.NewString())
	c.authorize(req)

	return req, nil
}

// authorize attaches the bearer token. A token read failure is logged and
// the request goes out unauthenticated.
func (c *RESTClient) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		c.log.Warn(req.Context(), "token read failed, sending unauthenticated",
			"path", req.URL.Path, "error", err)
		return
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}
}

// send performs req and turns transport failures and non-2xx statuses into
// errors. On success the caller owns resp.Body.
func (c *RESTClient) send(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := c.log.With("method", req.Method, "path", req.URL.Path,
		"request_id", req.Header.Get(common.RequestIDHeader))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ctxErr)
		}
		return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, ErrUnavailable, err)
	}
	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &StatusError{
			Method: req.Method,
			Path:   req.URL.Path,
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   netx.ReadExcerpt(resp.Body, errorBodyLimit),
		}
	}

	return resp, nil
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	err := json.NewDecoder(resp.Body).Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", resp.Request.URL.Path, err)
	}
	return nil
}

// FilenameFromDisposition extracts the file name from a Content-Disposition
// header value. Both filename and the RFC 2231 filename* form are accepted.
func FilenameFromDisposition(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return "", false
	}
	return name, true
}
