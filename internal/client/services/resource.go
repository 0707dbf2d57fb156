// Package services talks to the docadmin REST API on behalf of the console
// screens: generic list/CRUD per resource, authentication, file transfers
// and dashboard statistics.
package services

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidPage = errors.New("page must be >= 1 and size > 0")

// Resource describes one REST collection.
type Resource struct {
	// Name is the short name used in the console ("articles").
	Name string
	// Path is the collection endpoint ("/api/articles").
	Path string
	// EmbeddedKeys are the _embedded keys tried, in order, when decoding a
	// list response.
	EmbeddedKeys []string
	// Filters are the query fields accepted by the list endpoint.
	Filters []string
	// Uploadable marks collections accepting multipart uploads on Path.
	Uploadable bool
}

// ItemPath returns the endpoint of one record.
func (r Resource) ItemPath(id int64) string {
	return r.Path + "/" + strconv.FormatInt(id, 10)
}

// HasFilter reports whether name is one of r.Filters.
func (r Resource) HasFilter(name string) bool {
	for _, f := range r.Filters {
		if f == name {
			return true
		}
	}
	return false
}

var (
	Articles = Resource{
		Name:         "articles",
		Path:         "/api/articles",
		EmbeddedKeys: []string{"article"},
		Filters:      []string{"title", "content"},
	}
	PdfArticles = Resource{
		Name:         "pdf_articles",
		Path:         "/api/pdf_articles",
		EmbeddedKeys: []string{"pdf_article", "article"},
		Filters:      []string{"title", "content"},
		Uploadable:   true,
	}
	PdfArticleAccessLogs = Resource{
		Name:         "pdf_article_access_logs",
		Path:         "/api/pdf_article_access_logs",
		EmbeddedKeys: []string{"pdf_article_access_log"},
		Filters:      []string{"src_ip", "user_agent"},
	}
	Files = Resource{
		Name:         "files",
		Path:         "/api/files",
		EmbeddedKeys: []string{"file"},
		Filters:      []string{"content"},
		Uploadable:   true,
	}
	Logs = Resource{
		Name:         "logs",
		Path:         "/api/logs",
		EmbeddedKeys: []string{"log"},
		Filters:      []string{"content"},
	}
)

// Query selects one page of a collection. Page is 1-based.
type Query struct {
	Page    int
	Size    int
	Filters map[string]string
}

func (q Query) Validate() error {
	if q.Page < 1 || q.Size <= 0 {
		return ErrInvalidPage
	}
	return nil
}

// Values encodes q for the wire: page is sent 0-based and blank filters are
// left out entirely.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("size", strconv.Itoa(q.Size))
	v.Set("page", strconv.Itoa(q.Page-1))
	for k, val := range q.Filters {
		if strings.TrimSpace(val) == "" {
			continue
		}
		v.Set(k, val)
	}
	return v
}

// CleanFilters returns a copy of filters without blank values. The result is
// nil when nothing remains.
func CleanFilters(filters map[string]string) map[string]string {
	var out map[string]string
	for k, v := range filters {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(filters))
		}
		out[k] = v
	}
	return out
}
