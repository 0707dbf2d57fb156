package models

import (
	"encoding/json"
	"fmt"
)

// Page is the pagination metadata of a list response. Number is 0-based.
type Page struct {
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	Number        int   `json:"number"`
}

// ListResponse is the list envelope:
//
//	{"_embedded": {"<key>": [...]}, "page": {...}}
type ListResponse[T any] struct {
	Embedded map[string]json.RawMessage `json:"_embedded"`
	Page     Page                       `json:"page"`
}

// Items decodes the embedded collection stored under the first of keys that
// is present. A missing envelope, missing key or null collection yields an
// empty, non-nil slice.
func (r *ListResponse[T]) Items(keys ...string) ([]T, error) {
	for _, key := range keys {
		raw, ok := r.Embedded[key]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode _embedded.%s: %w", key, err)
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	}
	return []T{}, nil
}
