package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/client/models"
)

// ListResult is one decoded page of a collection.
type ListResult[T any] struct {
	Items []T
	Page  models.Page
}

// ResourceService performs list and CRUD calls against one Resource.
type ResourceService[T any] struct {
	client client.Client
	res    Resource
}

func NewResourceService[T any](c client.Client, res Resource) *ResourceService[T] {
	return &ResourceService[T]{client: c, res: res}
}

func (s *ResourceService[T]) Resource() Resource {
	return s.res
}

// List fetches one page. An invalid query returns ErrInvalidPage without a
// request.
func (s *ResourceService[T]) List(ctx context.Context, q Query) (ListResult[T], error) {
	if err := q.Validate(); err != nil {
		return ListResult[T]{}, err
	}

	var resp models.ListResponse[T]
	if err := s.client.Get(ctx, s.res.Path, q.Values(), &resp); err != nil {
		return ListResult[T]{}, fmt.Errorf("list %s: %w", s.res.Name, err)
	}

	items, err := resp.Items(s.res.EmbeddedKeys...)
	if err != nil {
		return ListResult[T]{}, fmt.Errorf("list %s: %w", s.res.Name, err)
	}

	return ListResult[T]{Items: items, Page: resp.Page}, nil
}

// Create POSTs values to the collection.
func (s *ResourceService[T]) Create(ctx context.Context, values map[string]any) error {
	if err := s.client.Post(ctx, s.res.Path, values, nil); err != nil {
		return fmt.Errorf("create %s: %w", s.res.Name, err)
	}
	return nil
}

// Update PATCHes the record id. The id is sent in the path and the payload.
func (s *ResourceService[T]) Update(ctx context.Context, id int64, values map[string]any) error {
	payload := make(map[string]any, len(values)+1)
	for k, v := range values {
		payload[k] = v
	}
	payload["id"] = id

	if err := s.client.Patch(ctx, s.res.ItemPath(id), payload, nil); err != nil {
		return fmt.Errorf("update %s %d: %w", s.res.Name, id, err)
	}
	return nil
}

func (s *ResourceService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.client.Delete(ctx, s.res.ItemPath(id)); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.res.Name, id, err)
	}
	return nil
}
