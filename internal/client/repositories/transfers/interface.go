// Package transfers keeps the local history of uploads and downloads in the
// console's SQLite file.
package transfers

import (
	"context"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
)

type Repository interface {
	// Create stores t and sets its ID.
	Create(ctx context.Context, t *models.Transfer) error
	// List returns the newest limit records, newest first.
	List(ctx context.Context, limit int) ([]*models.Transfer, error)
	Clear(ctx context.Context) error
}
