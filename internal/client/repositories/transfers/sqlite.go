package transfers

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, t *models.Transfer) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	query := `INSERT INTO transfers (direction, resource, remote_id, name, local_path, size, status, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, t.Direction, t.Resource, t.RemoteID, t.Name, t.LocalPath,
		t.Size, t.Status, t.Error, t.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transfer id: %w", err)
	}
	t.ID = id

	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*models.Transfer, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, direction, resource, remote_id, name, local_path, size, status, error, created_at
			FROM transfers ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error selecting transfers: %w", err)
	}
	defer rows.Close()

	var result []*models.Transfer

	for rows.Next() {
		var (
			item    = &models.Transfer{}
			created int64
		)
		err := rows.Scan(&item.ID, &item.Direction, &item.Resource, &item.RemoteID, &item.Name,
			&item.LocalPath, &item.Size, &item.Status, &item.Error, &created)
		if err != nil {
			return nil, err
		}
		item.CreatedAt = time.UnixMilli(created)
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transfers`); err != nil {
		return fmt.Errorf("failed to clear transfers: %w", err)
	}
	return nil
}
