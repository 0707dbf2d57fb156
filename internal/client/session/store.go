package session

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docadmin/internal/common"
	"github.com/dmitrijs2005/docadmin/internal/dbx"
)

const usernameMetadataKey = "username"

// Credentials is what a login leaves behind in the local store.
type Credentials struct {
	Token    string
	Username string
}

// Store persists Credentials.
type Store interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps credentials in the metadata table. Writes touch both
// keys in one transaction.
type SQLiteStore struct {
	db   *sql.DB
	repo *metadata.SQLiteRepository
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, repo: metadata.NewSQLiteRepository(db)}
}

func (s *SQLiteStore) Load(ctx context.Context) (Credentials, error) {
	token, err := s.repo.Get(ctx, common.TokenMetadataKey)
	if err != nil {
		return Credentials{}, err
	}
	user, err := s.repo.Get(ctx, usernameMetadataKey)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: string(token), Username: string(user)}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c Credentials) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo.WithDB(tx)
		if err := repo.Set(ctx, common.TokenMetadataKey, []byte(c.Token)); err != nil {
			return err
		}
		if c.Username == "" {
			return repo.Delete(ctx, usernameMetadataKey)
		}
		return repo.Set(ctx, usernameMetadataKey, []byte(c.Username))
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo.WithDB(tx)
		if err := repo.Delete(ctx, common.TokenMetadataKey); err != nil {
			return err
		}
		return repo.Delete(ctx, usernameMetadataKey)
	})
}
