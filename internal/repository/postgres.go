package repository

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresRepository — общая база для конкретных репозиториев: держит
// пул соединений и логгер.
type PostgresRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgresRepository(db *sql.DB, logger zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}
