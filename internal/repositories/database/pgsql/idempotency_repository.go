package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxIdempotencyRepository struct {
	BaseRepository
}

// newPgxIdempotencyRepository creates a new repository for idempotency keys.
func newPgxIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyRepository {
	return &PgxIdempotencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxIdempotencyRepository implements portsrepo.IdempotencyRepository
var _ portsrepo.IdempotencyRepository = (*PgxIdempotencyRepository)(nil)

// FindEntityID returns the entity recorded for a key/operation pair.
func (r *PgxIdempotencyRepository) FindEntityID(ctx context.Context, key string, operation string) (string, error) {
	query := `SELECT entity_id FROM idempotency_keys WHERE idempotency_key = $1 AND operation = $2;`

	var entityID string
	err := r.Pool.QueryRow(ctx, query, key, operation).Scan(&entityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return entityID, nil
}

// insertIdempotencyKeyInTx records a completed operation under its key inside
// the caller's transaction. The unique constraint turns a concurrent retry
// into ErrDuplicate instead of a second posting.
func insertIdempotencyKeyInTx(ctx context.Context, tx pgx.Tx, key string, operation string, entityID string, now time.Time) error {
	query := `
		INSERT INTO idempotency_keys (idempotency_key, operation, entity_id, created_at)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := tx.Exec(ctx, query, key, operation, entityID, now); err != nil {
		return fmt.Errorf("failed to record idempotency key for %s: %w", operation, mapPgError(err))
	}
	return nil
}
