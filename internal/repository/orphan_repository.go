package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
)

// OrphanRepository persists subscriptions that still need a directory record.
type OrphanRepository interface {
	Record(ctx context.Context, orphan *domain.OrphanedSubscription) error
	ListUnresolved(ctx context.Context, limit int) ([]domain.OrphanedSubscription, error)
	MarkResolved(ctx context.Context, subscriptionID string) error
}

type orphanRepository struct {
	pool *pgxpool.Pool
}

// NewOrphanRepository returns a Postgres-backed implementation.
func NewOrphanRepository(pool *pgxpool.Pool) OrphanRepository {
	return &orphanRepository{pool: pool}
}

// Record upserts by subscription id so a retried event does not duplicate rows.
func (r *orphanRepository) Record(ctx context.Context, orphan *domain.OrphanedSubscription) error {
	const query = `
        INSERT INTO orphaned_subscriptions (subscription_id, email, artist_uri, status, reason)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (subscription_id) DO UPDATE
            SET reason = EXCLUDED.reason, status = EXCLUDED.status
        RETURNING id::text, created_at`

	return r.pool.QueryRow(ctx, query,
		orphan.SubscriptionID,
		orphan.Email,
		orphan.ArtistURI,
		orphan.Status,
		orphan.Reason,
	).Scan(&orphan.ID, &orphan.CreatedAt)
}

func (r *orphanRepository) ListUnresolved(ctx context.Context, limit int) ([]domain.OrphanedSubscription, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id::text, subscription_id, email, artist_uri, status, reason, created_at, resolved_at
        FROM orphaned_subscriptions
        WHERE resolved_at IS NULL
        ORDER BY created_at
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrphanedSubscription
	for rows.Next() {
		var o domain.OrphanedSubscription
		if err := rows.Scan(
			&o.ID,
			&o.SubscriptionID,
			&o.Email,
			&o.ArtistURI,
			&o.Status,
			&o.Reason,
			&o.CreatedAt,
			&o.ResolvedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *orphanRepository) MarkResolved(ctx context.Context, subscriptionID string) error {
	const query = `
        UPDATE orphaned_subscriptions SET resolved_at = NOW()
        WHERE subscription_id = $1 AND resolved_at IS NULL`

	cmd, err := r.pool.Exec(ctx, query, subscriptionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
