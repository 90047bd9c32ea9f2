package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepo stores snapshots in the screen_snapshots table. The column is json,
// not jsonb, so the document comes back byte for byte as it was written.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

var _ domain.SnapshotStore = (*SnapshotRepo)(nil)

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

func (r *SnapshotRepo) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO screen_snapshots (screen_id, content, updated_at)
		VALUES ($1, $2::text::json, NOW())
		ON CONFLICT (screen_id) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = NOW()
	`, string(screenID), string(content))
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `
		SELECT content::text FROM screen_snapshots WHERE screen_id = $1
	`, string(screenID)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%w: screen %s", domain.ErrSnapshotCorrupt, screenID)
	}
	return domain.Content(raw), nil
}

// List returns every screen with a stored snapshot, ordered by id.
func (r *SnapshotRepo) List(ctx context.Context) ([]domain.ScreenID, error) {
	rows, err := r.pool.Query(ctx, `SELECT screen_id FROM screen_snapshots ORDER BY screen_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot ids: %w", err)
	}

	out := make([]domain.ScreenID, len(ids))
	for i, id := range ids {
		out[i] = domain.ScreenID(id)
	}
	return out, nil
}

func (r *SnapshotRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
