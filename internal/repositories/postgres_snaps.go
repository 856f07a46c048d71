package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/snapgroups/backend/internal/db"
	"github.com/snapgroups/backend/internal/models"
)

// PostgresSnapRepository provides PostgreSQL-backed persistence for snap metadata.
type PostgresSnapRepository struct {
	pool db.Pool
}

// NewPostgresSnapRepository constructs a snap repository backed by PostgreSQL.
func NewPostgresSnapRepository(pool db.Pool) *PostgresSnapRepository {
	return &PostgresSnapRepository{pool: pool}
}

// Create persists a new snap record.
func (r *PostgresSnapRepository) Create(ctx context.Context, snap models.Snap) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO snaps (id, group_id, uploader_user_id, storage_object_path, created_at, message, message_y_level)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, snap.ID, snap.GroupID, snap.UploaderUserID, snap.StorageObjectPath, snap.CreatedAt, snap.Message, snap.MessageYLevel)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert snap: %w", err)
	}

	return nil
}

// Get fetches a snap by id.
func (r *PostgresSnapRepository) Get(ctx context.Context, snapID string) (models.Snap, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Snap{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, group_id, uploader_user_id, storage_object_path, created_at, message, message_y_level
        FROM snaps
        WHERE id = $1
    `, snapID)

	var snap models.Snap
	if err := row.Scan(&snap.ID, &snap.GroupID, &snap.UploaderUserID, &snap.StorageObjectPath, &snap.CreatedAt, &snap.Message, &snap.MessageYLevel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Snap{}, ErrNotFound
		}
		return models.Snap{}, fmt.Errorf("select snap: %w", err)
	}

	return snap, nil
}

// ListForGroup returns every snap in a group, newest first.
func (r *PostgresSnapRepository) ListForGroup(ctx context.Context, groupID string) ([]models.Snap, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, group_id, uploader_user_id, storage_object_path, created_at, message, message_y_level
        FROM snaps
        WHERE group_id = $1
        ORDER BY created_at DESC
    `, groupID)
	if err != nil {
		return nil, fmt.Errorf("query snaps: %w", err)
	}
	defer rows.Close()

	var snaps []models.Snap
	for rows.Next() {
		var snap models.Snap
		if err := rows.Scan(&snap.ID, &snap.GroupID, &snap.UploaderUserID, &snap.StorageObjectPath, &snap.CreatedAt, &snap.Message, &snap.MessageYLevel); err != nil {
			return nil, fmt.Errorf("scan snap: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snaps: %w", err)
	}

	return snaps, nil
}

// Delete removes a snap row. The predicate includes the uploader so a
// non-uploader cannot delete someone else's snap; ownership is enforced
// here rather than trusted to the client.
func (r *PostgresSnapRepository) Delete(ctx context.Context, snapID, uploaderUserID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM snaps
        WHERE id = $1 AND uploader_user_id = $2
    `, snapID, uploaderUserID)
	if err != nil {
		return fmt.Errorf("delete snap: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ SnapRepository = (*PostgresSnapRepository)(nil)
