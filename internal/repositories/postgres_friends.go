package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/snapgroups/backend/internal/db"
	"github.com/snapgroups/backend/internal/models"
)

// PostgresFriendRepository provides PostgreSQL-backed persistence for friendships.
type PostgresFriendRepository struct {
	pool db.Pool
}

// NewPostgresFriendRepository constructs a friend repository backed by PostgreSQL.
func NewPostgresFriendRepository(pool db.Pool) *PostgresFriendRepository {
	return &PostgresFriendRepository{pool: pool}
}

// Upsert creates or replaces the friendship row keyed by the ordered
// requester/recipient pair, so re-sending a request keeps a single row.
func (r *PostgresFriendRepository) Upsert(ctx context.Context, friendship models.Friendship) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friends (user_id_1, user_id_2, status, requested_at, accepted_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id_1, user_id_2)
        DO UPDATE SET status = EXCLUDED.status,
                      requested_at = EXCLUDED.requested_at,
                      accepted_at = EXCLUDED.accepted_at
    `, friendship.UserID1, friendship.UserID2, friendship.Status, friendship.RequestedAt, friendship.AcceptedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return ErrNotFound
			case "23505":
				// The unordered-pair index caught a row stored in the
				// opposite direction; the conflict target above only
				// covers this ordering.
				return ErrConflict
			}
		}
		return fmt.Errorf("upsert friendship: %w", err)
	}

	return nil
}

// FindPair fetches the friendship row for an unordered pair of users,
// whichever direction it was created in.
func (r *PostgresFriendRepository) FindPair(ctx context.Context, userIDA, userIDB string) (models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Friendship{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT user_id_1, user_id_2, status, requested_at, accepted_at
        FROM friends
        WHERE (user_id_1 = $1 AND user_id_2 = $2)
           OR (user_id_1 = $2 AND user_id_2 = $1)
    `, userIDA, userIDB)

	return scanFriendship(row)
}

// Accept transitions the row created by requesterID toward recipientID
// to accepted. The directionality must match: only the recipient of a
// request may accept it.
func (r *PostgresFriendRepository) Accept(ctx context.Context, requesterID, recipientID string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE friends
        SET status = $3, accepted_at = $4
        WHERE user_id_1 = $1 AND user_id_2 = $2 AND status = $5
    `, requesterID, recipientID, models.FriendStatusAccepted, at.UTC(), models.FriendStatusPending)
	if err != nil {
		return fmt.Errorf("accept friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the row created by requesterID toward recipientID.
func (r *PostgresFriendRepository) Delete(ctx context.Context, requesterID, recipientID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM friends
        WHERE user_id_1 = $1 AND user_id_2 = $2
    `, requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForUser returns friendship rows where the user is either party,
// optionally filtered by status.
func (r *PostgresFriendRepository) ListForUser(ctx context.Context, userID, status string) ([]models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	query := `
        SELECT user_id_1, user_id_2, status, requested_at, accepted_at
        FROM friends
        WHERE (user_id_1 = $1 OR user_id_2 = $1)
    `
	args := []any{userID}
	if status != "" && status != models.FriendStatusAll {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY requested_at DESC`

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query friendships: %w", err)
	}
	defer rows.Close()

	var friendships []models.Friendship
	for rows.Next() {
		friendship, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, friendship)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friendships: %w", err)
	}

	return friendships, nil
}

func scanFriendship(row pgx.Row) (models.Friendship, error) {
	var (
		friendship models.Friendship
		acceptedAt sql.NullTime
	)

	if err := row.Scan(&friendship.UserID1, &friendship.UserID2, &friendship.Status, &friendship.RequestedAt, &acceptedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Friendship{}, ErrNotFound
		}
		return models.Friendship{}, fmt.Errorf("scan friendship: %w", err)
	}

	if acceptedAt.Valid {
		t := acceptedAt.Time.UTC()
		friendship.AcceptedAt = &t
	}

	return friendship, nil
}

var _ FriendRepository = (*PostgresFriendRepository)(nil)
