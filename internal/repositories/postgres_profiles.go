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

// PostgresProfileRepository provides PostgreSQL-backed persistence for profiles.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Create persists a new profile row.
func (r *PostgresProfileRepository) Create(ctx context.Context, profile models.Profile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO profiles (id, username, full_name, avatar_url, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, profile.ID, profile.Username, profile.FullName, profile.AvatarURL, profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

// Get fetches a profile by user id.
func (r *PostgresProfileRepository) Get(ctx context.Context, userID string) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, username, full_name, avatar_url, updated_at
        FROM profiles
        WHERE id = $1
    `, userID)

	var (
		profile   models.Profile
		updatedAt sql.NullTime
	)
	if err := row.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("select profile: %w", err)
	}

	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		profile.UpdatedAt = &t
	}

	return profile, nil
}

// Search returns profiles whose username contains the fragment,
// case-insensitively. Results are capped so the people picker stays
// small; an empty fragment matches nobody.
func (r *PostgresProfileRepository) Search(ctx context.Context, usernameFragment string) ([]models.Profile, error) {
	if usernameFragment == "" {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, username, full_name, avatar_url, updated_at
        FROM profiles
        WHERE username ILIKE '%' || $1 || '%'
        ORDER BY username
        LIMIT 10
    `, usernameFragment)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var (
			profile   models.Profile
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if updatedAt.Valid {
			t := updatedAt.Time.UTC()
			profile.UpdatedAt = &t
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// UpdateUsername changes the username for a profile.
func (r *PostgresProfileRepository) UpdateUsername(ctx context.Context, userID, username string) error {
	return r.update(ctx, userID, "username", username)
}

// UpdateAvatarURL changes the avatar URL for a profile.
func (r *PostgresProfileRepository) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	return r.update(ctx, userID, "avatar_url", avatarURL)
}

func (r *PostgresProfileRepository) update(ctx context.Context, userID, column, value string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// column is one of the fixed names above, never caller input.
	tag, err := conn.Exec(ctx, fmt.Sprintf(`
        UPDATE profiles
        SET %s = $2, updated_at = $3
        WHERE id = $1
    `, column), userID, value, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update profile %s: %w", column, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)
