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

// PostgresGroupRepository provides PostgreSQL-backed persistence for
// groups and their membership rows.
type PostgresGroupRepository struct {
	pool db.Pool
}

// NewPostgresGroupRepository constructs a group repository backed by PostgreSQL.
func NewPostgresGroupRepository(pool db.Pool) *PostgresGroupRepository {
	return &PostgresGroupRepository{pool: pool}
}

// Create persists a new group row.
func (r *PostgresGroupRepository) Create(ctx context.Context, group models.Group) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO groups (id, name, created_at, created_by)
        VALUES ($1, $2, $3, $4)
    `, group.ID, group.Name, group.CreatedAt, group.CreatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert group: %w", err)
	}

	return nil
}

// Get fetches a group by id.
func (r *PostgresGroupRepository) Get(ctx context.Context, groupID string) (models.Group, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Group{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, name, created_at, created_by
        FROM groups
        WHERE id = $1
    `, groupID)

	var group models.Group
	if err := row.Scan(&group.ID, &group.Name, &group.CreatedAt, &group.CreatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, fmt.Errorf("select group: %w", err)
	}

	return group, nil
}

// Delete removes a group row. Membership and snap rows cascade at the
// schema level.
func (r *PostgresGroupRepository) Delete(ctx context.Context, groupID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM groups
        WHERE id = $1
    `, groupID)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddMember inserts a membership row.
func (r *PostgresGroupRepository) AddMember(ctx context.Context, member models.GroupMember) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO group_members (group_id, user_id, joined_at)
        VALUES ($1, $2, $3)
    `, member.GroupID, member.UserID, member.JoinedAt)
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
		return fmt.Errorf("insert group member: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership row. When that empties the roster
// the group row goes with it in the same transaction, so a group never
// exists with zero members.
func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        DELETE FROM group_members
        WHERE group_id = $1 AND user_id = $2
    `, groupID, userID)
	if err != nil {
		return fmt.Errorf("delete group member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
        DELETE FROM groups
        WHERE id = $1
          AND NOT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1)
    `, groupID)
	if err != nil {
		return fmt.Errorf("prune empty group: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Members returns the membership roster for a group.
func (r *PostgresGroupRepository) Members(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	return r.listMembers(ctx, `
        SELECT group_id, user_id, joined_at
        FROM group_members
        WHERE group_id = $1
        ORDER BY joined_at
    `, groupID)
}

// MembershipsForUser returns every membership row for a user.
func (r *PostgresGroupRepository) MembershipsForUser(ctx context.Context, userID string) ([]models.GroupMember, error) {
	return r.listMembers(ctx, `
        SELECT group_id, user_id, joined_at
        FROM group_members
        WHERE user_id = $1
        ORDER BY joined_at
    `, userID)
}

func (r *PostgresGroupRepository) listMembers(ctx context.Context, query, arg string) ([]models.GroupMember, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var member models.GroupMember
		if err := rows.Scan(&member.GroupID, &member.UserID, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}

	return members, nil
}

var _ GroupRepository = (*PostgresGroupRepository)(nil)
