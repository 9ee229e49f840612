// Package follows provides the PostgreSQL-backed follow graph repository.
package follows

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/warbler/internal/dbx"
	"github.com/dmitrijs2005/warbler/internal/server/models"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/users"
)

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, followerID, followedID int64) error {
	query := `
		INSERT INTO follows (user_following_id, user_being_followed_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, followerID, followedID); err != nil {
		return fmt.Errorf("db error: %w", dbx.TranslateError(err))
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, followerID, followedID int64) error {
	query := `
		DELETE FROM follows
		WHERE user_following_id = $1 AND user_being_followed_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, followerID, followedID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE user_following_id = $1 AND user_being_followed_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE user_being_followed_id = $1`, userID)
}

func (r *PostgresRepository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE user_following_id = $1`, userID)
}

func (r *PostgresRepository) count(ctx context.Context, query string, userID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

const selectJoinedUsers = `
	SELECT u.id, u.username, u.email, u.password, u.image_url, u.header_image_url, u.bio, u.location, u.created_at
	FROM users u
	JOIN follows f ON `

func (r *PostgresRepository) Followers(ctx context.Context, userID int64) ([]*models.User, error) {
	query := selectJoinedUsers + `f.user_following_id = u.id
	WHERE f.user_being_followed_id = $1`
	return r.selectUsers(ctx, query, userID)
}

func (r *PostgresRepository) Following(ctx context.Context, userID int64) ([]*models.User, error) {
	query := selectJoinedUsers + `f.user_being_followed_id = u.id
	WHERE f.user_following_id = $1`
	return r.selectUsers(ctx, query, userID)
}

func (r *PostgresRepository) selectUsers(ctx context.Context, query string, userID int64) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	result, err := users.ScanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
