// Package follows declares the repository contract for the directed follow graph.
package follows

import (
	"context"

	"github.com/dmitrijs2005/warbler/internal/server/models"
)

// Repository stores (follower, followed) edges. Users are referenced by ID only.
type Repository interface {
	// Create adds the edge. An existing edge is left untouched.
	Create(ctx context.Context, followerID, followedID int64) error

	// Delete removes the edge. Deleting a missing edge is not an error.
	Delete(ctx context.Context, followerID, followedID int64) error

	// Exists reports whether followerID follows followedID.
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)

	// Followers returns users that follow userID, in no particular order.
	Followers(ctx context.Context, userID int64) ([]*models.User, error)

	// Following returns users that userID follows, in no particular order.
	Following(ctx context.Context, userID int64) ([]*models.User, error)

	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
}
