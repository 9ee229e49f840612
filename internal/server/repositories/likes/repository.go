// Package likes declares the repository contract for (user, message) like edges.
package likes

import "context"

// Repository stores like edges. The pair (userID, messageID) is unique.
type Repository interface {
	// Create inserts the edge and reports whether a row was added.
	// false means the edge already existed.
	Create(ctx context.Context, userID, messageID int64) (bool, error)

	// Delete removes the caller's edge for messageID only.
	Delete(ctx context.Context, userID, messageID int64) error

	// LikedMessageIDs returns every message the user currently likes.
	LikedMessageIDs(ctx context.Context, userID int64) ([]int64, error)
}
