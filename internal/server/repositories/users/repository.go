// Package users declares the repository contract for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/warbler/internal/server/models"
)

// Repository stores user identity records.
type Repository interface {
	// Create inserts user and returns it with ID set.
	// Constraint violations are reported as *common.IntegrityError.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin looks a user up by exact username.
	// Implementations return common.ErrorNotFound when absent.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// GetUserByID returns common.ErrorNotFound when absent.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}
