// Package messages gives the core the little it needs of the message table:
// messages are owned elsewhere and only referenced by ID.
package messages

import (
	"context"

	"github.com/dmitrijs2005/warbler/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}
