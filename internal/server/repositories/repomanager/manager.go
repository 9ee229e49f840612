package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/warbler/internal/dbx"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/follows"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/likes"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/messages"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against the pool for reads and inside a transaction for staged writes.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Follows(db dbx.DBTX) follows.Repository
	Likes(db dbx.DBTX) likes.Repository
	Messages(db dbx.DBTX) messages.Repository
}
