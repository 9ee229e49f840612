// Package services contains the warbler core business logic: credentials,
// the follow graph and the like ledger.
//
// Mutations are staged on a dbx.Session and take effect only when the
// session commits. Eager helpers open a session and commit it themselves.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/dmitrijs2005/warbler/internal/dbx"
	"github.com/dmitrijs2005/warbler/internal/monitoring"
)

// Commit commits session and counts a failed commit by error kind.
func Commit(ctx context.Context, session *dbx.Session, metrics *monitoring.Metrics) error {
	err := session.Commit(ctx)
	if err != nil {
		metrics.CommitFailures.WithLabelValues(failureKind(err)).Inc()
	}
	return err
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, common.ErrorUniqueViolation):
		return "unique"
	case errors.Is(err, common.ErrorForeignKeyViolation):
		return "foreign_key"
	case errors.Is(err, common.ErrorNotNullViolation):
		return "not_null"
	case errors.Is(err, common.ErrorCheckViolation):
		return "check"
	case dbx.IsSerializationFailure(err):
		return "serialization"
	default:
		return "other"
	}
}
