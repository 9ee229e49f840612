package dbx

import (
	"errors"

	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the core cares about.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// TranslateError converts constraint violations reported by PostgreSQL into
// *common.IntegrityError. Other errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var ie *common.IntegrityError
	if errors.As(err, &ie) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind error
	switch pgErr.Code {
	case codeUniqueViolation:
		kind = common.ErrorUniqueViolation
	case codeForeignKeyViolation:
		kind = common.ErrorForeignKeyViolation
	case codeNotNullViolation:
		kind = common.ErrorNotNullViolation
	case codeCheckViolation:
		kind = common.ErrorCheckViolation
	default:
		return err
	}

	constraint := pgErr.ConstraintName
	if constraint == "" {
		constraint = pgErr.ColumnName
	}

	return &common.IntegrityError{Kind: kind, Constraint: constraint, Err: err}
}

// IsSerializationFailure reports whether err is a transient conflict between
// concurrent transactions that is safe to retry from the start.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
