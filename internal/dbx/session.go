package dbx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Op is a unit of staged work. It may run more than once when a commit is
// retried, so it must not keep state between runs except through AfterCommit.
type Op func(ctx context.Context, tx DBTX) error

// Session collects staged operations and applies them atomically.
//
// Nothing touches the database until Commit. Commit runs every staged Op in
// order inside a single transaction; either all of them take effect or none
// do. Rollback discards staged work without side effects.
type Session struct {
	db         *sql.DB
	opts       *sql.TxOptions
	maxRetries uint64

	mu        sync.Mutex
	ops       []Op
	callbacks []func()
}

// retryable is a seam for tests.
var retryable = IsSerializationFailure

// NewSession returns an empty session bound to db. Commits are retried up to
// maxRetries times when the transaction fails with a serialization failure.
func NewSession(db *sql.DB, opts *sql.TxOptions, maxRetries uint64) *Session {
	return &Session{db: db, opts: opts, maxRetries: maxRetries}
}

// Add stages op.
func (s *Session) Add(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
}

// AfterCommit registers fn to run once the transaction has committed.
func (s *Session) AfterCommit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Pending returns the number of staged operations.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops)
}

// Rollback drops all staged work.
func (s *Session) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
	s.callbacks = nil
}

// Commit applies staged operations in one transaction. The session is empty
// afterwards whatever the outcome. Constraint violations are returned as
// *common.IntegrityError and are never retried.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	ops, callbacks := s.ops, s.callbacks
	s.ops, s.callbacks = nil, nil
	s.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}

	b := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(10*time.Millisecond))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := WithTx(ctx, s.db, s.opts, func(ctx context.Context, tx DBTX) error {
			for _, op := range ops {
				if err := op(ctx, tx); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil && retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return TranslateError(err)
	}

	for _, fn := range callbacks {
		fn()
	}
	return nil
}
