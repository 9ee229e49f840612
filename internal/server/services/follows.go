package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/dmitrijs2005/warbler/internal/dbx"
	"github.com/dmitrijs2005/warbler/internal/logging"
	"github.com/dmitrijs2005/warbler/internal/monitoring"
	"github.com/dmitrijs2005/warbler/internal/server/models"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/repomanager"
)

// FollowService maintains the directed follow graph.
type FollowService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxRetries  uint64
	logger      logging.Logger
	metrics     *monitoring.Metrics
}

func NewFollowService(db *sql.DB, m repomanager.RepositoryManager, maxRetries int, logger logging.Logger, metrics *monitoring.Metrics) *FollowService {
	return &FollowService{
		db:          db,
		repomanager: m,
		maxRetries:  uint64(max(maxRetries, 0)),
		logger:      logger.With("module", "follows"),
		metrics:     metrics,
	}
}

// Follow stages the edge followerID -> followedID. Following twice is a
// no-op. Unknown users fail at commit with an error matching
// common.ErrorReference.
func (s *FollowService) Follow(session *dbx.Session, followerID, followedID int64) error {
	if followerID == followedID {
		return common.ErrorSelfFollow
	}

	session.Add(func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Follows(tx).Create(ctx, followerID, followedID); err != nil {
			return fmt.Errorf("error creating follow: %w", err)
		}
		return nil
	})
	session.AfterCommit(func() {
		s.metrics.FollowChanges.WithLabelValues("follow").Inc()
		s.logger.Debug(context.Background(), "follow committed", "follower_id", followerID, "followed_id", followedID)
	})
	return nil
}

// Unfollow stages removal of the edge. A missing edge is not an error.
func (s *FollowService) Unfollow(session *dbx.Session, followerID, followedID int64) error {
	session.Add(func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Follows(tx).Delete(ctx, followerID, followedID); err != nil {
			return fmt.Errorf("error deleting follow: %w", err)
		}
		return nil
	})
	session.AfterCommit(func() {
		s.metrics.FollowChanges.WithLabelValues("unfollow").Inc()
		s.logger.Debug(context.Background(), "unfollow committed", "follower_id", followerID, "followed_id", followedID)
	})
	return nil
}

// FollowNow follows and commits in one step.
func (s *FollowService) FollowNow(ctx context.Context, followerID, followedID int64) error {
	session := dbx.NewSession(s.db, nil, s.maxRetries)
	if err := s.Follow(session, followerID, followedID); err != nil {
		return err
	}
	return Commit(ctx, session, s.metrics)
}

// UnfollowNow unfollows and commits in one step.
func (s *FollowService) UnfollowNow(ctx context.Context, followerID, followedID int64) error {
	session := dbx.NewSession(s.db, nil, s.maxRetries)
	if err := s.Unfollow(session, followerID, followedID); err != nil {
		return err
	}
	return Commit(ctx, session, s.metrics)
}

// IsFollowing reports whether a follows b.
func (s *FollowService) IsFollowing(ctx context.Context, a, b int64) (bool, error) {
	return s.repomanager.Follows(s.db).Exists(ctx, a, b)
}

// IsFollowedBy reports whether b follows a.
func (s *FollowService) IsFollowedBy(ctx context.Context, a, b int64) (bool, error) {
	return s.IsFollowing(ctx, b, a)
}

func (s *FollowService) Followers(ctx context.Context, userID int64) ([]*models.User, error) {
	return s.repomanager.Follows(s.db).Followers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID int64) ([]*models.User, error) {
	return s.repomanager.Follows(s.db).Following(ctx, userID)
}
