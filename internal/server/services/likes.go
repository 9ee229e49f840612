package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/warbler/internal/dbx"
	"github.com/dmitrijs2005/warbler/internal/logging"
	"github.com/dmitrijs2005/warbler/internal/monitoring"
	"github.com/dmitrijs2005/warbler/internal/server/models"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/repomanager"
)

// LikeService flips (user, message) like edges.
type LikeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxRetries  uint64
	logger      logging.Logger
	metrics     *monitoring.Metrics
}

func NewLikeService(db *sql.DB, m repomanager.RepositoryManager, maxRetries int, logger logging.Logger, metrics *monitoring.Metrics) *LikeService {
	return &LikeService{
		db:          db,
		repomanager: m,
		maxRetries:  uint64(max(maxRetries, 0)),
		logger:      logger.With("module", "likes"),
		metrics:     metrics,
	}
}

// LikeToggle is the pending result of a staged toggle.
type LikeToggle struct {
	state     models.LikeState
	committed bool
}

// State returns the resulting state. ok is false until the session commits.
func (t *LikeToggle) State() (state models.LikeState, ok bool) {
	return t.state, t.committed
}

// ToggleLike flips the like edge in its own serializable transaction and
// returns the new state.
func (s *LikeService) ToggleLike(ctx context.Context, userID, messageID int64) (models.LikeState, error) {
	session := dbx.NewSession(s.db, dbx.Serializable, s.maxRetries)
	toggle := s.StageToggleLike(session, userID, messageID)

	if err := Commit(ctx, session, s.metrics); err != nil {
		return models.LikeStateUnliked, err
	}

	state, _ := toggle.State()
	return state, nil
}

// StageToggleLike stages a toggle on session. The outcome is decided when
// the session commits, against the state visible in that transaction.
func (s *LikeService) StageToggleLike(session *dbx.Session, userID, messageID int64) *LikeToggle {
	toggle := &LikeToggle{}

	var state models.LikeState
	session.Add(func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		state, err = s.toggle(ctx, tx, userID, messageID)
		return err
	})
	session.AfterCommit(func() {
		toggle.state = state
		toggle.committed = true
		s.metrics.LikeToggles.WithLabelValues(state.String()).Inc()
		s.logger.Debug(context.Background(), "like toggled", "user_id", userID, "message_id", messageID, "state", state.String())
	})
	return toggle
}

func (s *LikeService) toggle(ctx context.Context, tx dbx.DBTX, userID, messageID int64) (models.LikeState, error) {
	repo := s.repomanager.Likes(tx)

	liked, err := repo.LikedMessageIDs(ctx, userID)
	if err != nil {
		return models.LikeStateUnliked, fmt.Errorf("error loading likes: %w", err)
	}

	if !slices.Contains(liked, messageID) {
		inserted, err := repo.Create(ctx, userID, messageID)
		if err != nil {
			return models.LikeStateUnliked, fmt.Errorf("error creating like: %w", err)
		}
		if inserted {
			return models.LikeStateLiked, nil
		}
		// a concurrent toggle inserted the edge first; flip it back
	}

	if err := repo.Delete(ctx, userID, messageID); err != nil {
		return models.LikeStateUnliked, fmt.Errorf("error deleting like: %w", err)
	}
	return models.LikeStateUnliked, nil
}

// LikedMessages returns the ids of every message userID likes.
func (s *LikeService) LikedMessages(ctx context.Context, userID int64) ([]int64, error) {
	return s.repomanager.Likes(s.db).LikedMessageIDs(ctx, userID)
}

func (s *LikeService) IsLiked(ctx context.Context, userID, messageID int64) (bool, error) {
	liked, err := s.LikedMessages(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(liked, messageID), nil
}
