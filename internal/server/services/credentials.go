package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/dmitrijs2005/warbler/internal/dbx"
	"github.com/dmitrijs2005/warbler/internal/logging"
	"github.com/dmitrijs2005/warbler/internal/monitoring"
	"github.com/dmitrijs2005/warbler/internal/server/auth"
	"github.com/dmitrijs2005/warbler/internal/server/config"
	"github.com/dmitrijs2005/warbler/internal/server/models"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

// CredentialService creates accounts and verifies passwords.
type CredentialService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	cost                        int
	maxRetries                  uint64
	dummyHash                   []byte
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
	metrics                     *monitoring.Metrics
}

// NewCredentialService constructs a CredentialService. It hashes a random
// password once so that lookups of unknown users cost the same bcrypt work
// as a real comparison.
func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, metrics *monitoring.Metrics) (*CredentialService, error) {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}

	random, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("error generating dummy password: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(random), cost)
	if err != nil {
		return nil, fmt.Errorf("error hashing dummy password: %w", err)
	}

	return &CredentialService{
		db:                          db,
		repomanager:                 m,
		cost:                        cost,
		maxRetries:                  uint64(max(cfg.TxMaxRetries, 0)),
		dummyHash:                   dummy,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "credentials"),
		metrics:                     metrics,
	}, nil
}

// NewSession opens an empty staging session on the service database.
func (s *CredentialService) NewSession() *dbx.Session {
	return dbx.NewSession(s.db, nil, s.maxRetries)
}

// Signup hashes password and stages the new account on session.
//
// The returned user has ID zero until session commits. Duplicate or missing
// username/email are reported by session.Commit as *common.IntegrityError.
func (s *CredentialService) Signup(session *dbx.Session, username, email, password, imageURL string) (*models.User, error) {
	if password == "" || len(password) > maxPasswordBytes {
		return nil, common.ErrorInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{UserName: username, Email: email, PasswordHash: string(hash)}
	if imageURL != "" {
		user.ImageURL = &imageURL
	}

	var created models.User
	session.Add(func(ctx context.Context, tx dbx.DBTX) error {
		row := *user
		if _, err := s.repomanager.Users(tx).Create(ctx, &row); err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		created = row
		return nil
	})
	session.AfterCommit(func() {
		user.ID = created.ID
		user.CreatedAt = created.CreatedAt
		s.logger.Info(context.Background(), "user created", "user_id", user.ID, "username", user.UserName)
	})

	s.metrics.SignupStaged.Inc()
	return user, nil
}

// Register signs up and commits in one step.
func (s *CredentialService) Register(ctx context.Context, username, email, password, imageURL string) (*models.User, error) {
	session := s.NewSession()
	user, err := s.Signup(session, username, email, password, imageURL)
	if err != nil {
		return nil, err
	}
	if err := Commit(ctx, session, s.metrics); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks username and password. A mismatch and an unknown
// username both yield (nil, false, nil); only storage failures return an error.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (*models.User, bool, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.metrics.LoginFailure.WithLabelValues("unknown_user").Inc()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error loading user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.metrics.LoginFailure.WithLabelValues("bad_password").Inc()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error verifying password: %w", err)
	}

	s.metrics.LoginSuccess.Inc()
	return user, true, nil
}

// Login authenticates and issues an access token identifying the user.
func (s *CredentialService) Login(ctx context.Context, username, password string) (string, error) {
	user, ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Error(ctx, "authentication failed", "error", err)
		return "", common.ErrorInternal
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// UserIDFromToken resolves the caller identity carried by an access token.
func (s *CredentialService) UserIDFromToken(token string) (int64, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *CredentialService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByID(ctx, id)
}

func (s *CredentialService) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
}

// Profile returns the user with follower, following and message counts.
func (s *CredentialService) Profile(ctx context.Context, id int64) (*models.Profile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	graph := s.repomanager.Follows(s.db)
	followers, err := graph.CountFollowers(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := graph.CountFollowing(ctx, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.repomanager.Messages(s.db).CountByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.Profile{User: user, Followers: followers, Following: following, Messages: messages}, nil
}
