package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/dmitrijs2005/warbler/internal/dbx"
	"github.com/dmitrijs2005/warbler/internal/logging"
	"github.com/dmitrijs2005/warbler/internal/monitoring"
	"github.com/dmitrijs2005/warbler/internal/server/config"
	"github.com/dmitrijs2005/warbler/internal/server/models"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/follows"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/likes"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/messages"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type edge [2]int64

// memStore is an in-memory stand-in for the database. It enforces the same
// constraints as the schema. Writes are applied immediately, so tests only
// rely on rollback for sessions whose single op fails.
//
// Like writes are checked the way a serializable transaction would be: a
// transaction that read the like set and then writes after another
// transaction changed it fails with SQLSTATE 40001.
type memStore struct {
	mu sync.Mutex

	users    map[int64]*models.User
	nextUser int64
	follows  map[edge]struct{}
	likes    map[edge]struct{}
	messages map[int64]*models.Message
	nextMsg  int64

	likeVersion int64
	likeSeen    map[dbx.DBTX]int64

	readErr          error
	serializationErr int
	hideLikesOnce    bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*models.User{},
		follows:  map[edge]struct{}{},
		likes:    map[edge]struct{}{},
		messages: map[int64]*models.Message{},
		likeSeen: map[dbx.DBTX]int64{},
	}
}

func fkError(constraint string) error {
	return &common.IntegrityError{Kind: common.ErrorForeignKeyViolation, Constraint: constraint}
}

type memRepoManager struct{ s *memStore }

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) users.Repository              { return &memUsers{m.s} }
func (m *memRepoManager) Follows(dbx.DBTX) follows.Repository          { return &memFollows{m.s} }
func (m *memRepoManager) Likes(tx dbx.DBTX) likes.Repository              { return &memLikes{m.s, tx} }
func (m *memRepoManager) Messages(dbx.DBTX) messages.Repository        { return &memMessages{m.s} }

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.UserName == "" {
		return nil, &common.IntegrityError{Kind: common.ErrorNotNullViolation, Constraint: "username"}
	}
	if u.Email == "" {
		return nil, &common.IntegrityError{Kind: common.ErrorNotNullViolation, Constraint: "email"}
	}
	for _, existing := range r.s.users {
		if existing.UserName == u.UserName {
			return nil, &common.IntegrityError{Kind: common.ErrorUniqueViolation, Constraint: "users_username_key"}
		}
		if existing.Email == u.Email {
			return nil, &common.IntegrityError{Kind: common.ErrorUniqueViolation, Constraint: "users_email_key"}
		}
	}

	r.s.nextUser++
	u.ID = r.s.nextUser
	u.CreatedAt = time.Now()
	stored := *u
	r.s.users[u.ID] = &stored
	return u, nil
}

func (r *memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.readErr != nil {
		return nil, r.s.readErr
	}
	for _, u := range r.s.users {
		if u.UserName == login {
			found := *u
			return &found, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	found := *u
	return &found, nil
}

type memFollows struct{ s *memStore }

func (r *memFollows) Create(_ context.Context, followerID, followedID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[followerID]; !ok {
		return fkError("follows_user_following_id_fkey")
	}
	if _, ok := r.s.users[followedID]; !ok {
		return fkError("follows_user_being_followed_id_fkey")
	}
	r.s.follows[edge{followerID, followedID}] = struct{}{}
	return nil
}

func (r *memFollows) Delete(_ context.Context, followerID, followedID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.follows, edge{followerID, followedID})
	return nil
}

func (r *memFollows) Exists(_ context.Context, followerID, followedID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.follows[edge{followerID, followedID}]
	return ok, nil
}

func (r *memFollows) Followers(_ context.Context, userID int64) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*models.User
	for e := range r.s.follows {
		if e[1] == userID {
			result = append(result, r.s.users[e[0]])
		}
	}
	return result, nil
}

func (r *memFollows) Following(_ context.Context, userID int64) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*models.User
	for e := range r.s.follows {
		if e[0] == userID {
			result = append(result, r.s.users[e[1]])
		}
	}
	return result, nil
}

func (r *memFollows) CountFollowers(_ context.Context, userID int64) (int64, error) {
	return r.count(func(e edge) bool { return e[1] == userID })
}

func (r *memFollows) CountFollowing(_ context.Context, userID int64) (int64, error) {
	return r.count(func(e edge) bool { return e[0] == userID })
}

func (r *memFollows) count(match func(edge) bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.readErr != nil {
		return 0, r.s.readErr
	}
	var n int64
	for e := range r.s.follows {
		if match(e) {
			n++
		}
	}
	return n, nil
}

type memLikes struct {
	s  *memStore
	tx dbx.DBTX
}

// conflict reports a serialization failure when the like set changed after
// this transaction read it. Callers hold s.mu.
func (r *memLikes) conflict() error {
	if seen, ok := r.s.likeSeen[r.tx]; ok && seen != r.s.likeVersion {
		delete(r.s.likeSeen, r.tx)
		return &pgconn.PgError{Code: "40001"}
	}
	return nil
}

func (r *memLikes) wrote() {
	r.s.likeVersion++
	r.s.likeSeen[r.tx] = r.s.likeVersion
}

func (r *memLikes) Create(_ context.Context, userID, messageID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.conflict(); err != nil {
		return false, err
	}

	if _, ok := r.s.users[userID]; !ok {
		return false, fkError("likes_user_id_fkey")
	}
	if _, ok := r.s.messages[messageID]; !ok {
		return false, fkError("likes_message_id_fkey")
	}
	if _, ok := r.s.likes[edge{userID, messageID}]; ok {
		return false, nil
	}
	r.s.likes[edge{userID, messageID}] = struct{}{}
	r.wrote()
	return true, nil
}

func (r *memLikes) Delete(_ context.Context, userID, messageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.conflict(); err != nil {
		return err
	}
	delete(r.s.likes, edge{userID, messageID})
	r.wrote()
	return nil
}

func (r *memLikes) LikedMessageIDs(_ context.Context, userID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.serializationErr > 0 {
		r.s.serializationErr--
		return nil, &pgconn.PgError{Code: "40001"}
	}
	if r.s.readErr != nil {
		return nil, r.s.readErr
	}
	r.s.likeSeen[r.tx] = r.s.likeVersion
	if r.s.hideLikesOnce {
		r.s.hideLikesOnce = false
		return nil, nil
	}

	var result []int64
	for e := range r.s.likes {
		if e[0] == userID {
			result = append(result, e[1])
		}
	}
	return result, nil
}

type memMessages struct{ s *memStore }

func (r *memMessages) Create(_ context.Context, msg *models.Message) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[msg.UserID]; !ok {
		return nil, fkError("messages_user_id_fkey")
	}
	r.s.nextMsg++
	msg.ID = r.s.nextMsg
	msg.CreatedAt = time.Now()
	stored := *msg
	r.s.messages[msg.ID] = &stored
	return msg, nil
}

func (r *memMessages) CountByUser(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, m := range r.s.messages {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

// --- fixture ---

type fixture struct {
	db          *sql.DB
	mock        sqlmock.Sqlmock
	store       *memStore
	metrics     *monitoring.Metrics
	credentials *CredentialService
	follows     *FollowService
	likes       *LikeService
	messages    *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := newMemStore()
	rm := &memRepoManager{s: store}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		BcryptCost:                  bcrypt.MinCost,
		TxMaxRetries:                3,
	}

	creds, err := NewCredentialService(db, rm, cfg, logging.Discard, metrics)
	require.NoError(t, err)

	return &fixture{
		db:          db,
		mock:        mock,
		store:       store,
		metrics:     metrics,
		credentials: creds,
		follows:     NewFollowService(db, rm, cfg.TxMaxRetries, logging.Discard, metrics),
		likes:       NewLikeService(db, rm, cfg.TxMaxRetries, logging.Discard, metrics),
		messages:    NewMessageService(db, rm),
	}
}

// expectTx queues one successful transaction on the mock.
func (f *fixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

// expectFailedTx queues one rolled back transaction on the mock.
func (f *fixture) expectFailedTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
}

// signup creates and commits a user.
func (f *fixture) signup(t *testing.T, username, password string) *models.User {
	t.Helper()

	f.expectTx()
	session := f.credentials.NewSession()
	u, err := f.credentials.Signup(session, username, username+"@test.com", password, "")
	require.NoError(t, err)
	require.NoError(t, Commit(context.Background(), session, f.metrics))
	require.NotZero(t, u.ID)
	return u
}
