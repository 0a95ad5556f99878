package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/pkg/ai"
	"github.com/qs3c/zubari_server/internal/pkg/queue"
	"github.com/qs3c/zubari_server/internal/repository"
	"github.com/qs3c/zubari_server/internal/testutil"
)

type publishedEvent struct {
	UserID int64
	Type   string
	Data   interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, userID int64, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType, Data: data})
	return nil
}

func (p *fakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []*queue.ReceiptJob
	err  error
}

func (q *fakeQueue) Push(_ context.Context, job *queue.ReceiptJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Jobs() []*queue.ReceiptJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*queue.ReceiptJob(nil), q.jobs...)
}

type fakeRevoker struct {
	tokenID string
	ttl     time.Duration
	err     error
}

func (r *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.tokenID = tokenID
	r.ttl = ttl
	return r.err
}

// failingGenerator always fails.
type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, model.RequestKind, ai.Payload) (*ai.Result, error) {
	return nil, errors.New("provider unavailable")
}

type testEnv struct {
	db        *gorm.DB
	publisher *fakePublisher
	receipts  *fakeQueue
	revoker   *fakeRevoker
	quota     *QuotaService
	payments  *PaymentService
	auth      *AuthService
	users     *UserService
	ai        *AIService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return newTestEnv(db, true)
}

func newTestEnv(db *gorm.DB, failOpen bool) *testEnv {
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	aiRequestRepo := repository.NewAIRequestRepository(db)

	env := &testEnv{
		db:        db,
		publisher: &fakePublisher{},
		receipts:  &fakeQueue{},
		revoker:   &fakeRevoker{},
	}
	env.quota = NewQuotaService(db, userRepo, aiRequestRepo, env.publisher, nil)
	env.payments = NewPaymentService(db, userRepo, paymentRepo, env.publisher, env.receipts, nil)
	env.auth = NewAuthService(userRepo, NewBcryptHasher(bcrypt.MinCost), env.revoker,
		&config.JWTConfig{Secret: "test-secret", ExpireHours: 24})
	env.users = NewUserService(env.quota)
	env.ai = NewAIService(env.quota, ai.NewMockGenerator(), failOpen, nil)
	return env
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

var userColumns = []string{
	"id", "email", "password_hash", "subscription_type", "subscription_expires",
	"ai_requests_used", "created_at", "updated_at",
}
