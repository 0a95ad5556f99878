package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/zubari_server/internal/pkg/email"
	"github.com/qs3c/zubari_server/internal/pkg/queue"
	"github.com/qs3c/zubari_server/internal/testutil"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	failures int // fail this many sends before succeeding
}

func (s *fakeSender) SendReceipt(to string, r email.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, r.PaymentReference)
	return nil
}

func (s *fakeSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func setupQueue(t *testing.T) *queue.Queue {
	t.Helper()
	rdb, _, cleanup := testutil.SetupTestRedis(t)
	t.Cleanup(cleanup)
	return queue.NewQueue(rdb, "receipt_jobs_test")
}

func testJob(ref string) *queue.ReceiptJob {
	return &queue.ReceiptJob{
		UserID:              1,
		Email:               "student@example.com",
		PaymentReference:    ref,
		Plan:                "monthly",
		Amount:              1000,
		Currency:            "KES",
		SubscriptionExpires: time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestProcessor_Success(t *testing.T) {
	q := setupQueue(t)
	sender := &fakeSender{}
	p := NewProcessor(sender, q, 3, nil)

	require.NoError(t, p.Process(context.Background(), testJob("ZUB_1")))
	assert.Equal(t, []string{"ZUB_1"}, sender.Sent())

	n, err := q.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestProcessor_RequeuesOnFailure(t *testing.T) {
	ctx := context.Background()
	q := setupQueue(t)
	sender := &fakeSender{failures: 1}
	p := NewProcessor(sender, q, 3, nil)

	require.NoError(t, p.Process(ctx, testJob("ZUB_2")))
	assert.Empty(t, sender.Sent())

	job, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "ZUB_2", job.PaymentReference)
	assert.Equal(t, 1, job.Attempts)

	require.NoError(t, p.Process(ctx, job))
	assert.Equal(t, []string{"ZUB_2"}, sender.Sent())
}

func TestProcessor_DropsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	q := setupQueue(t)
	sender := &fakeSender{failures: 10}
	p := NewProcessor(sender, q, 2, nil)

	job := testJob("ZUB_3")
	job.Attempts = 1

	err := p.Process(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZUB_3")

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestProcessor_MissingRecipient(t *testing.T) {
	sender := &fakeSender{}
	p := NewProcessor(sender, setupQueue(t), 0, nil)

	job := testJob("ZUB_4")
	job.Email = ""
	assert.Error(t, p.Process(context.Background(), job))
	assert.Empty(t, sender.Sent())
	assert.Equal(t, DefaultMaxAttempts, p.maxAttempts)
}
