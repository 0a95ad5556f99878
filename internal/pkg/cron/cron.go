package cron

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/zubari_server/internal/repository"
)

// Service runs periodic maintenance sweeps over subscriptions and payments.
type Service struct {
	userRepo    *repository.UserRepository
	paymentRepo *repository.PaymentRepository
	interval    time.Duration
	pendingTTL  time.Duration
	logger      *zap.Logger
	now         func() time.Time
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// SweepResult reports how many rows one sweep changed.
type SweepResult struct {
	DowngradedUsers int64
	FailedPayments  int64
}

func NewService(
	userRepo *repository.UserRepository,
	paymentRepo *repository.PaymentRepository,
	interval time.Duration,
	pendingTTL time.Duration,
	logger *zap.Logger,
) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		interval:    interval,
		pendingTTL:  pendingTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		stopChan:    make(chan struct{}),
	}
}

// Start runs the sweep every interval until Stop is called.
func (s *Service) Start() {
	go s.run()
	s.logger.Info("cron service started", zap.Duration("interval", s.interval))
}

// Stop is safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.logger.Info("cron service stopped")
	})
}

func (s *Service) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			if _, err := s.RunNow(ctx); err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// RunNow downgrades lapsed premium users and fails payment intents that
// stayed pending longer than the pending TTL. Both sweeps run even if one fails.
func (s *Service) RunNow(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.now()

	downgraded, errUsers := s.userRepo.WithContext(ctx).DowngradeLapsed(now)
	if errUsers == nil {
		result.DowngradedUsers = downgraded
	}

	failed, errPayments := s.paymentRepo.WithContext(ctx).FailStalePending(now.Add(-s.pendingTTL))
	if errPayments == nil {
		result.FailedPayments = failed
	}

	if result.DowngradedUsers > 0 || result.FailedPayments > 0 {
		s.logger.Info("sweep completed",
			zap.Int64("downgraded_users", result.DowngradedUsers),
			zap.Int64("failed_payments", result.FailedPayments))
	}

	return result, errors.Join(errUsers, errPayments)
}
