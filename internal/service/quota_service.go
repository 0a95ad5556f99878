package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/model/dto"
	"github.com/qs3c/zubari_server/internal/pkg/pubsub"
	"github.com/qs3c/zubari_server/internal/repository"
)

// EventPublisher pushes per-user account events. *pubsub.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, userID int64, eventType string, data interface{}) error
}

// IsSubscribed reports whether user holds a premium subscription that is
// still running at now. Expiry is exclusive.
func IsSubscribed(user *model.User, now time.Time) bool {
	return user.SubscriptionType == model.SubscriptionPremium &&
		user.SubscriptionExpires != nil &&
		user.SubscriptionExpires.After(now)
}

// EvaluateQuota decides whether user may make another AI call at now.
func EvaluateQuota(user *model.User, now time.Time) dto.QuotaStatus {
	if IsSubscribed(user, now) {
		return dto.QuotaStatus{
			IsSubscribed: true,
			Allowed:      true,
			Remaining:    dto.UnlimitedRemaining(),
		}
	}
	return dto.QuotaStatus{
		IsSubscribed: false,
		Allowed:      user.AIRequestsUsed < model.FreeTierRequestLimit,
		Remaining:    dto.LimitedRemaining(model.FreeTierRequestLimit - user.AIRequestsUsed),
	}
}

type QuotaService struct {
	db            *gorm.DB
	userRepo      *repository.UserRepository
	aiRequestRepo *repository.AIRequestRepository
	publisher     EventPublisher
	logger        *zap.Logger
	now           func() time.Time
}

func NewQuotaService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	aiRequestRepo *repository.AIRequestRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *QuotaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotaService{
		db:            db,
		userRepo:      userRepo,
		aiRequestRepo: aiRequestRepo,
		publisher:     publisher,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate applies EvaluateQuota at the service clock.
func (s *QuotaService) Evaluate(user *model.User) dto.QuotaStatus {
	return EvaluateQuota(user, s.now())
}

// Status loads the user and evaluates its quota.
func (s *QuotaService) Status(ctx context.Context, userID int64) (*model.User, dto.QuotaStatus, error) {
	user, err := s.userRepo.WithContext(ctx).GetByID(userID)
	if err != nil {
		return nil, dto.QuotaStatus{}, storageErr(err, ErrUserNotFound)
	}
	return user, s.Evaluate(user), nil
}

// RecordUsage counts one billable AI call against a user evaluated as not
// subscribed. The counter increment and the usage log entry commit together;
// if the counter is already at the limit nothing is written and
// ErrQuotaExceeded is returned. A user who became premium since the gate
// read them is not counted and gets the subscribed status back. The returned
// status reflects the new count.
func (s *QuotaService) RecordUsage(ctx context.Context, userID int64, kind model.RequestKind) (dto.QuotaStatus, error) {
	if !kind.Valid() {
		return dto.QuotaStatus{}, fmt.Errorf("%w: unknown request kind %q", ErrValidation, kind)
	}

	now := s.now()
	var (
		updated  *model.User
		recorded bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		ok, err := users.ConsumeFreeRequest(userID, model.FreeTierRequestLimit, now)
		if err != nil {
			return storageErr(err, nil)
		}
		if !ok {
			user, err := users.GetByID(userID)
			if err != nil {
				return storageErr(err, ErrUserNotFound)
			}
			if IsSubscribed(user, now) {
				updated = user
				return nil
			}
			return ErrQuotaExceeded
		}
		recorded = true

		if err := s.aiRequestRepo.WithTx(tx).Create(&model.AIRequest{
			UserID:      userID,
			RequestType: kind,
		}); err != nil {
			return storageErr(err, nil)
		}

		updated, err = users.GetByID(userID)
		return storageErr(err, ErrUserNotFound)
	})
	if err != nil {
		return dto.QuotaStatus{}, err
	}

	status := EvaluateQuota(updated, now)
	if recorded {
		s.publish(ctx, userID, pubsub.EventQuotaUpdated, status)
	}
	return status, nil
}

func (s *QuotaService) publish(ctx context.Context, userID int64, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, userID, eventType, data); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

// isStorage reports whether err is an infrastructure failure rather than a
// domain outcome.
func isStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
