package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/pkg/metrics"
	"github.com/qs3c/zubari_server/internal/pkg/pubsub"
	"github.com/qs3c/zubari_server/internal/pkg/queue"
	"github.com/qs3c/zubari_server/internal/repository"
)

const referenceAttempts = 3

// ReceiptQueue accepts receipt email jobs. *queue.Queue implements it.
type ReceiptQueue interface {
	Push(ctx context.Context, job *queue.ReceiptJob) error
}

// ActivationResult is the state after a successful activation.
type ActivationResult struct {
	Intent *model.PaymentIntent
	User   *model.User
}

type PaymentService struct {
	db           *gorm.DB
	userRepo     *repository.UserRepository
	paymentRepo  *repository.PaymentRepository
	publisher    EventPublisher
	receipts     ReceiptQueue
	logger       *zap.Logger
	now          func() time.Time
	newReference func(userID int64, now time.Time) string
}

func NewPaymentService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	paymentRepo *repository.PaymentRepository,
	publisher EventPublisher,
	receipts ReceiptQueue,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		db:           db,
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		publisher:    publisher,
		receipts:     receipts,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newReference: NewPaymentReference,
	}
}

// NewPaymentReference builds ZUB_<unix millis>_<user id>_<8 hex chars>.
func NewPaymentReference(userID int64, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ZUB_%d_%d_%s", now.UnixMilli(), userID, suffix)
}

// ParsePlan validates a client supplied plan name.
func ParsePlan(s string) (model.Plan, error) {
	plan := model.Plan(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := plan.Terms(); !ok {
		return "", ErrInvalidPlan
	}
	return plan, nil
}

// CreateIntent records a pending payment for plan with a fresh reference.
func (s *PaymentService) CreateIntent(ctx context.Context, userID int64, planName string) (*model.PaymentIntent, error) {
	plan, err := ParsePlan(planName)
	if err != nil {
		return nil, err
	}
	terms, _ := plan.Terms()

	if _, err := s.userRepo.WithContext(ctx).GetByID(userID); err != nil {
		return nil, storageErr(err, ErrUserNotFound)
	}

	payments := s.paymentRepo.WithContext(ctx)
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		intent := &model.PaymentIntent{
			UserID:    userID,
			Amount:    terms.Amount,
			Currency:  model.CurrencyKES,
			Plan:      plan,
			Reference: s.newReference(userID, s.now()),
			Status:    model.PaymentPending,
		}

		err := payments.Create(intent)
		if err == nil {
			metrics.PaymentIntentCreated(string(plan))
			return intent, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, storageErr(err, nil)
		}
		s.logger.Warn("payment reference collision, regenerating",
			zap.Int64("user_id", userID),
			zap.String("reference", intent.Reference))
	}

	return nil, ErrDuplicateReference
}

// Activate completes the user's pending intent identified by reference and
// upgrades the user to premium for the plan's duration, both in one
// transaction. An intent can be activated once.
func (s *PaymentService) Activate(ctx context.Context, userID int64, reference string) (*ActivationResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrEmptyInput
	}

	now := s.now()
	result := &ActivationResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payments := s.paymentRepo.WithTx(tx)
		users := s.userRepo.WithTx(tx)

		intent, err := payments.GetByReference(reference, userID)
		if err != nil {
			return storageErr(err, ErrPaymentNotFound)
		}
		if err := checkActivatable(intent.Status); err != nil {
			return err
		}

		ok, err := payments.MarkCompleted(intent.ID, now)
		if err != nil {
			return storageErr(err, nil)
		}
		if !ok {
			// lost a race with another activation or the sweep
			current, err := payments.GetByReferenceForUpdate(reference, userID)
			if err != nil {
				return storageErr(err, ErrPaymentNotFound)
			}
			if err := checkActivatable(current.Status); err != nil {
				return err
			}
			return ErrPaymentNotPending
		}
		intent.Status = model.PaymentCompleted
		intent.CompletedAt = &now

		if err := users.ActivatePremium(userID, now.Add(intent.Plan.Duration())); err != nil {
			return storageErr(err, ErrUserNotFound)
		}

		user, err := users.GetByID(userID)
		if err != nil {
			return storageErr(err, ErrUserNotFound)
		}

		result.Intent = intent
		result.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SubscriptionActivated(string(result.Intent.Plan))
	s.afterActivation(ctx, result)
	return result, nil
}

func checkActivatable(status string) error {
	switch status {
	case model.PaymentPending:
		return nil
	case model.PaymentCompleted:
		return ErrAlreadyActivated
	default:
		return ErrPaymentNotPending
	}
}

// afterActivation notifies the user. Failures are logged only; the
// activation has already committed.
func (s *PaymentService) afterActivation(ctx context.Context, result *ActivationResult) {
	user, intent := result.User, result.Intent

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, user.ID, pubsub.EventSubscriptionActivated, map[string]interface{}{
			"paymentReference":    intent.Reference,
			"plan":                intent.Plan,
			"subscriptionExpires": user.SubscriptionExpires,
		})
		if err != nil {
			s.logger.Warn("failed to publish activation", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	if s.receipts != nil && user.SubscriptionExpires != nil {
		err := s.receipts.Push(ctx, &queue.ReceiptJob{
			UserID:              user.ID,
			Email:               user.Email,
			PaymentReference:    intent.Reference,
			Plan:                string(intent.Plan),
			Amount:              intent.Amount,
			Currency:            intent.Currency,
			SubscriptionExpires: *user.SubscriptionExpires,
		})
		if err != nil {
			s.logger.Warn("failed to queue receipt", zap.String("reference", intent.Reference), zap.Error(err))
		}
	}
}

// ListIntents returns the user's payment intents, newest first.
func (s *PaymentService) ListIntents(ctx context.Context, userID int64, limit int) ([]*model.PaymentIntent, error) {
	intents, err := s.paymentRepo.WithContext(ctx).ListByUser(userID, limit)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return intents, nil
}
