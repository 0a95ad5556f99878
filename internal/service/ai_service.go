package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/model/dto"
	"github.com/qs3c/zubari_server/internal/pkg/ai"
	"github.com/qs3c/zubari_server/internal/pkg/metrics"
)

// GateResult is generated content plus the quota after the call was counted.
type GateResult struct {
	*ai.Result
	Quota dto.QuotaStatus
}

// AIService gates billable AI operations on the user's quota.
type AIService struct {
	quotaService *QuotaService
	generator    ai.Generator
	failOpen     bool
	logger       *zap.Logger
}

// NewAIService builds the gate. With failOpen, results are still returned when
// usage could not be recorded because of a storage failure.
func NewAIService(quotaService *QuotaService, generator ai.Generator, failOpen bool, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{
		quotaService: quotaService,
		generator:    generator,
		failOpen:     failOpen,
		logger:       logger,
	}
}

// Handle runs one billable AI operation for userID: evaluate quota, validate
// input, generate, then count the call unless the user is subscribed.
func (s *AIService) Handle(ctx context.Context, userID int64, kind model.RequestKind, payload ai.Payload) (*GateResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown request kind %q", ErrValidation, kind)
	}

	_, status, err := s.quotaService.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		metrics.QuotaRejected(string(kind))
		return nil, ErrQuotaExceeded
	}

	if err := validatePayload(kind, payload); err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, kind, payload)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", kind, err)
	}

	if status.IsSubscribed {
		metrics.AIRequestServed(string(kind), model.SubscriptionPremium)
		return &GateResult{Result: result, Quota: status}, nil
	}

	updated, err := s.quotaService.RecordUsage(ctx, userID, kind)
	switch {
	case err == nil:
		status = updated
	case errors.Is(err, ErrQuotaExceeded):
		// a concurrent request took the last free call
		metrics.QuotaRejected(string(kind))
		return nil, ErrQuotaExceeded
	case isStorage(err) && s.failOpen:
		metrics.UsageRecordFailed()
		s.logger.Warn("usage not recorded, serving result",
			zap.Int64("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	default:
		if isStorage(err) {
			metrics.UsageRecordFailed()
		}
		return nil, err
	}

	tier := model.SubscriptionFree
	if status.IsSubscribed {
		tier = model.SubscriptionPremium
	}
	metrics.AIRequestServed(string(kind), tier)
	return &GateResult{Result: result, Quota: status}, nil
}

func validatePayload(kind model.RequestKind, p ai.Payload) error {
	var required []string
	switch kind {
	case model.RequestQuestionGeneration:
		required = []string{p.Paragraph}
	case model.RequestSummarization:
		required = []string{p.Text}
	case model.RequestQuestionAnswering:
		required = []string{p.Context, p.Question}
	case model.RequestStudyPlanGeneration:
		required = []string{p.Syllabus, p.Topics, p.StartDate, p.Deadline}
	}

	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return ErrEmptyInput
		}
	}
	return nil
}
