package service

import (
	"context"
	"time"

	"github.com/qs3c/zubari_server/internal/model/dto"
)

type UserService struct {
	quotaService *QuotaService
}

func NewUserService(quotaService *QuotaService) *UserService {
	return &UserService{quotaService: quotaService}
}

// Status reports the user's subscription and quota.
func (s *UserService) Status(ctx context.Context, userID int64) (*dto.UserStatus, error) {
	user, quota, err := s.quotaService.Status(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &dto.UserStatus{
		Email:             user.Email,
		SubscriptionType:  user.SubscriptionType,
		IsSubscribed:      quota.IsSubscribed,
		RequestsUsed:      user.AIRequestsUsed,
		RequestsRemaining: quota.Remaining,
	}
	if user.SubscriptionExpires != nil {
		status.SubscriptionExpires = user.SubscriptionExpires.UTC().Format(time.RFC3339)
	}
	return status, nil
}
