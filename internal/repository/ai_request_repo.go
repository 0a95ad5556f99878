package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/internal/model"
)

type AIRequestRepository struct {
	db *gorm.DB
}

func NewAIRequestRepository(db *gorm.DB) *AIRequestRepository {
	return &AIRequestRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *AIRequestRepository) WithTx(tx *gorm.DB) *AIRequestRepository {
	return &AIRequestRepository{db: tx}
}

// WithContext returns a repository whose queries carry ctx.
func (r *AIRequestRepository) WithContext(ctx context.Context) *AIRequestRepository {
	return &AIRequestRepository{db: r.db.WithContext(ctx)}
}

func (r *AIRequestRepository) Create(req *model.AIRequest) error {
	return r.db.Create(req).Error
}

func (r *AIRequestRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AIRequest{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ListByUser returns the user's usage log, newest first.
func (r *AIRequestRepository) ListByUser(userID int64, limit int) ([]*model.AIRequest, error) {
	var reqs []*model.AIRequest
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&reqs).Error
	return reqs, err
}
