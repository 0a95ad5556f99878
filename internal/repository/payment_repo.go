package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/zubari_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// WithContext returns a repository whose queries carry ctx.
func (r *PaymentRepository) WithContext(ctx context.Context) *PaymentRepository {
	return &PaymentRepository{db: r.db.WithContext(ctx)}
}

func (r *PaymentRepository) Create(intent *model.PaymentIntent) error {
	return r.db.Create(intent).Error
}

// GetByReference looks an intent up by reference, scoped to its owner.
func (r *PaymentRepository) GetByReference(reference string, userID int64) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := r.db.Where("reference = ? AND user_id = ?", reference, userID).First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetByReferenceForUpdate is GetByReference as a locking read, so inside a
// transaction it sees the latest committed row instead of the snapshot.
func (r *PaymentRepository) GetByReferenceForUpdate(reference string, userID int64) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reference = ? AND user_id = ?", reference, userID).
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// MarkCompleted moves a pending intent to completed. It reports false when the
// intent was no longer pending.
func (r *PaymentRepository) MarkCompleted(id int64, at time.Time) (bool, error) {
	result := r.db.Model(&model.PaymentIntent{}).
		Where("id = ? AND status = ?", id, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":       model.PaymentCompleted,
			"completed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByUser returns the user's intents, newest first.
func (r *PaymentRepository) ListByUser(userID int64, limit int) ([]*model.PaymentIntent, error) {
	var intents []*model.PaymentIntent
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&intents).Error
	return intents, err
}

// FailStalePending marks pending intents created before cutoff as failed.
func (r *PaymentRepository) FailStalePending(cutoff time.Time) (int64, error) {
	result := r.db.Model(&model.PaymentIntent{}).
		Where("status = ? AND created_at < ?", model.PaymentPending, cutoff).
		Update("status", model.PaymentFailed)
	return result.RowsAffected, result.Error
}

// CountByStatus returns intent counts keyed by status.
func (r *PaymentRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&model.PaymentIntent{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
