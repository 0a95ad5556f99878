package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// WithContext returns a repository whose queries carry ctx.
func (r *UserRepository) WithContext(ctx context.Context) *UserRepository {
	return &UserRepository{db: r.db.WithContext(ctx)}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ConsumeFreeRequest increments ai_requests_used only while it is below limit
// and the user holds no premium subscription running at now. It reports false
// when either guard blocked the update.
func (r *UserRepository) ConsumeFreeRequest(id int64, limit int, now time.Time) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND ai_requests_used < ?", id, limit).
		Where("NOT (subscription_type = ? AND subscription_expires IS NOT NULL AND subscription_expires > ?)",
			model.SubscriptionPremium, now).
		UpdateColumn("ai_requests_used", gorm.Expr("ai_requests_used + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ActivatePremium sets the user premium until expires and resets usage.
func (r *UserRepository) ActivatePremium(id int64, expires time.Time) error {
	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subscription_type":    model.SubscriptionPremium,
		"subscription_expires": expires,
		"ai_requests_used":     0,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DowngradeLapsed moves premium users whose subscription ended before now
// back to the free tier. Usage counters are left as they are.
func (r *UserRepository) DowngradeLapsed(now time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("subscription_type = ? AND subscription_expires IS NOT NULL AND subscription_expires <= ?",
			model.SubscriptionPremium, now).
		Update("subscription_type", model.SubscriptionFree)
	return result.RowsAffected, result.Error
}

// CountBySubscription returns user counts keyed by subscription type.
func (r *UserRepository) CountBySubscription() (map[string]int64, error) {
	var rows []struct {
		SubscriptionType string
		Count            int64
	}
	err := r.db.Model(&model.User{}).
		Select("subscription_type, COUNT(*) AS count").
		Group("subscription_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SubscriptionType] = row.Count
	}
	return counts, nil
}
