package model

import (
	"time"
)

// Plan is the canonical billing plan vocabulary.
type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

const CurrencyKES = "KES"

// Payment intent statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// PlanTerms describes what a plan costs and how long it lasts.
type PlanTerms struct {
	Amount       int64
	DurationDays int
}

var plans = map[Plan]PlanTerms{
	PlanMonthly: {Amount: 1000, DurationDays: 30},
	PlanYearly:  {Amount: 10000, DurationDays: 365},
}

// Terms returns the plan terms, ok is false for unknown plans.
func (p Plan) Terms() (PlanTerms, bool) {
	t, ok := plans[p]
	return t, ok
}

// Duration returns how long an activation of p extends the subscription.
func (p Plan) Duration() time.Duration {
	t, ok := plans[p]
	if !ok {
		return 0
	}
	return time.Duration(t.DurationDays) * 24 * time.Hour
}

type PaymentIntent struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	UserID      int64      `gorm:"not null;index" json:"user_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Currency    string     `gorm:"size:3;default:KES;not null" json:"currency"`
	Plan        Plan       `gorm:"size:20;not null" json:"plan"`
	Reference   string     `gorm:"size:255;uniqueIndex;not null" json:"reference"`
	Status      string     `gorm:"size:20;default:pending;not null;index" json:"status"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (PaymentIntent) TableName() string {
	return "payments"
}
