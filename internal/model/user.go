package model

import (
	"time"
)

// Subscription types stored on users.subscription_type.
const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

// FreeTierRequestLimit is the number of billable AI calls a free user gets.
const FreeTierRequestLimit = 5

type User struct {
	ID                  int64      `gorm:"primaryKey" json:"id"`
	Email               string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"size:255;not null" json:"-"`
	SubscriptionType    string     `gorm:"size:20;default:free;not null;index" json:"subscription_type"`
	SubscriptionExpires *time.Time `gorm:"index" json:"subscription_expires,omitempty"`
	AIRequestsUsed      int        `gorm:"default:0;not null" json:"ai_requests_used"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
