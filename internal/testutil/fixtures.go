package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/internal/model"
)

var seq int64

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

var (
	hashOnce sync.Once
	hash     string
)

// TestPasswordHash returns a bcrypt hash of TestPassword at minimum cost.
func TestPasswordHash() string {
	hashOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		hash = string(b)
	})
	return hash
}

// TestUser creates a free user with no usage.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := atomic.AddInt64(&seq, 1)
	user := &model.User{
		Email:            fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), n),
		PasswordHash:     TestPasswordHash(),
		SubscriptionType: model.SubscriptionFree,
		AIRequestsUsed:   0,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail sets the email.
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithRequestsUsed sets ai_requests_used.
func WithRequestsUsed(used int) func(*model.User) {
	return func(u *model.User) {
		u.AIRequestsUsed = used
	}
}

// WithPremium makes the user premium until expires.
func WithPremium(expires time.Time) func(*model.User) {
	return func(u *model.User) {
		expires = expires.UTC()
		u.SubscriptionType = model.SubscriptionPremium
		u.SubscriptionExpires = &expires
	}
}

// TestPaymentIntent creates a payment intent for userID.
func TestPaymentIntent(t *testing.T, db *gorm.DB, userID int64, plan model.Plan, opts ...func(*model.PaymentIntent)) *model.PaymentIntent {
	t.Helper()

	terms, _ := plan.Terms()
	intent := &model.PaymentIntent{
		UserID:    userID,
		Amount:    terms.Amount,
		Currency:  model.CurrencyKES,
		Plan:      plan,
		Reference: fmt.Sprintf("ZUB_TEST_%d_%d", userID, atomic.AddInt64(&seq, 1)),
		Status:    model.PaymentPending,
	}

	for _, opt := range opts {
		opt(intent)
	}

	if err := db.Create(intent).Error; err != nil {
		t.Fatalf("Failed to create test payment intent: %v", err)
	}

	return intent
}

// WithReference sets the payment reference.
func WithReference(ref string) func(*model.PaymentIntent) {
	return func(p *model.PaymentIntent) {
		p.Reference = ref
	}
}

// WithPaymentStatus sets the payment status.
func WithPaymentStatus(status string) func(*model.PaymentIntent) {
	return func(p *model.PaymentIntent) {
		p.Status = status
	}
}

// WithCreatedAt backdates the payment intent.
func WithCreatedAt(at time.Time) func(*model.PaymentIntent) {
	return func(p *model.PaymentIntent) {
		p.CreatedAt = at
	}
}
