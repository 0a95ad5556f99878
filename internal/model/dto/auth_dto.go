package dto

// SignupRequest creates an email/password account.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo is the public view of a user.
type UserInfo struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	SubscriptionType string `json:"subscriptionType"`
	CreatedAt        string `json:"createdAt,omitempty"`
}

// UserStatus mirrors the quota evaluation for the current user.
type UserStatus struct {
	Email               string    `json:"email"`
	SubscriptionType    string    `json:"subscriptionType"`
	IsSubscribed        bool      `json:"isSubscribed"`
	SubscriptionExpires string    `json:"subscriptionExpires,omitempty"`
	RequestsUsed        int       `json:"requestsUsed"`
	RequestsRemaining   Remaining `json:"requestsRemaining"`
}
