package dto

// InitiatePaymentRequest POST /api/v1/payments/initiate
type InitiatePaymentRequest struct {
	SubscriptionType string `json:"subscriptionType" binding:"required"`
}

type InitiatePaymentResponse struct {
	PaymentReference string `json:"paymentReference"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Plan             string `json:"plan"`
	PublicKey        string `json:"publicKey,omitempty"`
}

// VerifyPaymentRequest POST /api/v1/payments/verify
type VerifyPaymentRequest struct {
	PaymentReference string `json:"paymentReference" binding:"required"`
}

type ActivationResponse struct {
	PaymentReference    string `json:"paymentReference"`
	SubscriptionType    string `json:"subscriptionType"`
	SubscriptionExpires string `json:"subscriptionExpires"`
	RequestsUsed        int    `json:"requestsUsed"`
}

type PaymentItem struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Plan        string `json:"plan"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt,omitempty"`
}
