package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/zubari_server/internal/api/middleware"
	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/model/dto"
	"github.com/qs3c/zubari_server/internal/pkg/response"
	"github.com/qs3c/zubari_server/internal/service"
)

const (
	defaultPaymentListLimit = 20
	maxPaymentListLimit     = 100
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	publicKey      string
}

func NewPaymentHandler(paymentService *service.PaymentService, publicKey string) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		publicKey:      publicKey,
	}
}

// Initiate records a pending intent and returns what the client needs to
// open the payment provider's checkout.
// POST /api/v1/payments/initiate
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), userID, req.SubscriptionType)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, &dto.InitiatePaymentResponse{
		PaymentReference: intent.Reference,
		Amount:           intent.Amount,
		Currency:         intent.Currency,
		Plan:             string(intent.Plan),
		PublicKey:        h.publicKey,
	})
}

// Verify activates the subscription paid for by the given reference.
// POST /api/v1/payments/verify
func (h *PaymentHandler) Verify(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.paymentService.Activate(c.Request.Context(), userID, req.PaymentReference)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := &dto.ActivationResponse{
		PaymentReference: result.Intent.Reference,
		SubscriptionType: result.User.SubscriptionType,
		RequestsUsed:     result.User.AIRequestsUsed,
	}
	if result.User.SubscriptionExpires != nil {
		resp.SubscriptionExpires = result.User.SubscriptionExpires.UTC().Format(time.RFC3339)
	}
	response.SuccessWithMessage(c, "subscription activated", resp)
}

// List returns the caller's payment intents, newest first.
// GET /api/v1/payments?limit=20
func (h *PaymentHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPaymentListLimit)))
	if limit <= 0 {
		limit = defaultPaymentListLimit
	}
	if limit > maxPaymentListLimit {
		limit = maxPaymentListLimit
	}

	intents, err := h.paymentService.ListIntents(c.Request.Context(), userID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]*dto.PaymentItem, 0, len(intents))
	for _, p := range intents {
		items = append(items, buildPaymentItem(p))
	}
	response.Success(c, items)
}

func buildPaymentItem(p *model.PaymentIntent) *dto.PaymentItem {
	item := &dto.PaymentItem{
		Reference: p.Reference,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Plan:      string(p.Plan),
		Status:    p.Status,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.CompletedAt != nil {
		item.CompletedAt = p.CompletedAt.UTC().Format(time.RFC3339)
	}
	return item
}
