package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/api/handler"
	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/pkg/ai"
	"github.com/qs3c/zubari_server/internal/pkg/response"
	"github.com/qs3c/zubari_server/internal/pkg/revocation"
	"github.com/qs3c/zubari_server/internal/pkg/ws"
	"github.com/qs3c/zubari_server/internal/repository"
	"github.com/qs3c/zubari_server/internal/service"
	"github.com/qs3c/zubari_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupEngine(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rdb, _, cleanupRedis := testutil.SetupTestRedis(t)
	t.Cleanup(func() {
		cleanupRedis()
		testutil.CleanupTestDB(t, db)
	})

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "test"},
		JWT:     config.JWTConfig{Secret: "router-secret", ExpireHours: 1},
		Payment: config.PaymentConfig{PublicKey: "pk_test"},
	}

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	aiRequestRepo := repository.NewAIRequestRepository(db)
	store := revocation.NewStore(rdb)

	quotaService := service.NewQuotaService(db, userRepo, aiRequestRepo, nil, nil)
	paymentService := service.NewPaymentService(db, userRepo, paymentRepo, nil, nil, nil)
	authService := service.NewAuthService(userRepo, service.NewBcryptHasher(bcrypt.MinCost), store, &cfg.JWT)

	handlers := Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(service.NewUserService(quotaService)),
		AI:        handler.NewAIHandler(service.NewAIService(quotaService, ai.NewMockGenerator(), true, nil)),
		Payment:   handler.NewPaymentHandler(paymentService, cfg.Payment.PublicKey),
		WebSocket: handler.NewWebSocketHandler(ws.NewHub(nil), cfg.JWT.Secret, store, nil, nil),
		Health:    handler.NewHealthHandler(db, rdb),
	}
	return NewRouter(handlers, store, cfg, nil).Setup()
}

func call(t *testing.T, engine http.Handler, method, path, token string, body interface{}) response.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func data(resp response.Response) map[string]interface{} {
	m, _ := resp.Data.(map[string]interface{})
	return m
}

// A new user spends the free tier, is told to upgrade, pays, and then has
// unlimited access.
func TestRouter_FreeTierToPremium(t *testing.T) {
	engine := setupEngine(t)

	resp := call(t, engine, "POST", "/api/v1/auth/signup", "", gin.H{"email": "flow@example.com", "password": "password123"})
	require.Equal(t, response.CodeSuccess, resp.Code)
	token := data(resp)["token"].(string)

	for i := 0; i < model.FreeTierRequestLimit; i++ {
		resp = call(t, engine, "POST", "/api/v1/ai/summarize", token, gin.H{"text": "some notes"})
		require.Equal(t, response.CodeSuccess, resp.Code, "call %d", i+1)
	}

	resp = call(t, engine, "POST", "/api/v1/ai/summarize", token, gin.H{"text": "some notes"})
	assert.Equal(t, response.CodeQuotaExceeded, resp.Code)
	assert.Equal(t, true, data(resp)["requiresUpgrade"])

	resp = call(t, engine, "GET", "/api/v1/user/status", token, nil)
	assert.Equal(t, float64(0), data(resp)["requestsRemaining"])

	resp = call(t, engine, "POST", "/api/v1/payments/initiate", token, gin.H{"subscriptionType": "monthly"})
	require.Equal(t, response.CodeSuccess, resp.Code)
	reference := data(resp)["paymentReference"].(string)
	assert.Equal(t, "pk_test", data(resp)["publicKey"])

	resp = call(t, engine, "POST", "/api/v1/payments/verify", token, gin.H{"paymentReference": reference})
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, "premium", data(resp)["subscriptionType"])

	resp = call(t, engine, "POST", "/api/v1/ai/generate-questions", token, gin.H{"paragraph": "cells"})
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, "unlimited", data(resp)["quota"].(map[string]interface{})["remaining"])

	resp = call(t, engine, "GET", "/api/v1/payments", token, nil)
	items := resp.Data.([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "completed", items[0].(map[string]interface{})["status"])
}

func TestRouter_RequiresAuth(t *testing.T) {
	engine := setupEngine(t)

	for _, route := range [][2]string{
		{"POST", "/api/v1/auth/logout"},
		{"GET", "/api/v1/user/status"},
		{"POST", "/api/v1/ai/generate-questions"},
		{"POST", "/api/v1/ai/summarize"},
		{"POST", "/api/v1/ai/answer-question"},
		{"POST", "/api/v1/ai/generate-study-plan"},
		{"POST", "/api/v1/payments/initiate"},
		{"POST", "/api/v1/payments/verify"},
		{"GET", "/api/v1/payments"},
	} {
		resp := call(t, engine, route[0], route[1], "", nil)
		assert.Equal(t, response.CodeAuthFailed, resp.Code, route[1])
	}
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	engine := setupEngine(t)

	resp := call(t, engine, "POST", "/api/v1/auth/signup", "", gin.H{"email": "bye@example.com", "password": "password123"})
	token := data(resp)["token"].(string)

	require.Equal(t, response.CodeSuccess, call(t, engine, "POST", "/api/v1/auth/logout", token, nil).Code)
	assert.Equal(t, response.CodeAuthFailed, call(t, engine, "GET", "/api/v1/user/status", token, nil).Code)

	resp = call(t, engine, "POST", "/api/v1/auth/login", "", gin.H{"email": "bye@example.com", "password": "password123"})
	fresh := data(resp)["token"].(string)
	assert.Equal(t, response.CodeSuccess, call(t, engine, "GET", "/api/v1/user/status", fresh, nil).Code)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	engine := setupEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `route="/healthz"`)
}
