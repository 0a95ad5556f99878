package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/api/middleware"
	"github.com/qs3c/zubari_server/internal/pkg/ai"
	"github.com/qs3c/zubari_server/internal/pkg/response"
	"github.com/qs3c/zubari_server/internal/pkg/revocation"
	"github.com/qs3c/zubari_server/internal/repository"
	"github.com/qs3c/zubari_server/internal/service"
	"github.com/qs3c/zubari_server/internal/testutil"
)

const testJWTSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type testContext struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Revocation *revocation.Store

	Auth    *AuthHandler
	User    *UserHandler
	AI      *AIHandler
	Payment *PaymentHandler
}

func setupHandlers(t *testing.T) *testContext {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rdb, _, cleanupRedis := testutil.SetupTestRedis(t)
	t.Cleanup(func() {
		cleanupRedis()
		testutil.CleanupTestDB(t, db)
	})

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	aiRequestRepo := repository.NewAIRequestRepository(db)
	store := revocation.NewStore(rdb)

	quotaService := service.NewQuotaService(db, userRepo, aiRequestRepo, nil, nil)
	paymentService := service.NewPaymentService(db, userRepo, paymentRepo, nil, nil, nil)
	authService := service.NewAuthService(userRepo, service.NewBcryptHasher(bcrypt.MinCost), store,
		&config.JWTConfig{Secret: testJWTSecret, ExpireHours: 24})

	return &testContext{
		DB:         db,
		Redis:      rdb,
		Revocation: store,
		Auth:       NewAuthHandler(authService),
		User:       NewUserHandler(service.NewUserService(quotaService)),
		AI:         NewAIHandler(service.NewAIService(quotaService, ai.NewMockGenerator(), true, nil)),
		Payment:    NewPaymentHandler(paymentService, "pk_test_123"),
	}
}

func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	return performRequestWithToken(r, method, path, body, "")
}

func performRequestWithToken(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object: %#v", resp.Data)
	return data
}
