package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/zubari_server/internal/pkg/jwt"
	"github.com/qs3c/zubari_server/internal/pkg/response"
	"github.com/qs3c/zubari_server/internal/pkg/revocation"
	"github.com/qs3c/zubari_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key-for-middleware"

type brokenChecker struct{}

func (brokenChecker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return false, errors.New("redis down")
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func newAuthRouter(checker RevocationChecker) *gin.Engine {
	router := gin.New()
	router.Use(Auth(testJWTSecret, checker))
	router.GET("/test", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		response.Success(c, gin.H{"userId": userID})
	})
	return router
}

func doAuthRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth_Success(t *testing.T) {
	router := gin.New()
	router.Use(Auth(testJWTSecret, nil))
	router.GET("/test", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		assert.True(t, ok)
		assert.Equal(t, int64(123), userID)

		claims, ok := GetClaims(c)
		require.True(t, ok)
		assert.NotEmpty(t, claims.ID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	token, err := jwt.GenerateToken(123, testJWTSecret, 24)
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Rejections(t *testing.T) {
	valid, err := jwt.GenerateToken(123, testJWTSecret, 24)
	require.NoError(t, err)
	wrongSecret, err := jwt.GenerateToken(123, "other-secret", 24)
	require.NoError(t, err)
	expired, err := jwt.GenerateToken(123, testJWTSecret, -1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", valid},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + wrongSecret},
		{"expired", "Bearer " + expired},
	}

	router := newAuthRouter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doAuthRequest(router, tt.header)
			resp := parseResponse(t, w)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, response.CodeAuthFailed, resp.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestAuth_RevokedToken(t *testing.T) {
	rdb, _, cleanup := testutil.SetupTestRedis(t)
	defer cleanup()
	store := revocation.NewStore(rdb)
	router := newAuthRouter(store)

	token, err := jwt.GenerateToken(7, testJWTSecret, 1)
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	claims, err := jwt.ParseToken(token, testJWTSecret)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(context.Background(), claims.ID, time.Hour))

	w = doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)

	// a fresh token for the same user is unaffected
	other, err := jwt.GenerateToken(7, testJWTSecret, 1)
	require.NoError(t, err)
	w = doAuthRequest(router, "Bearer "+other)
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
}

func TestAuth_RevocationLookupFails(t *testing.T) {
	router := newAuthRouter(brokenChecker{})

	token, err := jwt.GenerateToken(7, testJWTSecret, 1)
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, response.CodeServerError, parseResponse(t, w).Code)
}

func TestVerifyToken(t *testing.T) {
	token, err := jwt.GenerateToken(9, testJWTSecret, 1)
	require.NoError(t, err)

	claims, err := VerifyToken(context.Background(), token, testJWTSecret, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)

	_, err = VerifyToken(context.Background(), token, "wrong", nil)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestGetUserID_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	_, ok = GetClaims(c)
	assert.False(t, ok)
}

func TestGetUserID_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(UserIDKey, "123")

	_, ok := GetUserID(c)
	assert.False(t, ok)
}
