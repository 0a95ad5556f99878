package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/zubari_server/internal/api/middleware"
	"github.com/qs3c/zubari_server/internal/model/dto"
	"github.com/qs3c/zubari_server/internal/pkg/response"
	"github.com/qs3c/zubari_server/internal/testutil"
)

func newAuthRouter(ctx *testContext) *gin.Engine {
	router := gin.New()
	router.POST("/signup", ctx.Auth.Signup)
	router.POST("/login", ctx.Auth.Login)
	router.POST("/logout", middleware.Auth(testJWTSecret, ctx.Revocation), ctx.Auth.Logout)
	router.GET("/me", middleware.Auth(testJWTSecret, ctx.Revocation), ctx.User.Status)
	return router
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	ctx := setupHandlers(t)
	router := newAuthRouter(ctx)

	w := performRequest(router, "POST", "/signup", dto.SignupRequest{
		Email:    "New.User@Example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data := dataMap(t, resp)
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "new.user@example.com", user["email"])
	assert.Equal(t, "free", user["subscriptionType"])
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	ctx := setupHandlers(t)
	router := newAuthRouter(ctx)
	testutil.TestUser(t, ctx.DB, testutil.WithEmail("taken@example.com"))

	w := performRequest(router, "POST", "/signup", dto.SignupRequest{
		Email:    "taken@example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
}

func TestAuthHandler_Signup_InvalidRequest(t *testing.T) {
	ctx := setupHandlers(t)
	router := newAuthRouter(ctx)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing password", map[string]string{"email": "a@example.com"}},
		{"bad email", map[string]string{"email": "not-an-email", "password": "password123"}},
		{"short password", map[string]string{"email": "a@example.com", "password": "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/signup", tt.body)
			assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ctx := setupHandlers(t)
	router := newAuthRouter(ctx)
	testutil.TestUser(t, ctx.DB, testutil.WithEmail("login@example.com"))

	w := performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: testutil.TestPassword,
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.NotEmpty(t, dataMap(t, resp)["token"])

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: testutil.TestPassword,
	})
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestAuthHandler_Logout_RevokesToken(t *testing.T) {
	ctx := setupHandlers(t)
	router := newAuthRouter(ctx)
	testutil.TestUser(t, ctx.DB, testutil.WithEmail("logout@example.com"))

	w := performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "logout@example.com",
		Password: testutil.TestPassword,
	})
	token := dataMap(t, parseResponse(t, w))["token"].(string)

	w = performRequestWithToken(router, "GET", "/me", nil, token)
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequestWithToken(router, "POST", "/logout", nil, token)
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequestWithToken(router, "GET", "/me", nil, token)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestAuthHandler_Logout_WithoutClaims(t *testing.T) {
	ctx := setupHandlers(t)

	router := gin.New()
	router.POST("/logout", ctx.Auth.Logout)

	w := performRequest(router, "POST", "/logout", nil)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}
