package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/zubari_server/internal/pkg/jwt"
	"github.com/qs3c/zubari_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
	ClaimsKey = "claims"
)

var ErrTokenRevoked = errors.New("token has been revoked")

// RevocationChecker reports whether a token id was revoked at logout.
// *revocation.Store implements it.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// VerifyToken parses tokenString and rejects revoked tokens. A nil checker
// skips the revocation lookup.
func VerifyToken(ctx context.Context, tokenString, secret string, checker RevocationChecker) (*jwt.Claims, error) {
	claims, err := jwt.ParseToken(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if checker == nil || claims.ID == "" {
		return claims, nil
	}
	revoked, err := checker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Auth requires a valid bearer token and stores the user id and claims in the
// gin context.
func Auth(jwtSecret string, checker RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "authentication required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := VerifyToken(c.Request.Context(), tokenString, jwtSecret, checker)
		switch {
		case err == nil:
		case errors.Is(err, jwt.ErrExpiredToken):
			response.AuthError(c, "token expired")
			c.Abort()
			return
		case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, ErrTokenRevoked):
			response.AuthError(c, "invalid token")
			c.Abort()
			return
		default:
			response.ServerError(c, "")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetClaims returns the claims of the token that authenticated the request.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}
