package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/model/dto"
	"github.com/qs3c/zubari_server/internal/pkg/jwt"
	"github.com/qs3c/zubari_server/internal/repository"
)

// TokenRevoker invalidates issued tokens. *revocation.Store implements it.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthService struct {
	userRepo *repository.UserRepository
	hasher   PasswordHasher
	revoker  TokenRevoker
	cfg      *config.JWTConfig
}

func NewAuthService(
	userRepo *repository.UserRepository,
	hasher PasswordHasher,
	revoker TokenRevoker,
	cfg *config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		revoker:  revoker,
		cfg:      cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a free user with no usage and returns a session token.
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrEmptyInput
	}

	users := s.userRepo.WithContext(ctx)

	exists, err := users.ExistsByEmail(email)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:            email,
		PasswordHash:     hash,
		SubscriptionType: model.SubscriptionFree,
	}
	if err := users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, storageErr(err, nil)
	}

	return s.issue(user)
}

// Login checks credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.WithContext(ctx).GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr(err, nil)
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout revokes the token described by claims for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil {
		return ErrAuthRequired
	}
	if s.revoker == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.Remaining(time.Now()))
}

func (s *AuthService) issue(user *model.User) (*dto.AuthResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.Secret, s.cfg.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: token,
		User:  BuildUserInfo(user),
	}, nil
}

// BuildUserInfo returns the public view of user.
func BuildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:               user.ID,
		Email:            user.Email,
		SubscriptionType: user.SubscriptionType,
		CreatedAt:        user.CreatedAt.Format(time.RFC3339),
	}
}
