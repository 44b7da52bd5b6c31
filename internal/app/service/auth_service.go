package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"deals_api/internal/common"
	"deals_api/internal/common/security"
	"deals_api/internal/domain/model"
	"deals_api/internal/domain/repository"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type AuthService struct {
	userRepo repository.UserRepository
	denylist security.Denylist
}

func NewAuthService(userRepo repository.UserRepository, denylist security.Denylist) *AuthService {
	return &AuthService{userRepo: userRepo, denylist: denylist}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ValidateRegistration checks the request shape without touching storage.
func ValidateRegistration(req RegisterRequest) error {
	if !isEmailAddress(req.Username) {
		return common.NewError(common.ErrValidation, "Username must be a valid email address")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return common.NewError(common.ErrValidation, "Password must be at least 8 characters long")
	}
	if len(req.Password) > maxPasswordBytes {
		return common.NewError(common.ErrValidation, "Password must be at most 72 bytes long")
	}
	return nil
}

func isEmailAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewError(common.ErrConflict, "Username already registered")
		}
		return nil, err
	}
	return &RegisterResponse{Username: user.Username}, nil
}

// Login exchanges credentials for a bearer token. Unknown users and wrong passwords
// produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	invalid := common.NewError(common.ErrUnauthorized, "Invalid credentials")
	if username == "" || password == "" {
		return nil, invalid
	}

	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, invalid
	}

	token, _, err := security.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims security.Claims) error {
	if err := s.denylist.Revoke(ctx, claims.TokenID, time.Until(claims.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
