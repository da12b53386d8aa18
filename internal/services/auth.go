package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"
	"github.com/MungomeniTM/VSX-changeZA-web/pkg/utils"

	"gorm.io/gorm"
)

// dummyHash is compared against when the email is unknown, so a failed login
// costs the same bcrypt work either way.
var dummyHash = sync.OnceValue(func() string {
	h, _ := utils.HashPassword("not-a-real-password")
	return h
})

type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
	logger logging.Logger
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"user"`
}

func NewAuthService(db *gorm.DB, tokens *TokenService, logger logging.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// splitName puts the first word in the first name and the rest in the last name.
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	first, last := splitName(in.Name)
	user := models.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Discoverable: true,
	}
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	if !models.ValidRole(user.Role) {
		return nil, common.ErrInvalidRole
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		if count > 0 {
			return common.ErrDuplicateEmail
		}
		if err := tx.Create(&user).Error; err != nil {
			// lost a race with a concurrent registration
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.ErrDuplicateEmail
			}
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(&user)
}

// Login reports ErrInvalidCredentials for an unknown email and a wrong password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CheckPasswordHash(password, dummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(&user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.VerifyToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, common.ErrTokenInvalid
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserGone
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	pair, err := s.tokens.GenerateTokens(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &AuthResult{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toProfile(user),
	}, nil
}
