package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/pkg/jwt"
	"github.com/roadrunner/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the user persistence used by AuthService
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// AuthService handles registration, login and token refresh
type AuthService struct {
	users      UserStore
	tokens     *jwt.Service
	bcryptCost int
	phones     *validator.PhoneValidator
	logger     *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, tokens *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		phones:     validator.NewPhoneValidator(),
		logger:     logger,
	}
}

// Register creates a passenger account and signs it in
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	var errs ValidationErrors
	name, err := validator.ValidateName(req.FullName)
	if err != nil {
		errs.add("full_name", "%s", err.Error())
	}
	var phone models.NullString
	if strings.TrimSpace(req.Phone) != "" {
		normalized, err := s.phones.Validate(req.Phone)
		if err != nil {
			errs.add("phone", "%s", err.Error())
		} else {
			phone = models.NullString{NullString: sql.NullString{String: normalized, Valid: true}}
		}
	}
	if len(req.Password) < 8 {
		errs.add("password", "must be at least 8 characters")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:     name,
		Email:        req.Email,
		Phone:        phone,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return s.issueTokens(user)
}

// Login verifies credentials and issues tokens
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("user_id", user.ID).Info("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}
	if user.Status != "active" {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).Warn("failed to record last login")
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Status != "active" {
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &models.AuthResponse{
		AccessToken: access,
		ExpiresIn:   int64(s.tokens.AccessTokenExpiry().Seconds()),
	}, nil
}

// Profile returns the user's account
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*models.AuthResponse, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTokenExpiry().Seconds()),
		User:         user,
	}, nil
}
