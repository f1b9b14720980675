package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"robot-route-service/internal/middleware"
	"robot-route-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// ServiceInterface defines the contract for the auth service.
type ServiceInterface interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetUser(ctx context.Context, userID int) (*models.User, error)
}

// Service issues and describes bearer credentials. Account registration is
// handled by an external collaborator; this service only authenticates
// against existing user rows.
type Service struct {
	repo      RepositoryInterface
	jwtSecret string
}

// NewService creates a new auth service.
func NewService(repo RepositoryInterface, jwtSecret string) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret}
}

// Login verifies credentials and mints a signed token carrying the user's id
// and moderator flag.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, hash, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	now := time.Now()
	claims := middleware.Claims{
		UserID:      user.ID,
		Username:    user.Username,
		IsModerator: user.IsModerator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("service.Login: sign token: %w", err)
	}

	return &models.LoginResponse{Token: signed, User: *user}, nil
}

// GetUser returns the authenticated caller's profile.
func (s *Service) GetUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service.GetUser: %w", err)
	}
	return user, nil
}
