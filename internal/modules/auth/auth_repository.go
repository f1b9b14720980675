package auth

import (
	"context"
	"errors"
	"fmt"

	"robot-route-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the auth repository.
type RepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*models.User, string, error)
	FindByID(ctx context.Context, userID int) (*models.User, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new auth repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// FindByUsername retrieves a user and their password hash.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, string, error) {
	query := `SELECT id, username, is_moderator, password_hash FROM users WHERE username = $1`

	var user models.User
	var hash string
	err := r.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.IsModerator, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", models.ErrNotFound
		}
		return nil, "", fmt.Errorf("repository.FindByUsername: %w", err)
	}
	return &user, hash, nil
}

// FindByID retrieves a user by id.
func (r *Repository) FindByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT id, username, is_moderator FROM users WHERE id = $1`

	var user models.User
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.IsModerator)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return &user, nil
}
