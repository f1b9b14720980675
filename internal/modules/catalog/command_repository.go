package catalog

import (
	"context"
	"errors"
	"fmt"

	"robot-route-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the command catalog repository.
type RepositoryInterface interface {
	List(ctx context.Context, filter models.CommandFilter) ([]models.Command, error)
	FindByID(ctx context.Context, commandID int) (*models.Command, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new catalog repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// List retrieves active commands matching the filter, ordered by id.
// Both patterns are case-insensitive substring matches, AND-combined.
func (r *Repository) List(ctx context.Context, filter models.CommandFilter) ([]models.Command, error) {
	query := `
		SELECT id, name, description, directive, status, image_url
		FROM commands
		WHERE status = 'active'
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR directive ILIKE '%' || $2 || '%')
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, filter.Name, filter.Directive)
	if err != nil {
		return nil, fmt.Errorf("repository.List.Query: %w", err)
	}
	defer rows.Close()

	commands := []models.Command{}
	for rows.Next() {
		var cmd models.Command
		if err := rows.Scan(&cmd.ID, &cmd.Name, &cmd.Description, &cmd.Directive, &cmd.Status, &cmd.ImageURL); err != nil {
			return nil, fmt.Errorf("repository.List.Scan: %w", err)
		}
		commands = append(commands, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.List.Rows: %w", err)
	}

	return commands, nil
}

// FindByID retrieves a single command by its id.
func (r *Repository) FindByID(ctx context.Context, commandID int) (*models.Command, error) {
	query := `
		SELECT id, name, description, directive, status, image_url
		FROM commands
		WHERE id = $1`

	var cmd models.Command
	err := r.db.QueryRow(ctx, query, commandID).Scan(
		&cmd.ID, &cmd.Name, &cmd.Description, &cmd.Directive, &cmd.Status, &cmd.ImageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return &cmd, nil
}
