package catalog

import (
	"context"
	"fmt"
	"strings"

	"robot-route-service/internal/models"
)

// ServiceInterface defines the contract for the catalog service.
type ServiceInterface interface {
	ListCommands(ctx context.Context, filter models.CommandFilter) ([]models.Command, error)
	GetCommand(ctx context.Context, commandID int) (*models.Command, error)
}

// Service implements the catalog read logic. The catalog is read-only here;
// commands are maintained by an external administrative process.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new catalog service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// ListCommands returns active commands matching the filter. Surrounding
// whitespace in patterns is ignored; a blank filter returns everything.
func (s *Service) ListCommands(ctx context.Context, filter models.CommandFilter) ([]models.Command, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter.Directive = strings.TrimSpace(filter.Directive)

	commands, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ListCommands: %w", err)
	}
	return commands, nil
}

// GetCommand returns a single catalog entry.
func (s *Service) GetCommand(ctx context.Context, commandID int) (*models.Command, error) {
	cmd, err := s.repo.FindByID(ctx, commandID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("service.GetCommand: %w", err)
	}
	return cmd, nil
}
