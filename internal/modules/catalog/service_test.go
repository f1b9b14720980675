package catalog

import (
	"context"
	"errors"
	"testing"

	"robot-route-service/internal/models"
)

type fakeRepo struct {
	commands   []models.Command
	lastFilter models.CommandFilter
}

func (f *fakeRepo) List(ctx context.Context, filter models.CommandFilter) ([]models.Command, error) {
	f.lastFilter = filter
	return f.commands, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, commandID int) (*models.Command, error) {
	for _, c := range f.commands {
		if c.ID == commandID {
			cp := c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func TestListCommandsTrimsFilter(t *testing.T) {
	repo := &fakeRepo{commands: []models.Command{{ID: 1, Name: "rotate"}}}
	svc := NewService(repo)

	got, err := svc.ListCommands(context.Background(), models.CommandFilter{Name: "  rot ", Directive: "\tMOVE\n"})
	if err != nil {
		t.Fatalf("ListCommands error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d commands; want 1", len(got))
	}
	if repo.lastFilter.Name != "rot" || repo.lastFilter.Directive != "MOVE" {
		t.Errorf("filter passed to repo = %+v; want trimmed values", repo.lastFilter)
	}
}

func TestGetCommandNotFound(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.GetCommand(context.Background(), 42)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetCommand(42) error = %v; want ErrNotFound", err)
	}
}
