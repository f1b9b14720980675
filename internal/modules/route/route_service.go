package route

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"robot-route-service/internal/models"
)

// ServiceInterface defines the contract for the route service.
type ServiceInterface interface {
	CartBadge(ctx context.Context, userID int) (models.CartBadge, error)
	AddCommand(ctx context.Context, userID, commandID int) (*models.AddToRouteResponse, error)
	CurrentDraft(ctx context.Context, userID int) (*models.Route, error)
	CreateDraft(ctx context.Context, userID int) (*models.Route, error)
	GetRoute(ctx context.Context, routeID, userID int, role models.Role) (*models.Route, error)
	ListRoutes(ctx context.Context, filter models.RouteFilter, userID int, role models.Role) ([]models.Route, error)
	UpdateArea(ctx context.Context, routeID, userID int, area string) error
	FormRoute(ctx context.Context, routeID, userID int) (*models.Route, error)
	FinishRoute(ctx context.Context, routeID int, action models.Action, role models.Role, comment string) (*models.Route, error)
	UpdateLineItem(ctx context.Context, lineItemID, userID int, req models.UpdateRouteCommandRequest) error
	DeleteLineItem(ctx context.Context, lineItemID, userID int) error
	SetResult(ctx context.Context, routeID int, result string) error
}

// Service implements the route lifecycle and draft/cart logic.
//
// The cart badge is served from a process-scoped cache keyed by user, with
// explicit invalidation after every mutation of that user's draft. Reads that
// miss the cache fall through to the repository.
type Service struct {
	repo RepositoryInterface

	badgeCache     map[int]models.CartBadge
	badgeCacheLock sync.RWMutex

	now func() time.Time
}

// NewService creates a new route service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{
		repo:       repo,
		badgeCache: make(map[int]models.CartBadge),
		now:        time.Now,
	}
}

// CartBadge returns the caller's draft id and item count. Cheap and
// idempotent; safe to call on every navigation.
func (s *Service) CartBadge(ctx context.Context, userID int) (models.CartBadge, error) {
	s.badgeCacheLock.RLock()
	badge, ok := s.badgeCache[userID]
	s.badgeCacheLock.RUnlock()
	if ok {
		return badge, nil
	}

	badge, err := s.repo.CartBadge(ctx, userID)
	if err != nil {
		return models.CartBadge{}, fmt.Errorf("service.CartBadge: %w", err)
	}

	s.badgeCacheLock.Lock()
	s.badgeCache[userID] = badge
	s.badgeCacheLock.Unlock()
	return badge, nil
}

// invalidateBadge drops the cached badge after a draft mutation.
func (s *Service) invalidateBadge(userID int) {
	s.badgeCacheLock.Lock()
	delete(s.badgeCache, userID)
	s.badgeCacheLock.Unlock()
}

// AddCommand appends a catalog command to the caller's draft, creating the
// draft if none exists. Atomicity lives in the repository transaction; the
// badge cache is only invalidated once the append is confirmed.
func (s *Service) AddCommand(ctx context.Context, userID, commandID int) (*models.AddToRouteResponse, error) {
	resp, err := s.repo.AddCommandToDraft(ctx, userID, commandID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.AddCommand: %w", err)
	}
	s.invalidateBadge(userID)
	return resp, nil
}

// CurrentDraft returns the caller's draft route, or ErrNotFound as the
// no-draft sentinel.
func (s *Service) CurrentDraft(ctx context.Context, userID int) (*models.Route, error) {
	draft, err := s.repo.FindDraftByCreator(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.CurrentDraft: %w", err)
	}
	return draft, nil
}

// CreateDraft explicitly creates an empty draft. If one already exists it is
// returned instead; the one-draft invariant is never violated.
func (s *Service) CreateDraft(ctx context.Context, userID int) (*models.Route, error) {
	if draft, err := s.repo.FindDraftByCreator(ctx, userID); err == nil {
		return draft, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.CreateDraft: %w", err)
	}

	draft, err := s.repo.CreateDraft(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateDraft: %w", err)
	}
	s.invalidateBadge(userID)
	return draft, nil
}

// GetRoute retrieves a route for its owner or any moderator.
func (s *Service) GetRoute(ctx context.Context, routeID, userID int, role models.Role) (*models.Route, error) {
	route, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.GetRoute: %w", err)
	}

	// Return NotFound to non-owners to avoid leaking route existence.
	if route.CreatorID != userID && role != models.RoleModerator {
		return nil, models.ErrNotFound
	}
	return route, nil
}

// ListRoutes returns route summaries. Moderators see every creator's routes
// with all filters; everyone else is scoped to their own routes and the
// creator filter is ignored. Drafts never appear in listings, the caller's
// own included; the draft is reachable through CurrentDraft only.
func (s *Service) ListRoutes(ctx context.Context, filter models.RouteFilter, userID int, role models.Role) ([]models.Route, error) {
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return nil, models.ErrValidation
	}

	scope := userID
	if role == models.RoleModerator {
		scope = 0
	} else {
		filter.Creator = ""
	}

	routes, err := s.repo.List(ctx, filter, scope)
	if err != nil {
		return nil, fmt.Errorf("service.ListRoutes: %w", err)
	}
	return routes, nil
}

// UpdateArea rewrites the environment descriptor of the caller's draft.
func (s *Service) UpdateArea(ctx context.Context, routeID, userID int, area string) error {
	route, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return err
	}
	if route.CreatorID != userID {
		return models.ErrForbidden
	}
	if route.Status != models.StatusDraft {
		return models.ErrStatusConflict
	}
	return s.repo.UpdateArea(ctx, routeID, area)
}

// FormRoute moves the caller's draft to formed, freezing its line items.
// Non-emptiness is re-validated inside the repository UPDATE, not just here,
// so a concurrent delete of the last item cannot slip through.
func (s *Service) FormRoute(ctx context.Context, routeID, userID int) (*models.Route, error) {
	route, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.CreatorID != userID {
		return nil, models.ErrForbidden
	}
	next, err := models.Transition(route.Status, models.ActionForm, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if len(route.RouteCommands) == 0 {
		return nil, models.ErrEmptyRoute
	}

	ts := models.TimestampsFor(next, s.now().UTC())
	if err := s.repo.Form(ctx, routeID, ts); err != nil {
		return nil, err
	}

	// The caller's draft handle is now empty; a new draft appears lazily on
	// the next AddCommand.
	s.invalidateBadge(userID)
	return s.repo.FindByID(ctx, routeID)
}

// FinishRoute applies a terminal transition (complete or reject) as a
// moderator. A second terminal call on the same route fails: terminal states
// are sinks.
func (s *Service) FinishRoute(ctx context.Context, routeID int, action models.Action, role models.Role, comment string) (*models.Route, error) {
	route, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	next, err := models.Transition(route.Status, action, role)
	if err != nil {
		return nil, err
	}

	var commentPtr *string
	if comment != "" {
		commentPtr = &comment
	}
	ts := models.TimestampsFor(next, s.now().UTC())
	if err := s.repo.Finish(ctx, routeID, next, ts, commentPtr); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, routeID)
}

// UpdateLineItem replaces a line item's execution parameters while the
// parent route is a draft.
func (s *Service) UpdateLineItem(ctx context.Context, lineItemID, userID int, req models.UpdateRouteCommandRequest) error {
	_, creatorID, status, err := s.repo.FindRouteCommand(ctx, lineItemID)
	if err != nil {
		return err
	}
	if creatorID != userID {
		return models.ErrForbidden
	}
	if status != models.StatusDraft {
		return models.ErrStatusConflict
	}
	return s.repo.UpdateRouteCommand(ctx, lineItemID, req)
}

// DeleteLineItem removes a line item from the caller's draft.
func (s *Service) DeleteLineItem(ctx context.Context, lineItemID, userID int) error {
	_, creatorID, status, err := s.repo.FindRouteCommand(ctx, lineItemID)
	if err != nil {
		return err
	}
	if creatorID != userID {
		return models.ErrForbidden
	}
	if status != models.StatusDraft {
		return models.ErrStatusConflict
	}
	if err := s.repo.DeleteRouteCommand(ctx, lineItemID); err != nil {
		return err
	}
	s.invalidateBadge(userID)
	return nil
}

// SetResult records the calculation collaborator's result, write-once.
func (s *Service) SetResult(ctx context.Context, routeID int, result string) error {
	if _, err := s.repo.FindByID(ctx, routeID); err != nil {
		return err
	}
	return s.repo.SetResult(ctx, routeID, result)
}
