package calculation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"robot-route-service/internal/models"

	"github.com/google/uuid"
)

// RouteServiceInterface is the slice of the route service this module needs.
type RouteServiceInterface interface {
	GetRoute(ctx context.Context, routeID, userID int, role models.Role) (*models.Route, error)
	SetResult(ctx context.Context, routeID int, result string) error
}

// ServiceInterface defines the contract for the calculation service.
type ServiceInterface interface {
	StartCalculation(ctx context.Context, routeID, userID int, role models.Role) (*models.CalculateResponse, error)
	ApplyResult(ctx context.Context, routeID int, result string) error
}

// service triggers the out-of-process calculation collaborator and records
// its callback. The trigger is fire-and-forget: the result arrives later via
// ApplyResult, typically 5-10 seconds after the trigger, and becomes visible
// only on a subsequent route fetch.
type service struct {
	routes     RouteServiceInterface
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewService creates a new calculation service.
func NewService(routes RouteServiceInterface, endpoint, apiKey string) ServiceInterface {
	return &service{
		routes:     routes,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// StartCalculation asks the collaborator to compute the route's result.
// Legal only after the route is formed and while result is unset; a trigger
// failure is reported to the caller and never retried automatically, since a
// blind retry could start the computation twice.
func (s *service) StartCalculation(ctx context.Context, routeID, userID int, role models.Role) (*models.CalculateResponse, error) {
	route, err := s.routes.GetRoute(ctx, routeID, userID, role)
	if err != nil {
		return nil, err
	}
	if route.Status == models.StatusDraft {
		return nil, models.ErrStatusConflict
	}
	if route.Result != nil {
		return nil, models.ErrResultAlreadySet
	}

	jobID := uuid.NewString()
	payload, err := json.Marshal(map[string]any{
		"route_id": route.ID,
		"job_id":   jobID,
	})
	if err != nil {
		return nil, fmt.Errorf("calculation.StartCalculation: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("calculation.StartCalculation: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Calculation-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calculation.StartCalculation: trigger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calculation.StartCalculation: collaborator returned %d", resp.StatusCode)
	}

	return &models.CalculateResponse{Accepted: true, JobID: jobID}, nil
}

// ApplyResult records the collaborator's callback. Results are write-once;
// a repeated callback fails with ErrResultAlreadySet and the stored value is
// never overwritten.
func (s *service) ApplyResult(ctx context.Context, routeID int, result string) error {
	return s.routes.SetResult(ctx, routeID, result)
}
