package models

import "time"

// Default execution parameters for a freshly appended line item.
const (
	DefaultSpeed    = 0.5
	DefaultValue    = 1.0
	DefaultQuantity = 1
)

// Route is the aggregate root: one user's ordered set of robot commands
// moving through the lifecycle graph. Routes are never physically deleted;
// cancellation is a status.
type Route struct {
	ID            int            `json:"id"`
	Status        Status         `json:"status"`
	CreatorID     int            `json:"creator"`
	CreatorName   string         `json:"creator_name"`
	CreatedAt     time.Time      `json:"created_at"`
	FormedAt      *time.Time     `json:"formed_at"`
	EndedAt       *time.Time     `json:"ended_at"`
	Area          *string        `json:"area"`
	Result        *string        `json:"result"`
	Comment       *string        `json:"comment"`
	RouteCommands []RouteCommand `json:"route_commands"`
}

// RouteCommand is one line item of a route: a catalog command plus its
// execution parameters. Mutable only while the parent route is a draft.
type RouteCommand struct {
	ID          int     `json:"id"`
	RouteID     int     `json:"route_id"`
	CommandID   int     `json:"command"`
	CommandName string  `json:"command_name"`
	Speed       float64 `json:"speed"`
	Value       float64 `json:"value"`
	Quantity    int     `json:"quantity"`
}

// CartBadge is the lightweight draft summary used for UI indicators without
// loading the full route. RouteID is nil when the user has no draft.
type CartBadge struct {
	RouteID    *int `json:"route_id"`
	ItemsCount int  `json:"items_count"`
}

// RouteFilter narrows a route listing. Creator is only honored for
// moderators; non-moderator listings are scoped to the caller.
type RouteFilter struct {
	Status     Status
	FormedFrom *time.Time
	FormedTo   *time.Time
	Creator    string
}

// AddToRouteResponse is returned by the add-to-route endpoint.
type AddToRouteResponse struct {
	RouteID     int    `json:"route_id"`
	CommandName string `json:"command_name"`
}

// UpdateRouteRequest updates draft-only route fields.
type UpdateRouteRequest struct {
	Area string `json:"area" validate:"required,max=500"`
}

// UpdateRouteCommandRequest replaces a line item's execution parameters.
// Bounds mirror what the robot controller accepts.
type UpdateRouteCommandRequest struct {
	Speed    float64 `json:"speed" validate:"gte=0,lte=1"`
	Value    float64 `json:"value" validate:"gte=0,lte=100"`
	Quantity int     `json:"quantity" validate:"gte=1,lte=100"`
}

// ModerateRouteRequest carries the optional annotation a moderator attaches
// on a terminal transition.
type ModerateRouteRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

// RouteResultRequest is the calculation collaborator's callback payload.
type RouteResultRequest struct {
	Result string `json:"result" validate:"required"`
}

// CalculateResponse acknowledges a fire-and-forget calculation trigger.
type CalculateResponse struct {
	Accepted bool   `json:"accepted"`
	JobID    string `json:"job_id,omitempty"`
}
