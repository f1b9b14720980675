package client

import "time"

// Route statuses as the API reports them.
const (
	StatusDraft      = "draft"
	StatusFormed     = "formed"
	StatusApproved   = "approved"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// User is the authenticated account behind the installed token.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	IsModerator bool   `json:"is_moderator"`
}

// Command is one catalog entry.
type Command struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Directive   string  `json:"directive"`
	Status      string  `json:"status"`
	ImageURL    *string `json:"image_url"`
}

// CommandFilter narrows a catalog listing; both patterns are optional
// substring matches.
type CommandFilter struct {
	Name      string
	Directive string
}

// Route is the full aggregate as the API serves it.
type Route struct {
	ID            int            `json:"id"`
	Status        string         `json:"status"`
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

// RouteCommand is one line item of a route.
type RouteCommand struct {
	ID          int     `json:"id"`
	RouteID     int     `json:"route_id"`
	CommandID   int     `json:"command"`
	CommandName string  `json:"command_name"`
	Speed       float64 `json:"speed"`
	Value       float64 `json:"value"`
	Quantity    int     `json:"quantity"`
}

// CartBadge is the lightweight draft summary. RouteID is nil when the user
// has no draft.
type CartBadge struct {
	RouteID    *int `json:"route_id"`
	ItemsCount int  `json:"items_count"`
}

// RouteFilter narrows a route listing.
type RouteFilter struct {
	Status     string
	FormedFrom *time.Time
	FormedTo   *time.Time
	Creator    string
}

// AddToRouteResponse is returned by AddToRoute.
type AddToRouteResponse struct {
	RouteID     int    `json:"route_id"`
	CommandName string `json:"command_name"`
}

// LineItemParams replaces a line item's execution parameters.
type LineItemParams struct {
	Speed    float64 `json:"speed"`
	Value    float64 `json:"value"`
	Quantity int     `json:"quantity"`
}

// CalculateResponse acknowledges a calculation trigger.
type CalculateResponse struct {
	Accepted bool   `json:"accepted"`
	JobID    string `json:"job_id,omitempty"`
}

// Request and error payloads below never leave the package.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type areaRequest struct {
	Area string `json:"area"`
}

type moderateRequest struct {
	Comment string `json:"comment"`
}

type errorBody struct {
	Message string `json:"message"`
}
