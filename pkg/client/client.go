// Package client is the Go consumer of the route service API: a typed HTTP
// client plus the client-side synchronization pieces — the cart badge store
// and the moderation list watcher. It speaks only the wire format and carries
// its own types, so it builds outside this module.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrorKind classifies API failures so callers can branch without parsing
// messages.
type ErrorKind string

const (
	KindUnauthenticated    ErrorKind = "unauthenticated"     // redirect to login, do not retry
	KindUnauthorized       ErrorKind = "unauthorized"        // valid credential, insufficient privilege
	KindPreconditionFailed ErrorKind = "precondition_failed" // illegal state transition
	KindNotFound           ErrorKind = "not_found"
	KindValidation         ErrorKind = "validation"
	KindTransport          ErrorKind = "transport" // network or server failure; caller may offer a manual retry
)

// APIError is the typed failure every client call returns for a non-success
// response. Mutating calls are never retried automatically on any kind.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the error kind, defaulting to transport for anything that
// is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// ErrNoDraft is the no-draft sentinel returned by CurrentDraft.
var ErrNoDraft = errors.New("no draft route")

// Client is a typed wrapper over the route service HTTP API. The zero value
// is not usable; construct with New.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken installs the bearer credential used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do performs one request and decodes a successful response into out.
// Mutating endpoints require a token; calling them without one fails fast
// with KindUnauthenticated before any network traffic.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, needsAuth bool) error {
	if needsAuth && c.token == "" {
		return &APIError{Kind: KindUnauthenticated, Message: "no credential configured"}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFrom(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindTransport, Message: "decode response: " + err.Error()}
	}
	return nil
}

// apiErrorFrom maps a non-success response to a typed failure. The server
// always sends a structured error body; an empty or default result is never
// fabricated.
func apiErrorFrom(resp *http.Response) *APIError {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	kind := KindTransport
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		kind = KindUnauthenticated
	case http.StatusForbidden:
		kind = KindUnauthorized
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusConflict:
		kind = KindPreconditionFailed
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = KindValidation
	}
	return &APIError{Kind: kind, Status: resp.StatusCode, Message: body.Message}
}

// Login exchanges credentials for a bearer token and installs it.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		loginRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

// ListCommands fetches catalog entries matching the filter.
func (c *Client) ListCommands(ctx context.Context, filter CommandFilter) ([]Command, error) {
	q := url.Values{}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if filter.Directive != "" {
		q.Set("directive", filter.Directive)
	}
	var commands []Command
	if err := c.do(ctx, http.MethodGet, "/api/commands", q, nil, &commands, false); err != nil {
		return nil, err
	}
	return commands, nil
}

// GetCommand fetches one catalog entry.
func (c *Client) GetCommand(ctx context.Context, commandID int) (*Command, error) {
	var cmd Command
	if err := c.do(ctx, http.MethodGet, "/api/commands/"+strconv.Itoa(commandID), nil, nil, &cmd, false); err != nil {
		return nil, err
	}
	return &cmd, nil
}

// CartBadge fetches the lightweight draft summary.
func (c *Client) CartBadge(ctx context.Context) (CartBadge, error) {
	var badge CartBadge
	if err := c.do(ctx, http.MethodGet, "/api/routes/cart-badge", nil, nil, &badge, true); err != nil {
		return CartBadge{}, err
	}
	return badge, nil
}

// AddToRoute appends a command to the caller's draft, creating the draft
// lazily server-side.
func (c *Client) AddToRoute(ctx context.Context, commandID int) (*AddToRouteResponse, error) {
	var resp AddToRouteResponse
	err := c.do(ctx, http.MethodPost, "/api/commands/"+strconv.Itoa(commandID)+"/add-to-route", nil, nil, &resp, true)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentDraft fetches the caller's draft route, or ErrNoDraft.
func (c *Client) CurrentDraft(ctx context.Context) (*Route, error) {
	var route Route
	err := c.do(ctx, http.MethodGet, "/api/routes/current-draft", nil, nil, &route, true)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, ErrNoDraft
		}
		return nil, err
	}
	return &route, nil
}

// GetRoute fetches a full route aggregate.
func (c *Client) GetRoute(ctx context.Context, routeID int) (*Route, error) {
	var route Route
	if err := c.do(ctx, http.MethodGet, "/api/routes/"+strconv.Itoa(routeID), nil, nil, &route, true); err != nil {
		return nil, err
	}
	return &route, nil
}

// ListRoutes fetches route summaries with the given filter.
func (c *Client) ListRoutes(ctx context.Context, filter RouteFilter) ([]Route, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.FormedFrom != nil {
		q.Set("formed_from", filter.FormedFrom.Format(time.RFC3339))
	}
	if filter.FormedTo != nil {
		q.Set("formed_to", filter.FormedTo.Format(time.RFC3339))
	}
	if filter.Creator != "" {
		q.Set("creator", filter.Creator)
	}
	var routes []Route
	if err := c.do(ctx, http.MethodGet, "/api/routes", q, nil, &routes, true); err != nil {
		return nil, err
	}
	return routes, nil
}

// UpdateArea rewrites the draft's environment descriptor.
func (c *Client) UpdateArea(ctx context.Context, routeID int, area string) error {
	return c.do(ctx, http.MethodPut, "/api/routes/"+strconv.Itoa(routeID), nil,
		areaRequest{Area: area}, nil, true)
}

// FormRoute submits the draft for moderation.
func (c *Client) FormRoute(ctx context.Context, routeID int) (*Route, error) {
	var route Route
	err := c.do(ctx, http.MethodPut, "/api/routes/"+strconv.Itoa(routeID)+"/form", nil, nil, &route, true)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// CompleteRoute applies the completing terminal transition (moderator only).
func (c *Client) CompleteRoute(ctx context.Context, routeID int, comment string) (*Route, error) {
	return c.finishRoute(ctx, routeID, "complete", comment)
}

// RejectRoute applies the cancelling terminal transition (moderator only).
func (c *Client) RejectRoute(ctx context.Context, routeID int, comment string) (*Route, error) {
	return c.finishRoute(ctx, routeID, "reject", comment)
}

func (c *Client) finishRoute(ctx context.Context, routeID int, action, comment string) (*Route, error) {
	var route Route
	err := c.do(ctx, http.MethodPut, "/api/routes/"+strconv.Itoa(routeID)+"/"+action, nil,
		moderateRequest{Comment: comment}, &route, true)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// UpdateLineItem replaces a line item's execution parameters.
func (c *Client) UpdateLineItem(ctx context.Context, lineItemID int, params LineItemParams) error {
	return c.do(ctx, http.MethodPut, "/api/route-commands/"+strconv.Itoa(lineItemID), nil, params, nil, true)
}

// DeleteLineItem removes a line item from the draft.
func (c *Client) DeleteLineItem(ctx context.Context, lineItemID int) error {
	return c.do(ctx, http.MethodDelete, "/api/route-commands/"+strconv.Itoa(lineItemID), nil, nil, nil, true)
}

// Calculate triggers the external result calculation, fire-and-forget. The
// result is not returned here; it shows up on a later route fetch.
func (c *Client) Calculate(ctx context.Context, routeID int) (*CalculateResponse, error) {
	var resp CalculateResponse
	err := c.do(ctx, http.MethodPost, "/api/routes/"+strconv.Itoa(routeID)+"/calculate", nil, nil, &resp, true)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
