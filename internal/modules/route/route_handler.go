package route

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"robot-route-service/internal/middleware"
	"robot-route-service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for routes, line items and the cart badge.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate // For request body validation
}

// NewHandler creates a new route handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts route endpoints on the authenticated group.
// moderatorOnly guards the terminal transitions.
func (h *Handler) RegisterRoutes(g *echo.Group, moderatorOnly echo.MiddlewareFunc) {
	g.GET("/routes/cart-badge", h.CartBadge)
	g.GET("/routes/current-draft", h.CurrentDraft)
	g.POST("/routes", h.CreateDraft)
	g.GET("/routes", h.ListRoutes)
	g.GET("/routes/:routeId", h.GetRoute)
	g.PUT("/routes/:routeId", h.UpdateRoute)
	g.PUT("/routes/:routeId/form", h.FormRoute)
	g.PUT("/routes/:routeId/complete", h.CompleteRoute, moderatorOnly)
	g.PUT("/routes/:routeId/reject", h.RejectRoute, moderatorOnly)

	g.POST("/commands/:commandId/add-to-route", h.AddToRoute)
	g.PUT("/route-commands/:lineItemId", h.UpdateLineItem)
	g.DELETE("/route-commands/:lineItemId", h.DeleteLineItem)
}

func (h *Handler) CartBadge(c echo.Context) error {
	userID := c.Get("userID").(int)

	badge, err := h.svc.CartBadge(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.CartBadge: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to load cart badge"})
	}
	return c.JSON(http.StatusOK, badge)
}

func (h *Handler) AddToRoute(c echo.Context) error {
	userID := c.Get("userID").(int)

	commandID, err := strconv.Atoi(c.Param("commandId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid command id"})
	}

	resp, err := h.svc.AddCommand(c.Request().Context(), userID, commandID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Command not found"})
		}
		c.Logger().Error("Handler.AddToRoute: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to add command to route"})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CurrentDraft(c echo.Context) error {
	userID := c.Get("userID").(int)

	draft, err := h.svc.CurrentDraft(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No draft route"})
		}
		c.Logger().Error("Handler.CurrentDraft: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to load draft"})
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *Handler) CreateDraft(c echo.Context) error {
	userID := c.Get("userID").(int)

	draft, err := h.svc.CreateDraft(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.CreateDraft: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create draft"})
	}
	return c.JSON(http.StatusCreated, draft)
}

func (h *Handler) ListRoutes(c echo.Context) error {
	userID := c.Get("userID").(int)
	role := middleware.CallerRole(c)

	filter := models.RouteFilter{
		Status:  models.Status(c.QueryParam("status")),
		Creator: c.QueryParam("creator"),
	}
	if from := c.QueryParam("formed_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid formed_from timestamp"})
		}
		filter.FormedFrom = &t
	}
	if to := c.QueryParam("formed_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid formed_to timestamp"})
		}
		filter.FormedTo = &t
	}

	routes, err := h.svc.ListRoutes(c.Request().Context(), filter, userID, role)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Unknown status filter"})
		}
		c.Logger().Error("Handler.ListRoutes: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list routes"})
	}
	return c.JSON(http.StatusOK, routes)
}

func (h *Handler) GetRoute(c echo.Context) error {
	userID := c.Get("userID").(int)
	role := middleware.CallerRole(c)

	routeID, err := strconv.Atoi(c.Param("routeId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid route id"})
	}

	route, err := h.svc.GetRoute(c.Request().Context(), routeID, userID, role)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Route not found"})
		}
		c.Logger().Error("Handler.GetRoute: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve route"})
	}
	return c.JSON(http.StatusOK, route)
}

func (h *Handler) UpdateRoute(c echo.Context) error {
	userID := c.Get("userID").(int)

	routeID, err := strconv.Atoi(c.Param("routeId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid route id"})
	}

	var req models.UpdateRouteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.UpdateArea(c.Request().Context(), routeID, userID, req.Area); err != nil {
		return h.routeError(c, err, "Handler.UpdateRoute", "Failed to update route")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) FormRoute(c echo.Context) error {
	userID := c.Get("userID").(int)

	routeID, err := strconv.Atoi(c.Param("routeId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid route id"})
	}

	route, err := h.svc.FormRoute(c.Request().Context(), routeID, userID)
	if err != nil {
		return h.routeError(c, err, "Handler.FormRoute", "Failed to form route")
	}
	return c.JSON(http.StatusOK, route)
}

func (h *Handler) CompleteRoute(c echo.Context) error {
	return h.finishRoute(c, models.ActionComplete)
}

func (h *Handler) RejectRoute(c echo.Context) error {
	return h.finishRoute(c, models.ActionReject)
}

func (h *Handler) finishRoute(c echo.Context, action models.Action) error {
	role := middleware.CallerRole(c)

	routeID, err := strconv.Atoi(c.Param("routeId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid route id"})
	}

	// Comment is optional; an empty body is fine.
	var req models.ModerateRouteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	route, err := h.svc.FinishRoute(c.Request().Context(), routeID, action, role, req.Comment)
	if err != nil {
		return h.routeError(c, err, "Handler.finishRoute", "Failed to finish route")
	}
	return c.JSON(http.StatusOK, route)
}

func (h *Handler) UpdateLineItem(c echo.Context) error {
	userID := c.Get("userID").(int)

	lineItemID, err := strconv.Atoi(c.Param("lineItemId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid line item id"})
	}

	var req models.UpdateRouteCommandRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.UpdateLineItem(c.Request().Context(), lineItemID, userID, req); err != nil {
		return h.routeError(c, err, "Handler.UpdateLineItem", "Failed to update line item")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteLineItem(c echo.Context) error {
	userID := c.Get("userID").(int)

	lineItemID, err := strconv.Atoi(c.Param("lineItemId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid line item id"})
	}

	if err := h.svc.DeleteLineItem(c.Request().Context(), lineItemID, userID); err != nil {
		return h.routeError(c, err, "Handler.DeleteLineItem", "Failed to delete line item")
	}
	return c.NoContent(http.StatusNoContent)
}

// routeError maps service errors to HTTP statuses shared by the mutating
// route endpoints.
func (h *Handler) routeError(c echo.Context, err error, op, fallback string) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Route not found"})
	case errors.Is(err, models.ErrForbidden):
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
	case errors.Is(err, models.ErrEmptyRoute):
		return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Route has no commands"})
	case errors.Is(err, models.ErrStatusConflict):
		return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Operation not allowed in current route status"})
	}
	c.Logger().Error(op+": ", err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: fallback})
}
