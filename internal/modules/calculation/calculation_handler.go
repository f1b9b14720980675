package calculation

import (
	"errors"
	"net/http"
	"strconv"

	"robot-route-service/internal/middleware"
	"robot-route-service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles the calculation trigger and the collaborator's result
// callback.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new calculation handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the authenticated trigger on g and the shared-key
// callback on callbacks.
func (h *Handler) RegisterRoutes(g *echo.Group, callbacks *echo.Group) {
	g.POST("/routes/:routeId/calculate", h.Calculate)
	callbacks.PUT("/routes/:routeId/result", h.ApplyResult)
}

func (h *Handler) Calculate(c echo.Context) error {
	userID := c.Get("userID").(int)
	role := middleware.CallerRole(c)

	routeID, err := strconv.Atoi(c.Param("routeId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid route id"})
	}

	resp, err := h.svc.StartCalculation(c.Request().Context(), routeID, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Route not found"})
		case errors.Is(err, models.ErrResultAlreadySet):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Route result already set"})
		case errors.Is(err, models.ErrStatusConflict):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Route must be formed before calculation"})
		}
		// Trigger failures are reported, distinctly from "still computing",
		// and are not retried here.
		c.Logger().Error("Handler.Calculate: ", err)
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: "Calculation service unavailable"})
	}
	return c.JSON(http.StatusAccepted, resp)
}

func (h *Handler) ApplyResult(c echo.Context) error {
	routeID, err := strconv.Atoi(c.Param("routeId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid route id"})
	}

	var req models.RouteResultRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.ApplyResult(c.Request().Context(), routeID, req.Result); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Route not found"})
		case errors.Is(err, models.ErrResultAlreadySet):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Route result already set"})
		}
		c.Logger().Error("Handler.ApplyResult: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to store result"})
	}
	return c.NoContent(http.StatusNoContent)
}
