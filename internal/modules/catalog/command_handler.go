package catalog

import (
	"net/http"
	"strconv"

	"robot-route-service/internal/models"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the command catalog.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new catalog handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the catalog routes on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/commands", h.ListCommands)
	g.GET("/commands/:commandId", h.GetCommand)
}

func (h *Handler) ListCommands(c echo.Context) error {
	filter := models.CommandFilter{
		Name:      c.QueryParam("name"),
		Directive: c.QueryParam("directive"),
	}

	commands, err := h.svc.ListCommands(c.Request().Context(), filter)
	if err != nil {
		c.Logger().Error("Handler.ListCommands: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list commands"})
	}

	return c.JSON(http.StatusOK, commands)
}

func (h *Handler) GetCommand(c echo.Context) error {
	commandID, err := strconv.Atoi(c.Param("commandId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid command id"})
	}

	cmd, err := h.svc.GetCommand(c.Request().Context(), commandID)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Command not found"})
		}
		c.Logger().Error("Handler.GetCommand: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve command"})
	}

	return c.JSON(http.StatusOK, cmd)
}
