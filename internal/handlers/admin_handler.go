package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/internal/services"
)

// AdminHandler exposes operations restricted to seed accounts
type AdminHandler struct {
	userRepository repositories.UserRepository
	engine         *services.NotificationService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(userRepo repositories.UserRepository, engine *services.NotificationService) *AdminHandler {
	return &AdminHandler{userRepository: userRepo, engine: engine}
}

// RegisterAdminRoutes registers admin routes
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/admin/broadcast", h.Broadcast)
}

// Broadcast sends a system_update notification to every user.
// Identical messages collapse onto one row per recipient.
func (h *AdminHandler) Broadcast(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !user.IsSeed {
		return echo.NewHTTPError(http.StatusForbidden, "Seed account required")
	}

	var req struct {
		Message string `json:"message" validate:"required,min=1,max=500"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.engine.Broadcast(req.Message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
