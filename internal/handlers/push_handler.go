package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
)

// PushHandler manages browser push subscription registrations
type PushHandler struct {
	subscriptionRepository repositories.PushSubscriptionRepository
	vapidPublicKey         string
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(subRepo repositories.PushSubscriptionRepository, vapidPublicKey string) *PushHandler {
	return &PushHandler{subscriptionRepository: subRepo, vapidPublicKey: vapidPublicKey}
}

// RegisterPushRoutes registers subscription management routes
func (h *PushHandler) RegisterPushRoutes(g *echo.Group) {
	g.POST("/push/subscriptions", h.Subscribe)
	g.DELETE("/push/subscriptions", h.Unsubscribe)
}

// RegisterPublicPushRoutes registers routes anonymous clients may call
func (h *PushHandler) RegisterPublicPushRoutes(g *echo.Group) {
	g.GET("/push/vapid-key", h.GetVAPIDKey)
}

// Subscribe registers a browser push subscription for the current
// user. An endpoint already registered to another user is reassigned.
func (h *PushHandler) Subscribe(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.SubscribePushRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	}
	if err := h.subscriptionRepository.Upsert(sub); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

// Unsubscribe removes the current user's subscription for an endpoint
func (h *PushHandler) Unsubscribe(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req struct {
		Endpoint string `json:"endpoint" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.subscriptionRepository.DeleteByEndpoint(userID, req.Endpoint); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// GetVAPIDKey returns the public key clients need to subscribe
func (h *PushHandler) GetVAPIDKey(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"public_key": h.vapidPublicKey})
}
