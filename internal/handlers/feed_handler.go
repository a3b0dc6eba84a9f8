package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/profitboysub0-max/social-music-app/internal/services"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed routes. Anonymous viewers get the
// public scope; the personal scope requires authentication.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns enriched feed posts for the requested scope
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)

	scope := c.QueryParam("scope")
	if scope == "" {
		scope = services.FeedScopePublic
	}
	if scope == services.FeedScopePersonal && viewerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Personal feed requires authentication")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	posts, err := h.feed.GetFeed(c.Request().Context(), viewerID, scope, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
	})
}
