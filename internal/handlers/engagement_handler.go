package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/internal/services"
)

// EngagementHandler handles like/repost/share/play HTTP requests
type EngagementHandler struct {
	engagement *services.EngagementService
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagement *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

// RegisterEngagementRoutes registers engagement routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.POST("/posts/:post_id/reposts", h.RepostPost)
	g.DELETE("/posts/:post_id/reposts", h.UnrepostPost)
	g.POST("/posts/:post_id/shares", h.SharePost)
	g.POST("/posts/:post_id/plays", h.RecordPlay)
}

// LikePost handles liking a post
func (h *EngagementHandler) LikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if err := h.engagement.Like(c.Request().Context(), userID, postID); err != nil {
		return engagementError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"liked": true}})
}

// UnlikePost handles unliking a post
func (h *EngagementHandler) UnlikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if err := h.engagement.Unlike(c.Request().Context(), userID, postID); err != nil {
		return engagementError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": false}})
}

// RepostPost handles reposting a post
func (h *EngagementHandler) RepostPost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if err := h.engagement.Repost(c.Request().Context(), userID, postID); err != nil {
		return engagementError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"reposted": true}})
}

// UnrepostPost handles removing a repost
func (h *EngagementHandler) UnrepostPost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if err := h.engagement.Unrepost(c.Request().Context(), userID, postID); err != nil {
		return engagementError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reposted": false}})
}

// SharePost mints a share link for a post
func (h *EngagementHandler) SharePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	share, err := h.engagement.Share(c.Request().Context(), userID, postID)
	if err != nil {
		return engagementError(err)
	}
	return c.JSON(http.StatusCreated, share)
}

// RecordPlay bumps the play counter on a post
func (h *EngagementHandler) RecordPlay(c echo.Context) error {
	postID := c.Param("post_id")

	if err := h.engagement.RecordPlay(c.Request().Context(), postID); err != nil {
		return engagementError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// engagementError maps service errors to HTTP responses
func engagementError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrAlreadyLiked),
		errors.Is(err, services.ErrAlreadyReposted),
		errors.Is(err, services.ErrAlreadyFollowing):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotLiked),
		errors.Is(err, services.ErrNotReposted),
		errors.Is(err, services.ErrNotFollowing):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
