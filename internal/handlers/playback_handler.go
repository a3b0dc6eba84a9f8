package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/internal/services"
	"github.com/profitboysub0-max/social-music-app/pkg/logger"
)

// PlaybackHandler persists player state and feeds the presence store
type PlaybackHandler struct {
	playbackRepository repositories.PlaybackRepository
	presence           *services.PresenceService
}

// NewPlaybackHandler creates a new PlaybackHandler
func NewPlaybackHandler(playbackRepo repositories.PlaybackRepository, presence *services.PresenceService) *PlaybackHandler {
	return &PlaybackHandler{playbackRepository: playbackRepo, presence: presence}
}

// RegisterPlaybackRoutes registers playback-state routes
func (h *PlaybackHandler) RegisterPlaybackRoutes(g *echo.Group) {
	g.PUT("/playback", h.SavePlayback)
	g.GET("/playback", h.GetPlayback)
}

// SavePlayback stores the current player state so the UI can resume,
// and reports it to the presence store as a playback signal.
func (h *PlaybackHandler) SavePlayback(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.SavePlaybackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	state := &models.PlaybackState{
		UserID:       userID,
		TrackURL:     req.TrackURL,
		TrackTitle:   req.TrackTitle,
		ThumbnailURL: req.ThumbnailURL,
		Elapsed:      req.Elapsed,
		Duration:     req.Duration,
		IsPlaying:    req.IsPlaying,
		UpdatedAt:    time.Now(),
	}
	if err := h.playbackRepository.Save(state); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.presence.ReportPlayback(userID, req.TrackURL, req.TrackTitle, req.IsPlaying); err != nil {
		// Presence is advisory; a failed report must not fail the save.
		logger.Error(err, zap.Uint("user_id", userID))
	}

	return c.JSON(http.StatusOK, state)
}

// GetPlayback returns the user's last saved player state
func (h *PlaybackHandler) GetPlayback(c echo.Context) error {
	userID := getUserIDFromContext(c)

	state, err := h.playbackRepository.GetByUserID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if state == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, state)
}
