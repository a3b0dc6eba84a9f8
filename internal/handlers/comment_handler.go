package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/internal/services"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	engagement        *services.EngagementService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{commentRepository: commentRepo, engagement: engagement}
}

// RegisterCommentRoutes registers comment mutation routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
}

// RegisterPublicCommentRoutes registers comment read routes
func (h *CommentHandler) RegisterPublicCommentRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/comments", h.GetComments)
}

// CreateComment creates a comment on a post, notifying the post author
// and any mentioned users
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.engagement.Comment(c.Request().Context(), userID, postID, req.Content)
	if err != nil {
		return engagementError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetComments returns paginated comments for a post
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID := c.Param("post_id")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	comments, total, err := h.commentRepository.GetCommentsByPostID(postID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": comments},
		"meta": echo.Map{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalItems":  total,
		},
	})
}
