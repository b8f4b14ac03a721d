package handlers

import (
	"net/http"

	"github.com/anonto42/photogram/backend/internal/middleware"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.ListComments)
	g.POST("/posts/:id/comments", h.CreateComment, middleware.RequireAuth)
	g.PUT("/comments/:id", h.UpdateComment, middleware.RequireAuth)
	g.DELETE("/comments/:id", h.DeleteComment, middleware.RequireAuth)
}

// ListComments lists the comments of a post
func (h *CommentHandler) ListComments(c echo.Context) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.comments.ListByPost(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	resp := make([]models.CommentResponse, 0, len(comments))
	for _, cm := range comments {
		resp = append(resp, cm.ToResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.comments.Create(c.Request().Context(), middleware.CurrentUser(c), postID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment.ToResponse())
}

// UpdateComment replaces the content of a comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.comments.Update(c.Request().Context(), middleware.CurrentUser(c), id, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment.ToResponse())
}

// DeleteComment deletes a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
