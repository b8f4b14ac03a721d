package handlers

import (
	"net/http"

	"github.com/anonto42/photogram/backend/internal/middleware"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes. All of them need a user.
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost, middleware.RequireAuth)
	g.DELETE("/posts/:id/like", h.UnlikePost, middleware.RequireAuth)
	g.POST("/posts/:id/like/toggle", h.ToggleLike, middleware.RequireAuth)
	g.DELETE("/likes/:id", h.DeleteLike, middleware.RequireAuth)
}

// LikePost likes a post. 201 when the like is new, 200 when it existed.
func (h *LikeHandler) LikePost(c echo.Context) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	like, created, err := h.likes.Like(c.Request().Context(), middleware.CurrentUser(c), postID)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, like.ToResponse())
}

// UnlikePost removes the requester's like of a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.likes.Unlike(c.Request().Context(), middleware.CurrentUser(c), postID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleLike flips the requester's like of a post. 201 with the like when
// liked, 204 when unliked.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, like, err := h.likes.Toggle(c.Request().Context(), middleware.CurrentUser(c), postID)
	if err != nil {
		return err
	}
	if result == models.Unliked {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, like.ToResponse())
}

// DeleteLike deletes a like by id
func (h *LikeHandler) DeleteLike(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.likes.DeleteLike(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
