package handlers

import (
	"net/http"
	"net/url"

	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// TagHandler handles hashtag search and browsing
type TagHandler struct {
	tags  *services.TagService
	posts *PostHandler
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tags *services.TagService, posts *PostHandler) *TagHandler {
	return &TagHandler{tags: tags, posts: posts}
}

// RegisterTagRoutes registers hashtag routes
func (h *TagHandler) RegisterTagRoutes(g *echo.Group) {
	g.GET("/tags/search", h.Search)
	g.GET("/tags/:name/posts", h.PostsByTag)
}

// Search lists hashtags starting with ?keyword=, ignoring case
func (h *TagHandler) Search(c echo.Context) error {
	tags, err := h.tags.Search(c.Request().Context(), c.QueryParam("keyword"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// PostsByTag lists the posts having a comment tagged with :name
func (h *TagHandler) PostsByTag(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return echo.ErrNotFound
	}
	return h.posts.list(c, services.ListFilter{Tag: name})
}
