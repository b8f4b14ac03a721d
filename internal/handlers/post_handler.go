package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/middleware"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.ListPosts)
	g.POST("/posts", h.CreatePost, middleware.RequireAuth)
	g.GET("/posts/:id", h.GetPost)
	g.PATCH("/posts/:id", h.UpdatePost, middleware.RequireAuth)
	g.DELETE("/posts/:id", h.DeletePost, middleware.RequireAuth)
}

// ListPosts lists posts newest first, optionally filtered by ?tag=
func (h *PostHandler) ListPosts(c echo.Context) error {
	var f services.ListFilter
	err := echo.QueryParamsBinder(c).
		String("tag", &f.Tag).
		Int("limit", &f.Limit).
		Int("offset", &f.Offset).
		BindError()
	if err != nil || f.Limit < 0 || f.Offset < 0 {
		return apperrors.NewValidationError("non_field_errors", "limit and offset must be non-negative integers.")
	}
	return h.list(c, f)
}

func (h *PostHandler) list(c echo.Context, f services.ListFilter) error {
	views, err := h.posts.ListPosts(c.Request().Context(), middleware.CurrentUser(c), f)
	if err != nil {
		return err
	}
	resp := make([]models.PostResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, v.ToResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// CreatePost publishes a photo from a multipart form with fields photo and comment
func (h *PostHandler) CreatePost(c echo.Context) error {
	photo, closeFn, err := formUpload(c, "photo")
	if err != nil {
		return err
	}
	defer closeFn()

	view, err := h.posts.CreatePost(c.Request().Context(), middleware.CurrentUser(c), services.CreatePostInput{
		Photo:   photo,
		Comment: c.FormValue("comment"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view.ToResponse())
}

// GetPost returns a single post
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.posts.GetPost(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.ToResponse())
}

// UpdatePost replaces the photo of a post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	photo, closeFn, err := formUpload(c, "photo")
	if err != nil {
		return err
	}
	defer closeFn()

	view, err := h.posts.UpdatePhoto(c.Request().Context(), middleware.CurrentUser(c), id, photo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.ToResponse())
}

// DeletePost deletes a post with its comments and likes
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// formUpload opens the multipart file field. A missing field yields a nil
// upload so the service reports it as a field error.
func formUpload(c echo.Context, field string) (*services.Upload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, apperrors.NewValidationError(field, "The submitted data was not a file.")
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*services.Upload, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, apperrors.NewValidationError("photo", "The submitted file could not be read.")
	}
	return &services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}
