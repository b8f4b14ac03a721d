package pages

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/hashtag"
	"github.com/anonto42/photogram/backend/internal/middleware"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const loginPath = "/members/login/"

// Services bundles what the pages need
type Services struct {
	Auth     *services.AuthService
	Posts    *services.PostService
	Comments *services.CommentService
	Likes    *services.LikeService
}

// Handler serves the HTML pages
type Handler struct {
	svc          Services
	secureCookie bool
}

// NewHandler creates a new Handler. secureCookie marks the session cookie
// Secure, for deployments behind TLS.
func NewHandler(svc Services, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

type page struct {
	User          *models.User
	CSRF          string
	Tag           string
	Posts         []models.PostView
	CommentErrors map[uint][]string
	Errors        map[string][]string
	Comment       string
	Username      string
	Next          string
}

// Register mounts the pages on e. Every page runs behind CSRF protection;
// forms carry the token in the csrf_token field.
func (h *Handler) Register(e *echo.Echo) {
	csrf := echomw.CSRFWithConfig(echomw.CSRFConfig{
		TokenLookup:    "form:csrf_token",
		CookieName:     "csrftoken",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   h.secureCookie,
		CookieSameSite: http.SameSiteLaxMode,
	})

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/posts/")
	})
	e.GET("/posts/", h.PostList, csrf)
	e.GET("/explore/tags/:name/", h.TagPostList, csrf)
	e.GET("/posts/tag-search/", h.TagSearch)
	e.GET("/posts/create/", h.PostCreateForm, csrf, loginRequired)
	e.POST("/posts/create/", h.PostCreate, csrf, loginRequired)
	e.POST("/posts/:id/comments/create/", h.CommentCreate, csrf, loginRequired)
	e.POST("/posts/:id/like-toggle/", h.LikeToggle, csrf, loginRequired)
	e.GET(loginPath, h.LoginForm, csrf)
	e.POST(loginPath, h.Login, csrf)
	e.POST("/members/logout/", h.Logout, csrf)
}

func (h *Handler) newPage(c echo.Context) *page {
	token, _ := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string)
	return &page{User: middleware.CurrentUser(c), CSRF: token}
}

// PostList renders every post, newest first
func (h *Handler) PostList(c echo.Context) error {
	return h.renderList(c, http.StatusOK, "", nil)
}

// TagPostList renders the posts having a comment tagged with :name
func (h *Handler) TagPostList(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return echo.ErrNotFound
	}
	return h.renderList(c, http.StatusOK, name, nil)
}

func (h *Handler) renderList(c echo.Context, status int, tag string, commentErrors map[uint][]string) error {
	p := h.newPage(c)
	views, err := h.svc.Posts.ListPosts(c.Request().Context(), p.User, services.ListFilter{Tag: tag})
	if err != nil {
		return err
	}
	p.Tag = tag
	p.Posts = views
	p.CommentErrors = commentErrors
	return c.Render(status, "post_list.html", p)
}

// TagSearch sends the search box to the tag page of its keyword
func (h *Handler) TagSearch(c echo.Context) error {
	keyword := strings.TrimPrefix(strings.TrimSpace(c.QueryParam("keyword")), "#")
	if keyword == "" {
		return c.Redirect(http.StatusFound, "/posts/")
	}
	return c.Redirect(http.StatusFound, hashtag.TagPath(keyword))
}

// PostCreateForm renders the empty upload form
func (h *Handler) PostCreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "post_create.html", h.newPage(c))
}

// PostCreate publishes the uploaded photo and returns to the list
func (h *Handler) PostCreate(c echo.Context) error {
	p := h.newPage(c)
	p.Comment = c.FormValue("comment")

	var photo *services.Upload
	if header, err := c.FormFile("photo"); err == nil {
		f, err := header.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		photo = &services.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get(echo.HeaderContentType),
			Size:        header.Size,
			Body:        f,
		}
	}

	_, err := h.svc.Posts.CreatePost(c.Request().Context(), p.User, services.CreatePostInput{Photo: photo, Comment: p.Comment})
	if ve, ok := apperrors.IsValidation(err); ok {
		p.Errors = ve.Fields
		return c.Render(http.StatusBadRequest, "post_create.html", p)
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/posts/")
}

// CommentCreate adds a comment and returns to the list
func (h *Handler) CommentCreate(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		return echo.ErrNotFound
	}
	_, err = h.svc.Comments.Create(c.Request().Context(), middleware.CurrentUser(c), uint(postID), c.FormValue("content"))
	if ve, ok := apperrors.IsValidation(err); ok {
		return h.renderList(c, http.StatusBadRequest, "", map[uint][]string{uint(postID): ve.Fields["content"]})
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/posts/#post-"+c.Param("id"))
}

// LikeToggle flips the requester's like and returns to the post
func (h *Handler) LikeToggle(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		return echo.ErrNotFound
	}
	if _, _, err := h.svc.Likes.Toggle(c.Request().Context(), middleware.CurrentUser(c), uint(postID)); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/posts/#post-"+c.Param("id"))
}

// LoginForm renders the login form
func (h *Handler) LoginForm(c echo.Context) error {
	p := h.newPage(c)
	p.Next = c.QueryParam("next")
	return c.Render(http.StatusOK, "login.html", p)
}

// Login checks the credentials, stores the session cookie and redirects
func (h *Handler) Login(c echo.Context) error {
	p := h.newPage(c)
	p.Username = c.FormValue("username")
	p.Next = c.FormValue("next")

	resp, err := h.svc.Auth.Login(c.Request().Context(), p.Username, c.FormValue("password"))
	if ve, ok := apperrors.IsValidation(err); ok {
		p.Errors = ve.Fields
		return c.Render(http.StatusBadRequest, "login.html", p)
	}
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.svc.Auth.TokenTTL()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, safeNext(p.Next))
}

// Logout clears the session cookie
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, loginPath)
}

// loginRequired redirects anonymous requesters to the login page
func loginRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if middleware.CurrentUser(c) == nil {
			return c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request().URL.Path))
		}
		return next(c)
	}
}

// safeNext keeps redirects on this site
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/posts/"
	}
	return next
}
