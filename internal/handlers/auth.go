package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/middleware"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles account and token requests
type AuthHandler struct {
	auth  *services.AuthService
	users repositories.UserRepository
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService, users repositories.UserRepository) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// RegisterAuthRoutes registers the account routes under /members
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/auth-token", h.AuthToken)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.GET("/profile", h.Profile, middleware.RequireAuth)
	g.GET("/:id", h.GetUser)
}

// Signup creates a local account and returns a token for it
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "A user with that username already exists.")
		}
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// AuthToken exchanges a username and password for a token
func (h *AuthHandler) AuthToken(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// FirebaseLogin exchanges a firebase ID token for a token of this service
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.auth.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user
func (h *AuthHandler) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// GetUser returns a user by id
func (h *AuthHandler) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
