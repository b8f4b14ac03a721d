package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const (
	// UserKey is the echo context key holding the authenticated *models.User
	UserKey = "user"
	// CookieName is the cookie carrying the session token of the HTML pages
	CookieName = "auth_token"
)

// Authenticator resolves a token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticate resolves the requester from an "Authorization: Bearer"
// header or the session cookie. A bad bearer token is rejected with 401;
// a bad cookie leaves the request anonymous.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
				parts := strings.SplitN(header, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
				}
				user, err := auth.Authenticate(ctx, strings.TrimSpace(parts[1]))
				if err != nil {
					if errors.Is(err, apperrors.ErrUnauthorized) {
						return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
					}
					return err
				}
				c.Set(UserKey, user)
				return next(c)
			}

			if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
				if user, err := auth.Authenticate(ctx, cookie.Value); err == nil {
					c.Set(UserKey, user)
				}
			}
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user, nil when anonymous
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(UserKey).(*models.User)
	return user
}
