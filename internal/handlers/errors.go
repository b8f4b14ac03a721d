package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as JSON. Validation errors become
// {"field": ["message"]}, everything else {"detail": "message"}; 5xx
// responses are logged and never leak the underlying error.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := errorResponse(err)
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}

func errorResponse(err error) (int, interface{}) {
	if ve, ok := apperrors.IsValidation(err); ok {
		return http.StatusBadRequest, ve.Fields
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, echo.Map{"detail": msg}
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, echo.Map{"detail": "Not found."}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided or are invalid."}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, echo.Map{"detail": "You do not have permission to perform this action."}
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, echo.Map{"detail": "The request conflicts with the current state of the resource."}
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable, echo.Map{"detail": "Service temporarily unavailable, try again later."}
	}
	return http.StatusInternalServerError, echo.Map{"detail": "Internal server error."}
}

// paramID reads a positive integer path parameter. Anything else is a 404,
// the same as an unknown route.
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.ErrNotFound
	}
	return uint(id), nil
}
