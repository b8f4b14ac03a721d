package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthCheck reports whether the service and its database are reachable
func HealthCheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := http.StatusOK
		dbState := "up"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			status = http.StatusServiceUnavailable
			dbState = "down"
		}
		return c.JSON(status, map[string]string{
			"status":   http.StatusText(status),
			"service":  "photoblog-api",
			"database": dbState,
		})
	}
}
