// Package metrics declares the prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoblog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPDuration records request latency by method and route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photoblog_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LikeToggles counts like toggles by result (liked, unliked).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoblog_like_toggles_total",
		Help: "Total number of like toggles by result",
	}, []string{"result"})

	// CommentsSaved counts comment writes by operation (create, update).
	CommentsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoblog_comments_saved_total",
		Help: "Total number of saved comments by operation",
	}, []string{"op"})

	HashTagsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoblog_hashtags_created_total",
		Help: "Total number of hashtags created",
	})
)

// Middleware records HTTPRequests and HTTPDuration for every request
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)
			HTTPRequests.WithLabelValues(method, route, status).Inc()
			HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
