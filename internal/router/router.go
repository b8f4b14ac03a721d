package router

import (
	"strings"

	"github.com/anonto42/photogram/backend/internal/handlers"
	"github.com/anonto42/photogram/backend/internal/metrics"
	"github.com/anonto42/photogram/backend/internal/middleware"
	"github.com/anonto42/photogram/backend/internal/pages"
	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/anonto42/photogram/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from
type Deps struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Auth     *services.AuthService
	Posts    *services.PostService
	Comments *services.CommentService
	Likes    *services.LikeService
	Tags     *services.TagService
	Users    repositories.UserRepository

	// MediaRoot and MediaURL serve locally stored uploads; empty MediaRoot
	// disables the static route.
	MediaRoot string
	MediaURL  string

	AllowedOrigins []string
	SecureCookies  bool
	BodyLimit      string
}

// New builds the echo instance with every middleware and route
func New(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(d.Log)

	renderer, err := pages.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	SetupMiddleware(e, d)
	SetupRoutes(e, d)
	return e, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, d Deps) {
	e.Use(eMiddleware.RequestID())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			d.Log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: d.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if d.BodyLimit != "" {
		e.Use(eMiddleware.BodyLimit(d.BodyLimit))
	}
	e.Use(middleware.Authenticate(d.Auth))
}

// SetupRoutes configures all application routes
func SetupRoutes(e *echo.Echo, d Deps) {
	e.GET("/health", handlers.HealthCheck(d.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if d.MediaRoot != "" {
		e.Static(strings.TrimSuffix(d.MediaURL, "/"), d.MediaRoot)
	}

	api := e.Group("/api")

	authHandler := handlers.NewAuthHandler(d.Auth, d.Users)
	authHandler.RegisterAuthRoutes(api.Group("/members"))

	postHandler := handlers.NewPostHandler(d.Posts)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(d.Comments)
	commentHandler.RegisterCommentRoutes(api)

	likeHandler := handlers.NewLikeHandler(d.Likes)
	likeHandler.RegisterLikeRoutes(api)

	tagHandler := handlers.NewTagHandler(d.Tags, postHandler)
	tagHandler.RegisterTagRoutes(api)

	pages.NewHandler(pages.Services{
		Auth:     d.Auth,
		Posts:    d.Posts,
		Comments: d.Comments,
		Likes:    d.Likes,
	}, d.SecureCookies).Register(e)
}
