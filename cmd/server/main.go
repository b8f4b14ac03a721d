package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/photogram/backend/internal/bootstrap"
	"github.com/anonto42/photogram/backend/internal/router"
	"github.com/anonto42/photogram/backend/internal/seed"
	"github.com/anonto42/photogram/backend/pkg/config"
	"github.com/anonto42/photogram/backend/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg *config.Config
	log *zap.Logger

	seedOpts = seed.DefaultOptions
)

var rootCmd = &cobra.Command{
	Use:   "photoblog",
	Short: "Photo blog API and pages",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if log, err = logger.New(cfg.Env, cfg.LogLevel); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg, log)
		if err != nil {
			return err
		}
		defer db.CloseDB()
		if err := config.Migrate(db.Postgres); err != nil {
			return err
		}
		log.Info("migration complete")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo users, posts, comments and likes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := config.InitDB(cfg, log)
		if err != nil {
			return err
		}
		defer db.CloseDB()
		if err := config.Migrate(db.Postgres); err != nil {
			return err
		}

		rt, err := bootstrap.Build(ctx, cfg, db.Postgres, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		f := seed.NewFactory(rt.Auth, rt.Posts, rt.Comments, rt.Likes, seedOpts.Seed, log)
		_, err = f.Run(ctx, seedOpts)
		return err
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.Users, "users", seedOpts.Users, "number of users to create")
	seedCmd.Flags().IntVar(&seedOpts.PostsPerUser, "posts", seedOpts.PostsPerUser, "posts per user")
	seedCmd.Flags().IntVar(&seedOpts.CommentsPerPost, "comments", seedOpts.CommentsPerPost, "comments per post")
	seedCmd.Flags().Float64Var(&seedOpts.LikeChance, "like-chance", seedOpts.LikeChance, "probability that a user likes a post")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 0, "random seed, 0 picks one")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func serve(ctx context.Context) error {
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	if err := config.Migrate(db.Postgres); err != nil {
		return err
	}

	rt, err := bootstrap.Build(ctx, cfg, db.Postgres, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	deps := router.Deps{
		DB:             db.Postgres,
		Log:            log,
		Auth:           rt.Auth,
		Posts:          rt.Posts,
		Comments:       rt.Comments,
		Likes:          rt.Likes,
		Tags:           rt.Tags,
		Users:          rt.Users,
		AllowedOrigins: cfg.Origins(),
		SecureCookies:  cfg.IsProduction(),
		BodyLimit:      fmt.Sprintf("%dM", cfg.MaxUploadMB+1),
	}
	if cfg.StorageDriver == "local" {
		deps.MediaRoot = cfg.MediaRoot
		deps.MediaURL = cfg.MediaURL
	}

	e, err := router.New(deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
