// Package bootstrap wires configuration into the running collaborators.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/anonto42/photogram/backend/pkg/cache"
	"github.com/anonto42/photogram/backend/pkg/config"
	"github.com/anonto42/photogram/backend/pkg/firebase"
	"github.com/anonto42/photogram/backend/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Runtime holds every service built from a Config
type Runtime struct {
	Users    repositories.UserRepository
	Auth     *services.AuthService
	Posts    *services.PostService
	Comments *services.CommentService
	Likes    *services.LikeService
	Tags     *services.TagService
	Store    storage.Storage

	closers []func()
}

// Close releases the connections opened by Build
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Build creates storage, cache, repositories and services over db.
// Redis and firebase are optional: when they are not configured or not
// reachable the tag cache is disabled and firebase login answers 503.
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*Runtime, error) {
	rt := &Runtime{}

	store, err := NewStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	rt.Store = store

	var tagCache cache.TagCache = cache.NoopTagCache{}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, continuing without tag cache", zap.Error(err))
		} else {
			tagCache = cache.NewRedisTagCache(client, cfg.TagCacheTTL(), log)
			rt.closers = append(rt.closers, func() { _ = client.Close() })
			log.Info("redis connected")
		}
	}

	var verifier services.TokenVerifier
	fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
	switch {
	case err == nil:
		verifier = fb.AuthClient
	case errors.Is(err, firebase.ErrNoCredentials):
		log.Info("firebase login disabled")
	default:
		log.Warn("firebase unavailable, firebase login disabled", zap.Error(err))
	}

	rt.Users = repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	tagRepo := repositories.NewPostgresHashTagRepository(db)

	rt.Tags = services.NewTagService(tagRepo, tagCache, 0)
	rt.Auth = services.NewAuthService(rt.Users, verifier, services.AuthConfig{
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        cfg.JWTTTL(),
		FirebaseTimeout: cfg.FirebaseTimeout(),
	}, log)
	rt.Posts = services.NewPostService(postRepo, likeRepo, store, rt.Tags, cfg.MaxUploadBytes(), log)
	rt.Comments = services.NewCommentService(commentRepo, postRepo, rt.Tags)
	rt.Likes = services.NewLikeService(likeRepo, postRepo)
	return rt, nil
}

// NewStorage opens the storage driver named by STORAGE_DRIVER
func NewStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.AWSEndpoint,
			Bucket:          cfg.S3BucketName,
			UseSSL:          cfg.S3UseSSL,
		}, log)
	case "local":
		return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
