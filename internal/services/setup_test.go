package services

import (
	"strings"
	"testing"

	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/anonto42/photogram/backend/pkg/cache"
	"github.com/anonto42/photogram/backend/pkg/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	store    *storage.LocalStorage
	tags     *TagService
	posts    *PostService
	likes    *LikeService
	comments *CommentService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func setupEnv(t *testing.T, tagCache cache.TagCache) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)

	postRepo := repositories.NewPostgresPostRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	tags := NewTagService(repositories.NewPostgresHashTagRepository(db), tagCache, 0)
	return &testEnv{
		db:       db,
		store:    store,
		tags:     tags,
		posts:    NewPostService(postRepo, likeRepo, store, tags, 1<<20, zap.NewNop()),
		likes:    NewLikeService(likeRepo, postRepo),
		comments: NewCommentService(repositories.NewPostgresCommentRepository(db), postRepo, tags),
	}
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) post(t *testing.T, author *models.User, comment string) *models.PostView {
	t.Helper()
	view, err := e.posts.CreatePost(t.Context(), author, CreatePostInput{Photo: jpeg(), Comment: comment})
	require.NoError(t, err)
	return view
}

func jpeg() *Upload {
	return &Upload{Filename: "photo.jpg", ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("jpeg")}
}
