package repositories

import (
	"testing"

	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, comment string) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author.ID, Photo: "post/" + author.Username + ".jpg"}
	_, err := NewPostgresPostRepository(db).Create(t.Context(), p, comment)
	require.NoError(t, err)
	return p
}
