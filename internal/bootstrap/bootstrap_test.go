package bootstrap

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/pkg/config"
	"github.com/anonto42/photogram/backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:                    "test",
		Port:                   "0",
		JWTSecret:              "secret",
		JWTTTLHours:            1,
		TagCacheTTLSeconds:     60,
		StorageDriver:          "local",
		MediaRoot:              t.TempDir(),
		MediaURL:               "/media/",
		MaxUploadMB:            1,
		FirebaseTimeoutSeconds: 1,
	}
}

func TestBuild(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	cfg := testConfig(t)
	cfg.RedisURL = miniredis.RunT(t).Addr()

	rt, err := Build(t.Context(), cfg, db, zap.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.IsType(t, &storage.LocalStorage{}, rt.Store)
	_, err = rt.Auth.FirebaseLogin(t.Context(), "token")
	assert.Error(t, err, "firebase login stays disabled without credentials")

	tags, err := rt.Tags.Search(t.Context(), "x")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestNewStorageUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "ftp"
	_, err := NewStorage(t.Context(), cfg, zap.NewNop())
	assert.Error(t, err)
}
