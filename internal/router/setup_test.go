package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/anonto42/photogram/backend/pkg/cache"
	"github.com/anonto42/photogram/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testApp struct {
	e    *echo.Echo
	db   *gorm.DB
	auth *services.AuthService
}

func setupApp(t *testing.T) *testApp {
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

	mediaRoot := t.TempDir()
	store, err := storage.NewLocalStorage(mediaRoot, "/media/")
	require.NoError(t, err)

	log := zap.NewNop()
	users := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	tags := services.NewTagService(repositories.NewPostgresHashTagRepository(db), cache.NoopTagCache{}, 0)
	auth := services.NewAuthService(users, nil, services.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, log)

	e, err := New(Deps{
		DB:        db,
		Log:       log,
		Auth:      auth,
		Posts:     services.NewPostService(postRepo, likeRepo, store, tags, 1<<20, log),
		Comments:  services.NewCommentService(repositories.NewPostgresCommentRepository(db), postRepo, tags),
		Likes:     services.NewLikeService(likeRepo, postRepo),
		Tags:      tags,
		Users:     users,
		MediaRoot: mediaRoot,
		MediaURL:  "/media/",
	})
	require.NoError(t, err)
	return &testApp{e: e, db: db, auth: auth}
}

// signup creates a user through the API and returns its token
func (a *testApp) signup(t *testing.T, username string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/members/signup", "", jsonBody(map[string]string{
		"username": username,
		"password": "correct horse",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

type body struct {
	reader      io.Reader
	contentType string
}

func jsonBody(v interface{}) body {
	raw, _ := json.Marshal(v)
	return body{reader: bytes.NewReader(raw), contentType: echo.MIMEApplicationJSON}
}

// photoForm builds a multipart form. An empty contentType leaves out the photo.
func photoForm(t *testing.T, contentType, comment string) body {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if contentType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photo"; filename="photo.jpg"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	if comment != "" {
		require.NoError(t, w.WriteField("comment", comment))
	}
	require.NoError(t, w.Close())
	return body{reader: &buf, contentType: w.FormDataContentType()}
}

func (a *testApp) do(t *testing.T, method, path, token string, b body) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, b.reader)
	if b.contentType != "" {
		req.Header.Set(echo.HeaderContentType, b.contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) createPost(t *testing.T, token, comment string) map[string]interface{} {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/posts", token, photoForm(t, "image/jpeg", comment))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func pk(m map[string]interface{}) string {
	f, _ := m["pk"].(float64)
	return strconv.Itoa(int(f))
}
