package router

import (
	"net/http"
	"testing"

	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLoginProfile(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "alice")

	rec := a.do(t, http.MethodGet, "/api/members/profile", token, body{})
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, profile, "password")

	rec = a.do(t, http.MethodPost, "/api/members/auth-token", "", jsonBody(map[string]string{
		"username": "alice", "password": "correct horse",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["token"])

	rec = a.do(t, http.MethodPost, "/api/members/auth-token", "", jsonBody(map[string]string{
		"username": "alice", "password": "wrong",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "non_field_errors")

	rec = a.do(t, http.MethodGet, "/api/members/"+pk(profile), "", body{})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodGet, "/api/members/999", "", body{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignupErrors(t *testing.T) {
	a := setupApp(t)
	a.signup(t, "alice")

	rec := a.do(t, http.MethodPost, "/api/members/signup", "", jsonBody(map[string]string{
		"username": "alice", "password": "correct horse",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/members/signup", "", jsonBody(map[string]string{
		"username": "bad name!", "password": "short",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
}

func TestProfileRequiresAuth(t *testing.T) {
	a := setupApp(t)

	rec := a.do(t, http.MethodGet, "/api/members/profile", "", body{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/members/profile", "garbage", body{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/posts", "garbage", body{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "a bad bearer token is never treated as anonymous")
}

func TestFirebaseLoginDisabled(t *testing.T) {
	a := setupApp(t)
	rec := a.do(t, http.MethodPost, "/api/members/firebase-login", "", jsonBody(map[string]string{"idToken": "x"}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreatePost(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "alice")

	rec := a.do(t, http.MethodPost, "/api/posts", "", photoForm(t, "image/jpeg", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	post := a.createPost(t, token, "golden #sunset")
	for _, key := range []string{"pk", "author", "photo", "created_at", "is_like", "comments"} {
		assert.Contains(t, post, key)
	}
	assert.Nil(t, post["is_like"])
	assert.Equal(t, "alice", post["author"].(map[string]interface{})["username"])
	comments := post["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, `golden <a href="/explore/tags/sunset/">#sunset</a>`, comments[0].(map[string]interface{})["html"])

	rec = a.do(t, http.MethodGet, post["photo"].(string), "", body{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake image bytes", rec.Body.String())
}

func TestCreatePostWithoutPhotoPersistsNothing(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "alice")

	rec := a.do(t, http.MethodPost, "/api/posts", token, photoForm(t, "", "#orphan"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "photo")

	rec = a.do(t, http.MethodPost, "/api/posts", token, photoForm(t, "text/plain", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var posts, comments, tags int64
	require.NoError(t, a.db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, a.db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, a.db.Model(&models.HashTag{}).Count(&tags).Error)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
	assert.Zero(t, tags)
}

func TestListPostsNewestFirstWithLikes(t *testing.T) {
	a := setupApp(t)
	alice := a.signup(t, "alice")
	bob := a.signup(t, "bob")
	first := a.createPost(t, alice, "")
	second := a.createPost(t, alice, "")

	rec := a.do(t, http.MethodPost, "/api/posts/"+pk(first)+"/like/toggle", bob, body{})
	require.Equal(t, http.StatusCreated, rec.Code)
	like := decode(t, rec)

	rec = a.do(t, http.MethodGet, "/api/posts", bob, body{})
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decodeList(t, rec)
	require.Len(t, posts, 2)
	assert.Equal(t, pk(second), pk(posts[0]))
	assert.Nil(t, posts[0]["is_like"])
	require.NotNil(t, posts[1]["is_like"])
	assert.Equal(t, like["pk"], posts[1]["is_like"].(map[string]interface{})["pk"])

	rec = a.do(t, http.MethodGet, "/api/posts", "", body{})
	for _, p := range decodeList(t, rec) {
		assert.Nil(t, p["is_like"])
	}

	rec = a.do(t, http.MethodGet, "/api/posts?limit=1&offset=1", "", body{})
	page := decodeList(t, rec)
	require.Len(t, page, 1)
	assert.Equal(t, pk(first), pk(page[0]))

	rec = a.do(t, http.MethodGet, "/api/posts?limit=abc", "", body{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	a := setupApp(t)
	alice := a.signup(t, "alice")
	post := a.createPost(t, alice, "")
	path := "/api/posts/" + pk(post) + "/like/toggle"

	rec := a.do(t, http.MethodPost, path, "", body{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, path, alice, body{})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(t, http.MethodPost, path, alice, body{})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/posts/"+pk(post), alice, body{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["is_like"])

	rec = a.do(t, http.MethodPost, "/api/posts/999/like/toggle", alice, body{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikeUnlikeAndDeleteByID(t *testing.T) {
	a := setupApp(t)
	alice := a.signup(t, "alice")
	bob := a.signup(t, "bob")
	post := a.createPost(t, alice, "")
	path := "/api/posts/" + pk(post) + "/like"

	rec := a.do(t, http.MethodPost, path, bob, body{})
	require.Equal(t, http.StatusCreated, rec.Code)
	like := decode(t, rec)
	rec = a.do(t, http.MethodPost, path, bob, body{})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/likes/"+pk(like), alice, body{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodDelete, "/api/likes/"+pk(like), bob, body{})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, path, bob, body{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodPost, path, bob, body{})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(t, http.MethodDelete, path, bob, body{})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPostAuthorOnlyMutations(t *testing.T) {
	a := setupApp(t)
	alice := a.signup(t, "alice")
	bob := a.signup(t, "bob")
	post := a.createPost(t, alice, "")
	path := "/api/posts/" + pk(post)

	rec := a.do(t, http.MethodPatch, path, bob, photoForm(t, "image/png", ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodPatch, path, alice, photoForm(t, "image/png", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, post["photo"], decode(t, rec)["photo"])

	rec = a.do(t, http.MethodDelete, path, bob, body{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodDelete, path, alice, body{})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodDelete, path, alice, body{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodGet, path, "", body{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodGet, "/api/posts/not-a-number", "", body{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComments(t *testing.T) {
	a := setupApp(t)
	alice := a.signup(t, "alice")
	bob := a.signup(t, "bob")
	post := a.createPost(t, alice, "")
	path := "/api/posts/" + pk(post) + "/comments"

	rec := a.do(t, http.MethodPost, path, bob, jsonBody(map[string]string{"content": "#sunset at the beach #sunset"}))
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode(t, rec)
	assert.Equal(t,
		`<a href="/explore/tags/sunset/">#sunset</a> at the beach <a href="/explore/tags/sunset/">#sunset</a>`,
		comment["html"])
	assert.Equal(t, "bob", comment["author"].(map[string]interface{})["username"])

	rec = a.do(t, http.MethodPost, path, bob, jsonBody(map[string]string{"content": ""}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "content")

	rec = a.do(t, http.MethodPost, "/api/posts/999/comments", bob, jsonBody(map[string]string{"content": "hi"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPut, "/api/comments/"+pk(comment), alice, jsonBody(map[string]string{"content": "mine now"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodPut, "/api/comments/"+pk(comment), bob, jsonBody(map[string]string{"content": "#dusk"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<a href="/explore/tags/dusk/">#dusk</a>`, decode(t, rec)["html"])

	rec = a.do(t, http.MethodGet, path, "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = a.do(t, http.MethodDelete, "/api/comments/"+pk(comment), alice, body{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodDelete, "/api/comments/"+pk(comment), bob, body{})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTags(t *testing.T) {
	a := setupApp(t)
	alice := a.signup(t, "alice")
	tagged := a.createPost(t, alice, "#Sunset")
	a.createPost(t, alice, "#sunrise")
	a.createPost(t, alice, "nothing")

	rec := a.do(t, http.MethodPost, "/api/posts/"+pk(tagged)+"/comments", alice, jsonBody(map[string]string{"content": "#Sunset again"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/tags/search?keyword=sun", "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeList(t, rec)
	assert.Len(t, found, 2)
	assert.Contains(t, found[0], "id")
	assert.Contains(t, found[0], "name")

	rec = a.do(t, http.MethodGet, "/api/tags/search", "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/tags/Sunset/posts", "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decodeList(t, rec)
	require.Len(t, posts, 1, "a post with two matching comments appears once")
	assert.Equal(t, pk(tagged), pk(posts[0]))

	rec = a.do(t, http.MethodGet, "/api/posts?tag=sunset", "", body{})
	assert.Empty(t, decodeList(t, rec), "tag filtering is case-sensitive")
}

func TestPostsByTagNamedLikeARoute(t *testing.T) {
	a := setupApp(t)
	alice := a.signup(t, "alice")
	search := a.createPost(t, alice, "#search party")
	seoul := a.createPost(t, alice, "여행 #서울")

	rec := a.do(t, http.MethodGet, "/api/tags/search/posts", "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decodeList(t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, pk(search), pk(posts[0]))

	rec = a.do(t, http.MethodGet, "/api/tags/%EC%84%9C%EC%9A%B8/posts", "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	posts = decodeList(t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, pk(seoul), pk(posts[0]))

	rec = a.do(t, http.MethodGet, "/api/tags/search?keyword=sea", "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

func TestHealthAndMetrics(t *testing.T) {
	a := setupApp(t)

	rec := a.do(t, http.MethodGet, "/health", "", body{})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/metrics", "", body{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "photoblog_http_requests_total")
}
