package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniblog/internal/app/service"
	"miniblog/internal/common/security"
	"miniblog/internal/domain/model"
	"miniblog/internal/domain/repository"
	"miniblog/internal/platform/config"
	"miniblog/internal/platform/database"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey: []byte("test-secret-key"),
		JWTExp: 720 * time.Hour,
	}
	security.InitJWT()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authService := service.NewAuthService(repository.NewSQLUserRepository(db))
	postService := service.NewPostService(repository.NewSQLPostRepository(db))
	return NewRouter(authService, postService)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

type authBody struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func registerUser(t *testing.T, h http.Handler, username, email, password string) authBody {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp authBody
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := doRequest(t, h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "server is working", body["message"])
}

func TestRegister(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp authBody
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "a@x.com", resp.User.Email)
	// The password hash is never serialized.
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doRequest(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "a@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "imposter", "email": "a@x.com", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is already in use")
}

func TestLogin_IdenticalErrorMessages(t *testing.T) {
	h := newTestRouter(t)
	registerUser(t, h, "alice", "a@x.com", "pw123456")

	wrongPass := doRequest(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrongpass",
	})
	unknownEmail := doRequest(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "pw123456",
	})

	assert.Equal(t, http.StatusBadRequest, wrongPass.Code)
	assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	assert.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
}

func TestAuthRequired(t *testing.T) {
	h := newTestRouter(t)

	// Missing token.
	rec := doRequest(t, h, http.MethodGet, "/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed token.
	rec = doRequest(t, h, http.MethodGet, "/posts", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Expired token.
	config.AppConfig.JWTExp = -time.Hour
	expired, err := security.GenerateToken(1)
	require.NoError(t, err)
	config.AppConfig.JWTExp = 720 * time.Hour

	rec = doRequest(t, h, http.MethodGet, "/posts", expired, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostLifecycle(t *testing.T) {
	h := newTestRouter(t)

	alice := registerUser(t, h, "alice", "a@x.com", "pw123456")
	bob := registerUser(t, h, "bob", "b@x.com", "pw123456")

	// Alice creates a post.
	rec := doRequest(t, h, http.MethodPost, "/posts", alice.Token, map[string]string{
		"title": "Hello", "text": "World",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created model.Post
	decodeBody(t, rec, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, alice.User.ID, created.AuthorID)
	assert.False(t, created.CreatedAt.IsZero())

	// Her listing contains exactly that post.
	rec = doRequest(t, h, http.MethodGet, "/posts?page=1&limit=10", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data       []model.Post `json:"data"`
		Total      int          `json:"total"`
		Page       int          `json:"page"`
		TotalPages int          `json:"totalPages"`
	}
	decodeBody(t, rec, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "Hello", page.Data[0].Title)

	postPath := fmt.Sprintf("/posts/%d", created.ID)

	// Bob cannot read, update, or delete it.
	rec = doRequest(t, h, http.MethodGet, postPath, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "World", "foreign access must not leak content")

	rec = doRequest(t, h, http.MethodPut, postPath, bob.Token, map[string]string{
		"title": "Hacked", "text": "Hacked",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, postPath, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Bob's listing stays empty.
	rec = doRequest(t, h, http.MethodGet, "/posts", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	assert.Empty(t, page.Data)

	// Alice updates her post; owner and creation time are untouched.
	rec = doRequest(t, h, http.MethodPut, postPath, alice.Token, map[string]string{
		"title": "Hello 2", "text": "World 2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Post
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Hello 2", updated.Title)
	assert.Equal(t, alice.User.ID, updated.AuthorID)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	rec = doRequest(t, h, http.MethodPut, postPath, alice.Token, map[string]string{
		"title": "", "text": "World 2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Alice deletes it; it is gone afterwards.
	rec = doRequest(t, h, http.MethodDelete, postPath, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post deleted")

	rec = doRequest(t, h, http.MethodGet, postPath, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, postPath, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPaginationParams(t *testing.T) {
	h := newTestRouter(t)
	alice := registerUser(t, h, "alice", "a@x.com", "pw123456")

	for i := 0; i < 12; i++ {
		rec := doRequest(t, h, http.MethodPost, "/posts", alice.Token, map[string]string{
			"title": "post", "text": "text",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var page struct {
		Data       []model.Post `json:"data"`
		Total      int          `json:"total"`
		Page       int          `json:"page"`
		TotalPages int          `json:"totalPages"`
	}

	// Non-numeric params fall back to page 1 / limit 10.
	rec := doRequest(t, h, http.MethodGet, "/posts?page=abc&limit=xyz", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	rec = doRequest(t, h, http.MethodGet, "/posts?page=2&limit=10", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Data, 2)

	rec = doRequest(t, h, http.MethodGet, "/posts?page=1&limit=5", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 3, page.TotalPages)
}

func TestGetPost_InvalidID(t *testing.T) {
	h := newTestRouter(t)
	alice := registerUser(t, h, "alice", "a@x.com", "pw123456")

	rec := doRequest(t, h, http.MethodGet, "/posts/not-a-number", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
