package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookreview/internal/app"
	"bookreview/internal/config"
	"bookreview/internal/store/memstore"
	"bookreview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routing-test-secret"

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestServer(t *testing.T) *client {
	t.Helper()
	cfg := config.Config{
		Env:            config.EnvDevelopment,
		StoreDriver:    config.DriverMemory,
		JWTSecret:      testSecret,
		JWTTTL:         time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1 << 20,
	}
	repos := app.MemoryRepositories(memstore.New())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler, closeRouter := newRouter(cfg, app.NewServices(repos, cfg, logger), repos.Ping)
	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		closeRouter()
	})
	return &client{t: t, server: server}
}

func (c *client) do(method, path string, body any) (*http.Response, testutil.Envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env testutil.Envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (c *client) signup(username string) {
	c.t.Helper()
	c.token = ""
	resp, env := c.do(http.MethodPost, "/auth/signup", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "Sup3r$ecret",
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, env.Message)

	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &sess))
	c.token = sess.Token
}

func decodeInto[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestRouting_OpsEndpoints(t *testing.T) {
	c := newTestServer(t)

	resp, _ := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, _ = c.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/swagger/doc.json", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := c.do(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestRouting_WritesRequireToken(t *testing.T) {
	c := newTestServer(t)

	resp, env := c.do(http.MethodPost, "/books", map[string]string{"title": "Dune"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_ERROR", env.Code)

	for name, token := range map[string]string{
		"malformed":    "not-a-jwt",
		"expired":      testutil.ExpiredToken(t, testSecret, "u1"),
		"wrong secret": testutil.Token(t, "another-secret", "u1"),
	} {
		t.Run(name, func(t *testing.T) {
			sub := &client{t: t, server: c.server, token: token}
			resp, env := sub.do(http.MethodGet, "/me", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "AUTH_ERROR", env.Code)
		})
	}
}

func TestRouting_ReviewLifecycle(t *testing.T) {
	c := newTestServer(t)
	c.signup("alice")

	resp, env := c.do(http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeInto[struct {
		Username string `json:"username"`
	}](t, env.Data)
	assert.Equal(t, "alice", me.Username)

	resp, env = c.do(http.MethodPost, "/books", map[string]any{
		"title":       "Dune",
		"author":      "Frank Herbert",
		"description": "Desert planet",
		"genre":       []string{"scifi"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	bookID := decodeInto[struct {
		ID string `json:"id"`
	}](t, env.Data).ID

	resp, _ = c.do(http.MethodPost, "/books/"+bookID+"/reviews", map[string]any{"rating": 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = c.do(http.MethodPost, "/books/"+bookID+"/reviews", map[string]any{"rating": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_REVIEWED", env.Code)

	c.signup("bob")
	resp, _ = c.do(http.MethodPost, "/reviews", map[string]any{"book": bookID, "rating": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = c.do(http.MethodGet, "/books/"+bookID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decodeInto[struct {
		Book struct {
			AverageRating float64 `json:"averageRating"`
			TotalReviews  int     `json:"totalReviews"`
			Reviews       struct {
				Data []struct {
					User struct {
						Username string `json:"username"`
					} `json:"user"`
				} `json:"data"`
			} `json:"reviews"`
		} `json:"book"`
	}](t, env.Data)
	assert.Equal(t, 3.0, detail.Book.AverageRating)
	assert.Equal(t, 2, detail.Book.TotalReviews)
	require.Len(t, detail.Book.Reviews.Data, 2)
	assert.Equal(t, "bob", detail.Book.Reviews.Data[0].User.Username)

	resp, env = c.do(http.MethodGet, "/search", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	resp, _ = c.do(http.MethodGet, "/search?q=herbert", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodDelete, "/books/"+bookID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, env = c.do(http.MethodGet, "/reviews?bookId="+bookID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRouting_DuplicateSignup(t *testing.T) {
	c := newTestServer(t)
	c.signup("alice")
	c.token = ""

	resp, env := c.do(http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice2",
		"email":    "ALICE@example.com",
		"password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_ERROR", env.Code)
	assert.Equal(t, "Duplicate email. This email is already in use.", env.Message)

	resp, env = c.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_ERROR", env.Code)
}

func TestRouting_LogoutRevokesToken(t *testing.T) {
	c := newTestServer(t)
	c.signup("alice")

	resp, _ := c.do(http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, env := c.do(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token revoked", env.Message)

	token := c.token
	c.token = ""
	resp, env = c.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c.token = decodeInto[struct {
		Token string `json:"token"`
	}](t, env.Data).Token
	assert.NotEqual(t, token, c.token)

	resp, _ = c.do(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouting_HugePageIsEmpty(t *testing.T) {
	c := newTestServer(t)

	resp, env := c.do(http.MethodGet, "/books?page=92233720368547760&limit=100", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))
	require.NotNil(t, env.Pagination)
	assert.Nil(t, env.Pagination.NextPage)
}
