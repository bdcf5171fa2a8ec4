package httpx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookreview/internal/platform/crypto"
	"bookreview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"http://localhost:3000", "http://localhost:5173"})(okHandler)

	t.Run("allowed origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/books", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("disallowed origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/books", nil)
		r.Header.Set("Origin", "http://evil.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/books", nil)
		r.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name string
		hsts bool
		want string
	}{
		{name: "hsts enabled", hsts: true, want: "max-age=31536000; includeSubDomains"},
		{name: "hsts disabled", hsts: false, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SecurityHeadersMiddleware(tt.hsts)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
			assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
			assert.Equal(t, tt.want, w.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	decoding := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]any
		if err := DecodeJSON(r, &v); err != nil {
			WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name  string
		limit int64
		body  []byte
		want  int
	}{
		{name: "under limit", limit: 1024, body: []byte(`{"title":"Dune"}`), want: http.StatusOK},
		{name: "declared length over limit", limit: 100, body: bytes.Repeat([]byte("a"), 500), want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/books", bytes.NewReader(tt.body))
			RequestSizeLimitMiddleware(tt.limit)(decoding).ServeHTTP(w, r)

			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("streamed body over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", bytes.NewReader([]byte(`{"title":"`+string(bytes.Repeat([]byte("a"), 500))+`"}`)))
		r.ContentLength = -1
		RequestSizeLimitMiddleware(100)(decoding).ServeHTTP(w, r)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "PAYLOAD_TOO_LARGE", testutil.Decode(t, w).Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimitMiddleware(1, 2)
	t.Cleanup(rl.Close)
	handler := rl.Middleware(okHandler)

	hit := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/books", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1").Code)

	w := hit("10.0.0.1:1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", testutil.Decode(t, w).Code)

	assert.Equal(t, http.StatusOK, hit("10.0.0.2:1").Code, "other clients keep their own bucket")
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-Id"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "abc-123", seen)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), AccessLogMiddleware, RecoveryMiddleware)

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", testutil.Decode(t, w).Code)
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "middleware-secret"
	var userID string
	handler := Protect(secret, nil, func(w http.ResponseWriter, r *http.Request) {
		userID = UserIDFrom(r)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		header  string
		want    int
		message string
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized, message: "Not authorized, no token"},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized, message: "Not authorized, no token"},
		{name: "expired", header: "Bearer " + testutil.ExpiredToken(t, secret, "u1"), want: http.StatusUnauthorized, message: "Token expired"},
		{name: "wrong secret", header: "Bearer " + testutil.Token(t, "other", "u1"), want: http.StatusUnauthorized, message: "Invalid token"},
		{name: "valid", header: "Bearer " + testutil.Token(t, secret, "u1"), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID = ""
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				env := testutil.Decode(t, w)
				assert.Equal(t, "AUTH_ERROR", env.Code)
				assert.Equal(t, tt.message, env.Message)
				return
			}
			assert.Equal(t, "u1", userID)
		})
	}
}

type revokedSet map[string]bool

func (s revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s[jti], nil
}

func TestAuthMiddleware_Revocation(t *testing.T) {
	const secret = "middleware-secret"
	token := testutil.Token(t, secret, "u1")
	claims, err := crypto.ParseToken(secret, token)
	require.NoError(t, err)

	var seen *crypto.Claims
	handler := Protect(secret, revokedSet{claims.ID: true}, func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFrom(r)
	})

	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token revoked", testutil.Decode(t, w).Message)
	assert.Nil(t, seen)

	fresh := testutil.Token(t, secret, "u1")
	r = httptest.NewRequest(http.MethodGet, "/me", nil)
	r.Header.Set("Authorization", "Bearer "+fresh)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.Sub)
	assert.NotEmpty(t, seen.ID)
}
