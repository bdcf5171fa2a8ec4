package main

import (
	"context"
	"net/http"
	"time"

	"bookreview/internal/app"
	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/platform/apidoc"
	"bookreview/internal/review"
	"bookreview/internal/user"
)

// newRouter registers every route and wraps the mux in the shared middleware.
// The returned func releases middleware resources.
func newRouter(cfg config.Config, svc app.Services, ping func(context.Context) error) (http.Handler, func()) {
	books := book.NewHTTPHandler(svc.Books)
	reviews := review.NewHTTPHandler(svc.Reviews)
	users := user.NewHTTPHandler(svc.Users)
	authn := auth.NewHTTPHandler(svc.Auth)

	protect := func(h http.HandlerFunc) http.Handler {
		return httpx.Protect(cfg.JWTSecret, svc.Auth, h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("GET /swagger/doc.json", apidoc.Handler())

	mux.HandleFunc("POST /auth/signup", authn.Signup)
	mux.HandleFunc("POST /auth/login", authn.Login)
	mux.Handle("POST /auth/logout", protect(authn.Logout))
	mux.Handle("GET /me", protect(users.GetCurrentUser))

	mux.HandleFunc("GET /books", books.List)
	mux.Handle("POST /books", protect(books.Create))
	mux.HandleFunc("GET /books/{id}", books.Get)
	mux.Handle("PUT /books/{id}", protect(books.Update))
	mux.Handle("DELETE /books/{id}", protect(books.Delete))
	mux.HandleFunc("GET /search", books.Search)

	mux.HandleFunc("GET /books/{id}/reviews", reviews.ListForBook)
	mux.Handle("POST /books/{id}/reviews", protect(reviews.CreateForBook))
	mux.HandleFunc("GET /reviews", reviews.List)
	mux.Handle("POST /reviews", protect(reviews.Create))
	mux.HandleFunc("GET /reviews/{id}", reviews.Get)
	mux.Handle("PUT /reviews/{id}", protect(reviews.Update))
	mux.Handle("DELETE /reviews/{id}", protect(reviews.Delete))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Not Found - "+r.URL.Path, nil)
	})

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := httpx.Chain(mux,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(!cfg.Development()),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
	return handler, limiter.Close
}
