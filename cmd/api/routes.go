package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/httpx"
	"bookreview/internal/library"
	"bookreview/internal/profile"
	"bookreview/internal/review"
	"bookreview/internal/session"
	"bookreview/internal/user"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	users    *user.HTTPHandler
	auth     *auth.HTTPHandler
	sessions *session.HTTPHandler
	books    *book.HTTPHandler
	library  *library.HTTPHandler
	reviews  *review.HTTPHandler
	profiles *profile.HTTPHandler
}

type routerConfig struct {
	jwtSecret      string
	blacklist      httpx.BlacklistChecker
	db             pinger
	logger         *zap.Logger
	rateLimiter    *httpx.RateLimitMiddleware
	allowedOrigins []string
	enableHSTS     bool
	trustProxy     bool
	maxBodyBytes   int64
}

func newRouter(cfg routerConfig, h handlers) http.Handler {
	mux := http.NewServeMux()

	requireAuth := httpx.AuthMiddleware(cfg.jwtSecret, cfg.blacklist)
	limitBody := httpx.RequestSizeLimitMiddleware(cfg.maxBodyBytes)

	public := func(fn http.HandlerFunc) http.Handler {
		return limitBody(fn)
	}
	private := func(fn http.HandlerFunc) http.Handler {
		return limitBody(requireAuth(fn))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := cfg.db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("POST /auth/register", public(h.users.RegisterUser))
	mux.Handle("POST /auth/login", public(h.auth.Login))
	mux.Handle("POST /auth/refresh", public(h.auth.RefreshToken))
	mux.Handle("POST /auth/logout", private(h.auth.Logout))

	mux.Handle("GET /me", private(h.users.GetCurrentUser))
	mux.Handle("GET /me/sessions", private(h.sessions.ListSessions))
	mux.Handle("DELETE /me/sessions/{id}", private(h.sessions.DeleteSession))

	mux.Handle("GET /me/profile", private(h.profiles.GetOwnProfile))
	mux.Handle("PATCH /me/profile", private(h.profiles.UpdateProfile))
	mux.Handle("PUT /me/profile/photo",
		httpx.RequestSizeLimitMiddleware(h.profiles.MaxUploadBytes())(requireAuth(http.HandlerFunc(h.profiles.UploadPhoto))))
	mux.Handle("DELETE /me/profile/photo", private(h.profiles.DeletePhoto))
	mux.HandleFunc("GET /photos/{path...}", h.profiles.ServePhoto)

	mux.Handle("GET /me/library", private(h.library.List))
	mux.Handle("GET /me/library/{bookId}", private(h.library.Check))
	mux.Handle("PUT /me/library/{bookId}", private(h.library.Add))
	mux.Handle("DELETE /me/library/{bookId}", private(h.library.Remove))

	mux.Handle("GET /books", public(h.books.List))
	mux.Handle("GET /books/search", public(h.books.Search))
	mux.Handle("GET /books/{id}", public(h.books.Get))
	mux.Handle("GET /books/{id}/reviews", public(h.reviews.List))
	mux.Handle("GET /books/{id}/rating", public(h.reviews.Rating))
	mux.Handle("GET /books/{id}/review", private(h.reviews.GetOwn))
	mux.Handle("PUT /books/{id}/review", private(h.reviews.Save))
	mux.Handle("DELETE /books/{id}/review", private(h.reviews.DeleteOwn))

	var handler http.Handler = mux
	if cfg.rateLimiter != nil {
		handler = cfg.rateLimiter.Middleware(handler)
	}

	// Outermost first.
	return httpx.Chain(handler,
		httpx.RequestIDMiddleware,
		httpx.RealIPMiddleware(cfg.trustProxy),
		httpx.AccessLogMiddleware(cfg.logger),
		httpx.RecoveryMiddleware(cfg.logger),
		httpx.SecurityHeadersMiddleware(cfg.enableHSTS),
		httpx.CORSMiddleware(cfg.allowedOrigins),
	)
}
