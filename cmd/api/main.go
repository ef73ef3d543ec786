package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/library"
	"bookreview/internal/platform/booksapi"
	"bookreview/internal/platform/logger"
	"bookreview/internal/platform/objectstore"
	"bookreview/internal/profile"
	"bookreview/internal/review"
	"bookreview/internal/session"
	"bookreview/internal/user"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	log.Info("database connection OK")

	photos, err := objectstore.Open(ctx, cfg.Storage.BucketURL)
	if err != nil {
		return err
	}
	defer func() { _ = photos.Close() }()

	booksClient := booksapi.NewClient(booksapi.Config{
		BaseURL:      cfg.BooksAPI.BaseURL,
		Token:        cfg.BooksAPI.Token,
		UserAgent:    cfg.BooksAPI.UserAgent,
		Timeout:      cfg.BooksAPI.Timeout,
		RPS:          cfg.BooksAPI.RPS,
		MaxRetries:   cfg.BooksAPI.MaxRetries,
		RetryBackoff: cfg.BooksAPI.RetryBackoff,
	})

	queryTimeout := cfg.Database.QueryTimeout

	userService := user.NewService(user.NewPostgresRepo(dbPool, queryTimeout))
	sessionService := session.NewService(
		session.NewPostgresRepo(dbPool, queryTimeout),
		session.NewBlacklistPostgresRepo(dbPool, queryTimeout),
	)
	authService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, userService, sessionService)
	bookService := book.NewService(booksClient, cfg.BooksAPI.MinSearchLength)
	libraryService := library.NewService(library.NewPostgresRepo(dbPool, queryTimeout), bookService,
		cfg.BooksAPI.HydrateConcurrency, log.Named("library"))
	reviewService := review.NewService(review.NewPostgresRepo(dbPool, queryTimeout), bookService)
	profileService := profile.NewService(userService, libraryService, reviewService, photos,
		cfg.Storage.PublicBaseURL, log.Named("profile"))

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	defer rateLimiter.Stop()

	janitor := session.NewJanitor(sessionService, cfg.Auth.JanitorInterval, log.Named("janitor"))
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		janitor.Run(ctx)
	}()

	router := newRouter(routerConfig{
		jwtSecret:      cfg.Auth.JWTSecret,
		blacklist:      sessionService,
		db:             dbPool,
		logger:         log,
		rateLimiter:    rateLimiter,
		allowedOrigins: cfg.HTTP.AllowedOrigins,
		enableHSTS:     cfg.HTTP.EnableHSTS,
		trustProxy:     cfg.HTTP.TrustProxy,
		maxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}, handlers{
		users:    user.NewHTTPHandler(userService, log),
		auth:     auth.NewHTTPHandler(authService, log),
		sessions: session.NewHTTPHandler(sessionService, log),
		books:    book.NewHTTPHandler(bookService),
		library:  library.NewHTTPHandler(libraryService, log),
		reviews:  review.NewHTTPHandler(reviewService, log),
		profiles: profile.NewHTTPHandler(profileService, cfg.Storage.MaxPhotoBytes, log),
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		stop()
		<-janitorDone
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	<-janitorDone
	log.Info("server stopped")
	return nil
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn (%s): %w", redactDSN(cfg.DSN), err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(cfg.DSN), err)
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
