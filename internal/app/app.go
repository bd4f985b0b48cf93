// Package app boots the server: database, spreadsheet mirror, rate
// limiter, and the HTTP engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dubytrack/dubytrack/internal/config"
	"github.com/dubytrack/dubytrack/internal/db"
	"github.com/dubytrack/dubytrack/internal/http/api"
	"github.com/dubytrack/dubytrack/internal/ratelimit"
	"github.com/dubytrack/dubytrack/internal/sheets"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// context is cancelled.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.Config) error {
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server and blocks until ctx is cancelled or
// the listener fails.
func RunServer(ctx context.Context, cfg config.Config) error {
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	var mirror *sheets.Mirror
	if cfg.Sheets.Enabled() {
		client, errClient := sheets.NewClient(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if errClient != nil {
			return errClient
		}
		mirror = sheets.NewMirror(client, cfg.Sheets.TemplateTab)
		log.Info("spreadsheet mirror enabled")
	} else {
		log.Info("spreadsheet mirror disabled")
	}

	limiter := buildLimiter(cfg.RateLimit)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	api.RegisterRoutes(engine, conn, cfg, mirror, limiter)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// buildLimiter returns the Redis limiter when an address is configured,
// the in-memory limiter otherwise.
func buildLimiter(cfg config.RateLimitConfig) ratelimit.Limiter {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		log.WithField("addr", cfg.RedisAddr).Info("redis rate limiter enabled")
		return ratelimit.NewRedisLimiter(client, cfg.RedisPrefix, time.Second)
	}
	return ratelimit.NewMemoryLimiter(time.Second)
}

// requestLogger logs one line per request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("request")
	}
}
