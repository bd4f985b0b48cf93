// Package api wires the HTTP routes, session resolution, and the auth
// endpoint rate limit onto a gin engine.
package api

import (
	"net/http"
	"time"

	"github.com/dubytrack/dubytrack/internal/config"
	"github.com/dubytrack/dubytrack/internal/http/api/handlers"
	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/dubytrack/dubytrack/internal/ratelimit"
	"github.com/dubytrack/dubytrack/internal/security"
	"github.com/dubytrack/dubytrack/internal/sheets"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// demoUserEmail identifies the shared account used for unauthenticated
// requests, so the app is usable without registering.
const demoUserEmail = "demo@dubytrack.local"

// RegisterRoutes registers all routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, conn *gorm.DB, cfg config.Config, mirror *sheets.Mirror, limiter ratelimit.Limiter) {
	if r == nil || conn == nil {
		return
	}

	r.GET("/healthz", handlers.Health)

	// A nil *sheets.Mirror must stay nil as an interface so the
	// handlers' nil checks keep working.
	var m handlers.Mirror
	if mirror != nil {
		m = mirror
	}

	authHandler := handlers.NewAuthHandler(conn, cfg.JWT, m)
	authGroup := r.Group("/auth")
	authGroup.Use(rateLimitMiddleware(limiter, cfg.RateLimit.PerSecond))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	profileHandler := handlers.NewProfileHandler(conn, m)
	dashboardHandler := handlers.NewDashboardHandler(conn, m, cfg.Sheets.LedgerReads)
	foodHandler := handlers.NewFoodHandler(conn, m)
	weightHandler := handlers.NewWeightHandler(conn, m)

	// /me reveals account data, so it never falls back to the demo user.
	strict := r.Group("")
	strict.Use(sessionMiddleware(conn, cfg.JWT, demoNone))
	strict.GET("/me", profileHandler.Me)

	// Unauthenticated reads reuse the demo account when it exists; only
	// an unauthenticated write creates it.
	reads := r.Group("")
	reads.Use(sessionMiddleware(conn, cfg.JWT, demoRead))
	reads.GET("/dashboard", dashboardHandler.Today)
	reads.GET("/food/search", foodHandler.Search)

	writes := r.Group("")
	writes.Use(sessionMiddleware(conn, cfg.JWT, demoWrite))
	writes.PUT("/me/profile", profileHandler.SaveProfile)
	writes.POST("/food-log", foodHandler.Log)
	writes.DELETE("/food-log/:id", foodHandler.Delete)
	writes.POST("/weight-log", weightHandler.Log)
}

// demoMode controls how unauthenticated requests resolve a user.
type demoMode int

const (
	demoNone  demoMode = iota // reject outright
	demoRead                  // reuse the demo account when present
	demoWrite                 // create the demo account if needed
)

// sessionMiddleware resolves the session into a user ID, renewing it
// from the refresh token when the session cookie is absent or stale.
// The mode decides what happens without a session: rejection, reuse of
// an existing demo account, or demo account creation.
func sessionMiddleware(conn *gorm.DB, jwtCfg config.JWTConfig, mode demoMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := resolveSession(c, conn, jwtCfg); ok {
			c.Set(handlers.ContextUserID, userID)
			c.Next()
			return
		}

		if mode == demoNone {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}

		demoID, errDemo := resolveDemoUser(c, conn, mode == demoWrite)
		if errDemo != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errDemo.Error()})
			return
		}
		if demoID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}
		c.Set(handlers.ContextUserID, demoID)
		c.Next()
	}
}

// resolveSession returns the user ID for a valid session cookie, or
// renews the session from the refresh token when possible.
func resolveSession(c *gin.Context, conn *gorm.DB, jwtCfg config.JWTConfig) (uint64, bool) {
	ctx := c.Request.Context()

	if raw, errCookie := c.Cookie(handlers.SessionCookie); errCookie == nil && raw != "" {
		claims, errParse := security.ParseSessionToken(jwtCfg.Secret, raw)
		if errParse == nil {
			var user models.User
			if errFind := conn.WithContext(ctx).First(&user, claims.UserID).Error; errFind == nil {
				return user.ID, true
			}
		}
	}

	raw, errCookie := c.Cookie(handlers.RefreshCookie)
	if errCookie != nil || raw == "" {
		return 0, false
	}
	hash := security.HashRefreshToken(raw)

	var token models.RefreshToken
	errFind := conn.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", hash, time.Now().UTC()).
		First(&token).Error
	if errFind != nil {
		return 0, false
	}

	var user models.User
	if errUser := conn.WithContext(ctx).First(&user, token.UserID).Error; errUser != nil {
		return 0, false
	}

	signed, errSign := security.SignSessionToken(jwtCfg.Secret, user.ID, jwtCfg.Expiry)
	if errSign == nil {
		handlers.SetSessionCookie(c, signed)
	}
	return user.ID, true
}

// resolveDemoUser finds the shared demo account, creating it only when
// create is set. A zero ID with a nil error means no demo user exists.
func resolveDemoUser(c *gin.Context, conn *gorm.DB, create bool) (uint64, error) {
	ctx := c.Request.Context()

	var user models.User
	errFind := conn.WithContext(ctx).Where("email = ?", demoUserEmail).First(&user).Error
	if errFind == nil {
		return user.ID, nil
	}
	if !create {
		return 0, nil
	}

	user = models.User{Name: "Demo", Email: demoUserEmail}
	if errCreate := conn.WithContext(ctx).Create(&user).Error; errCreate != nil {
		// A concurrent request may have created it first.
		errRetry := conn.WithContext(ctx).Where("email = ?", demoUserEmail).First(&user).Error
		if errRetry != nil {
			return 0, errCreate
		}
	}
	return user.ID, nil
}

// rateLimitMiddleware enforces a per-client-IP request limit on the
// group it is attached to. Limiter failures let the request through.
func rateLimitMiddleware(limiter ratelimit.Limiter, perSecond int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || perSecond <= 0 {
			c.Next()
			return
		}
		result, errAllow := limiter.Allow(c.Request.Context(), c.ClientIP(), perSecond, time.Now())
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit check failed")
			c.Next()
			return
		}
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
