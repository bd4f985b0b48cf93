package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the HTTP-only session cookie.
const SessionCookie = "dubytrack_session"

// RefreshCookie holds the long-lived token used to renew an expired session.
const RefreshCookie = "dubytrack_refresh"

// ContextUserID is the gin context key holding the resolved user ID.
const ContextUserID = "userID"

// sessionCookieMaxAge matches the token expiry: 7 days.
const sessionCookieMaxAge = 7 * 24 * 60 * 60

// refreshCookieMaxAge outlives the session so it can renew it: 30 days.
const refreshCookieMaxAge = 30 * 24 * 60 * 60

// RefreshTokenTTL is the database-side lifetime of a refresh token.
const RefreshTokenTTL = 30 * 24 * time.Hour

// SetSessionCookie attaches the signed session token to the response.
func SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, sessionCookieMaxAge, "/", "", false, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// SetRefreshCookie attaches the refresh token to the response.
func SetRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, token, refreshCookieMaxAge, "/", "", false, true)
}

// ClearRefreshCookie expires the refresh cookie.
func ClearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, "", -1, "/", "", false, true)
}

// currentUserID returns the user ID resolved by the session middleware.
func currentUserID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
