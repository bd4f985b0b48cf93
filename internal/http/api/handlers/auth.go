package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dubytrack/dubytrack/internal/config"
	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/dubytrack/dubytrack/internal/security"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler manages registration, login, and logout.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
	mirror Mirror
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, mirror Mirror) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, mirror: mirror}
}

// registerRequest defines the request body for registration.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user account and opens a session.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	name := strings.TrimSpace(body.Name)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") || len(body.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()

	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCount.Error()})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errHash.Error()})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCreate.Error()})
		return
	}

	h.openSession(c, user)
	mirrorEnsureTab(ctx, h.mirror, user.Name)

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFind.Error()})
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.openSession(c, user)
	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// Logout revokes the refresh token and clears both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw, errCookie := c.Cookie(RefreshCookie); errCookie == nil && raw != "" {
		hash := security.HashRefreshToken(raw)
		errDelete := h.db.WithContext(c.Request.Context()).
			Where("token_hash = ?", hash).
			Delete(&models.RefreshToken{}).Error
		if errDelete != nil {
			log.WithError(errDelete).Warn("refresh token not revoked")
		}
	}
	ClearSessionCookie(c)
	ClearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// openSession signs a session token, sets the cookie, and issues a
// refresh token for silent renewal. Failures leave the response
// unauthenticated but do not fail it.
func (h *AuthHandler) openSession(c *gin.Context, user models.User) {
	token, errSign := security.SignSessionToken(h.jwtCfg.Secret, user.ID, h.jwtCfg.Expiry)
	if errSign != nil {
		log.WithError(errSign).Warn("session token not issued")
		return
	}
	SetSessionCookie(c, token)

	refresh, hash, errToken := security.NewRefreshToken()
	if errToken != nil {
		log.WithError(errToken).Warn("refresh token not issued")
		return
	}
	row := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(RefreshTokenTTL),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).Warn("refresh token not issued")
		return
	}
	SetRefreshCookie(c, refresh)
}
