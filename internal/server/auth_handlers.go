package server

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roomly-dev/roomly/internal/auth"
	"github.com/roomly-dev/roomly/internal/models"
)

// LoginRequest represents a username/password login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest represents an account creation request
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
}

// SocialLoginRequest carries the authorization code returned by an
// identity provider redirect
type SocialLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// me returns the authenticated user, or an auth failure for anonymous
// requests. The client treats the failure as "no session".
func (s *Server) me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// logIn authenticates with username and password. A wrong credential is
// a domain rejection ({"error": ...}), not a server fault.
func (s *Server) logIn(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var user models.User
	err := s.db.Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "wrong username or password"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wrong username or password"})
		return
	}

	if err := s.startSession(c, &user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to start session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": "welcome back!"})
}

// signUp creates an account and opens a session for it
func (s *Server) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signup payload"})
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user := models.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := s.startSession(c, &user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to start session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": "account created"})
}

// logOut deletes the current session. The response body is opaque to
// the client, which invalidates its cached session either way.
func (s *Server) logOut(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	s.endSession(c)
	c.JSON(http.StatusOK, gin.H{"ok": "bye"})
}

func (s *Server) githubLogIn(c *gin.Context) {
	s.socialLogIn(c, "github")
}

func (s *Server) kakaoLogIn(c *gin.Context) {
	s.socialLogIn(c, "kakao")
}

// socialLogIn stands in for the provider code exchange. In development
// any non-empty code mints (or re-uses) a provider-tagged account; the
// client only looks at the response status.
func (s *Server) socialLogIn(c *gin.Context, provider string) {
	var req SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	username := provider + "_" + shortHash(req.Code)

	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username: username,
			Name:     provider + " user",
			Provider: provider,
		}
		err = s.db.Create(&user).Error
	}
	if err != nil {
		s.logger.Error().Err(err).Str("provider", provider).Msg("Failed to resolve social user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := s.startSession(c, &user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to start session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusOK)
}

func shortHash(v string) string {
	sum := sha1.Sum([]byte(v))
	return hex.EncodeToString(sum[:4])
}
