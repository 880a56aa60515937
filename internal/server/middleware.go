package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roomly-dev/roomly/internal/auth"
	"github.com/roomly-dev/roomly/internal/models"
)

const (
	csrfCookieName    = "csrftoken"
	csrfHeaderName    = "X-CSRFToken"
	sessionCookieName = "sessionid"

	csrfCookieMaxAge = 365 * 24 * 3600
	sessionLifetime  = 14 * 24 * time.Hour

	userContextKey = "user"
)

// csrfMiddleware implements the double-submit check: every response
// carries a csrftoken cookie, and every unsafe request must echo it in
// the X-CSRFToken header.
func (s *Server) csrfMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(csrfCookieName)
		if err != nil || token == "" {
			token, err = auth.NewToken()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			// Not HttpOnly: the browser client reads this cookie to
			// build the header.
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(csrfCookieName, token, csrfCookieMaxAge, "/", "", false, false)
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			// Safe methods are never checked
		default:
			if c.GetHeader(csrfHeaderName) != token {
				s.logger.Warn().
					Str("path", c.Request.URL.Path).
					Msg("CSRF token missing or incorrect")
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token missing or incorrect"})
				return
			}
		}

		c.Next()
	}
}

// sessionMiddleware resolves the sessionid cookie to a user and stores
// it on the request context. An invalid or expired session is simply an
// anonymous request, not an error.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		var session models.Session
		err = s.db.Preload("User").Where("token = ?", token).First(&session).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error().Err(err).Msg("Failed to load session")
			}
			c.Next()
			return
		}

		if session.Expired() {
			s.db.Delete(&session)
			c.Next()
			return
		}

		c.Set(userContextKey, &session.User)
		c.Next()
	}
}

// currentUser returns the authenticated user for the request, if any
func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// startSession opens a new session for the user and sets the cookie
func (s *Server) startSession(c *gin.Context, user *models.User) error {
	token, err := auth.NewToken()
	if err != nil {
		return err
	}

	session := models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(sessionLifetime),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, int(sessionLifetime.Seconds()), "/", "", false, true)
	return nil
}

// endSession deletes the current session and clears the cookie
func (s *Server) endSession(c *gin.Context) {
	if token, err := c.Cookie(sessionCookieName); err == nil && token != "" {
		s.db.Where("token = ?", token).Delete(&models.Session{})
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}
