package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reelgate/reelgate/internal/accountcontext"
	obscontext "github.com/reelgate/reelgate/internal/observability/context"
)

const (
	sessionCookieName   = "reelgate_session"
	contextAccountIDKey = "account_id"
	contextIsAdminKey   = "is_admin"
)

// AuthRequired authenticates the session cookie and stores the account id on
// both the gin context and the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookieName)
		if err != nil || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		accountID := int64(session.AccountID)
		c.Set(contextAccountIDKey, accountID)

		ctx := accountcontext.WithAccountID(c.Request.Context(), accountID)
		ctx = obscontext.WithActorID(ctx, session.AccountID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin gates a route on the authenticated account's admin flag. It
// must run after AuthRequired.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetInt64(contextAccountIDKey)
		if accountID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		var record struct {
			IsAdmin bool `gorm:"column:is_admin"`
		}
		if err := s.db.WithContext(c.Request.Context()).Raw(
			`SELECT is_admin FROM accounts WHERE id = ?`, accountID,
		).Scan(&record).Error; err != nil {
			AbortWithError(c, err)
			return
		}
		if !record.IsAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}

		c.Set(contextIsAdminKey, true)
		c.Next()
	}
}

func sessionAccountID(c *gin.Context) int64 {
	return c.GetInt64(contextAccountIDKey)
}

func (s *Server) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
}
