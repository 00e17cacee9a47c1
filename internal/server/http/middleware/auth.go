package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	pkgAuth "github.com/polkiloo/pdfshop/internal/pkg/auth"
)

const (
	// SubjectContextKey is a gin context key for the authenticated token subject.
	SubjectContextKey = "subject"
	authCookieName    = "pdfshop_admin_token"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// AdminRequired rejects requests without a valid admin token.
func AdminRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		subject, err := parser.ParseToken(token)
		if err != nil {
			switch {
			case errors.Is(err, domainErrors.ErrForbidden):
				c.AbortWithStatus(http.StatusForbidden)
			case errors.Is(err, pkgAuth.ErrInvalidToken):
				c.AbortWithStatus(http.StatusUnauthorized)
			default:
				c.AbortWithStatus(http.StatusInternalServerError)
			}
			return
		}

		c.Set(SubjectContextKey, subject)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/api/admin", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
