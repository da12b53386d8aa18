package middleware

import (
	"net/http"
	"strings"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "userID"
	ctxEmail     = "email"
	ctxAuthError = "authError"
)

// Identify reads an optional bearer token. A valid access token puts the
// caller's id and email into the context; anything else leaves the request
// anonymous and records why, so RequireAuth can report it.
func Identify(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identify(c, tokenService)
		c.Next()
	}
}

func identify(c *gin.Context, tokenService *services.TokenService) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return
	}

	// "Bearer " 제거
	scheme, tokenString, ok := strings.Cut(header, " ")
	tokenString = strings.TrimSpace(tokenString)
	if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
		c.Set(ctxAuthError, common.ErrTokenMalformed)
		return
	}

	claims, err := tokenService.VerifyToken(tokenString)
	if err != nil {
		c.Set(ctxAuthError, err)
		return
	}
	if claims.Type != services.TokenTypeAccess {
		c.Set(ctxAuthError, common.ErrTokenInvalid)
		return
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
}

// RequireAuth rejects anonymous requests with 401. It must run after Identify.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); ok {
			c.Next()
			return
		}

		err := common.ErrTokenMissing
		if v, exists := c.Get(ctxAuthError); exists {
			if e, ok := v.(error); ok {
				err = e
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	}
}

// AuthMiddleware is Identify followed by RequireAuth, for groups that are
// authenticated as a whole.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	require := RequireAuth()
	return func(c *gin.Context) {
		identify(c, tokenService)
		require(c)
	}
}

// CurrentUserID returns the authenticated caller, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func CurrentEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}
