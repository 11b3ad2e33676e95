package middleware

import (
	"net/http"
	"strings"

	"nimbusdrive/services"
	"nimbusdrive/utils"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the raw session token.
const SessionCookieName = "session_token"

// Context keys populated on authenticated requests.
const (
	ContextUserID    = "userId"
	ContextPrincipal = "principal"
	ContextUserName  = "userName"
)

// AuthMiddleware resolves the request's credential to a principal. Browser
// clients present the session cookie; API clients may present a Bearer
// access token instead.
func AuthMiddleware(authService *services.AuthService, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
			user, err := authService.ResolveSession(c.Request.Context(), token)
			if err == nil {
				c.Set(ContextUserID, user.ID.Hex())
				c.Set(ContextPrincipal, user.Email)
				c.Set(ContextUserName, user.Name)
				c.Next()
				return
			}
		}

		if bearer := extractBearerToken(c); bearer != "" {
			claims, err := utils.VerifyAccessToken(bearer, jwtSecret)
			if err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextPrincipal, claims.Email)
				c.Set(ContextUserName, claims.Name)
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		c.Abort()
	}
}

// AttachUser is the non-enforcing variant: it populates the principal when a
// valid credential is present and lets the request through either way. It
// accepts the same credentials as AuthMiddleware, session cookie first and
// Bearer access token second.
func AttachUser(authService *services.AuthService, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
			if user, err := authService.ResolveSession(c.Request.Context(), token); err == nil {
				c.Set(ContextUserID, user.ID.Hex())
				c.Set(ContextPrincipal, user.Email)
				c.Set(ContextUserName, user.Name)
				c.Next()
				return
			}
		}

		if bearer := extractBearerToken(c); bearer != "" {
			if claims, err := utils.VerifyAccessToken(bearer, jwtSecret); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextPrincipal, claims.Email)
				c.Set(ContextUserName, claims.Name)
			}
		}

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}
