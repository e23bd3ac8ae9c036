package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"kodechat/internal/pkg/sessiontoken"
	"kodechat/internal/transport/http/response"
)

const (
	ContextEmailKey = "session_email"
	ContextNameKey  = "session_name"
)

// SessionAPI resolves the signed session for API routes. Missing or invalid
// sessions get a 401 JSON body; the page-mode redirect lives in SessionPage.
func SessionAPI(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := resolveSession(c, secret, cookieName)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, response.MsgUnauthorized)
			return
		}

		c.Set(ContextEmailKey, claims.Email)
		c.Set(ContextNameKey, claims.Name)
		c.Next()
	}
}

// SessionPage resolves the session for page navigations. Unauthenticated
// visitors are redirected to the login page with a callback back to the
// page they asked for.
func SessionPage(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := resolveSession(c, secret, cookieName)
		if !ok {
			callback := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/login?callbackUrl="+callback)
			c.Abort()
			return
		}

		c.Set(ContextEmailKey, claims.Email)
		c.Set(ContextNameKey, claims.Name)
		c.Next()
	}
}

// resolveSession accepts the session cookie or an Authorization bearer token.
func resolveSession(c *gin.Context, secret, cookieName string) (*sessiontoken.Claims, bool) {
	raw := ""
	if cookie, err := c.Cookie(cookieName); err == nil {
		raw = cookie
	}
	if raw == "" {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if strings.HasPrefix(authHeader, prefix) {
			raw = strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		}
	}
	if raw == "" {
		return nil, false
	}

	claims, err := sessiontoken.Parse(secret, raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// SessionEmail returns the authenticated email placed by the session middleware.
func SessionEmail(c *gin.Context) (string, bool) {
	emailAny, exists := c.Get(ContextEmailKey)
	if !exists {
		return "", false
	}
	email, ok := emailAny.(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

// SessionName returns the optional display name from the session, if any.
func SessionName(c *gin.Context) string {
	nameAny, exists := c.Get(ContextNameKey)
	if !exists {
		return ""
	}
	name, _ := nameAny.(string)
	return name
}
