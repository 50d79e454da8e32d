// README: Bearer-token auth; verified sessions are stored on the gin context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"privatehire/internal/infra"
	"privatehire/internal/types"
)

const sessionKey = "session"

// Auth rejects requests without a verifiable "Authorization: Bearer <token>" header.
// Browsers cannot set headers on websocket upgrades, so a "token" query parameter is
// accepted as well.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		sess, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil || sess == nil || sess.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(sessionKey, *sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}
	return c.Query("token")
}

// CallerSession returns the session set by Auth.
func CallerSession(c *gin.Context) types.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return types.Session{}
	}
	sess, _ := v.(types.Session)
	return sess
}

func CallerUID(c *gin.Context) types.ID {
	return CallerSession(c).UID
}

func CallerRole(c *gin.Context) string {
	return CallerSession(c).Role
}
