package middleware

import (
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/site"
	"github.com/gin-gonic/gin"
)

// SessionHeader is the request header the browser echoes its session id in.
const SessionHeader = "X-Aldiyar-Session-ID"

const sessionContextKey = "aldiyar_session"

// SessionMiddleware resolves the visitor session from the session header and
// stores it on the request context. Requests without a resolvable session are
// rejected; the visit endpoint stays outside this middleware so new visitors
// can mint an id first.
func SessionMiddleware(siteCtx *site.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "session ID required"})
			return
		}

		session, exists := siteCtx.CacheManager.GetSession(sessionID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown or expired session"})
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSessionState retrieves the resolved session from the request context.
func GetSessionState(c *gin.Context) (*types.SessionState, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*types.SessionState)
	return session, ok
}
