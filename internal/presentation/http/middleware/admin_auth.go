package middleware

import (
	"net/http"
	"strings"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/gin-gonic/gin"
)

const adminEmailContextKey = "aldiyar_admin_email"

// AdminAuthMiddleware guards back-office routes with the admin JWT. The token
// is accepted from the Authorization header as a bearer token.
func AdminAuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		email, err := authService.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(adminEmailContextKey, email)
		c.Next()
	}
}

// GetAdminEmail retrieves the authenticated admin email from the request
// context.
func GetAdminEmail(c *gin.Context) (string, bool) {
	value, exists := c.Get(adminEmailContextKey)
	if !exists {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}
