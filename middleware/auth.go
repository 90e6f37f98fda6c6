package middleware

import (
	"net/http"
	"strings"

	"facilities/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthServiceMiddleware admits calls carrying a valid service token and
// stores the token subject as "caller".
func JWTAuthServiceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		caller, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("caller", caller)
		c.Next()
	}
}
