package middleware

import (
	"net/http"
	"strings"

	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired resolves the bearer token into a user id on the context.
// Every /api route runs behind it; operations without a resolved identity
// never reach a handler.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			// WebSocket clients can't set headers; allow ?token= there.
			header = "Bearer " + c.Query("token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing or malformed authorization header",
			})
			return
		}

		userID, err := utils.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
