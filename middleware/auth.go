package middleware

import (
	"net/http"
	"strings"

	"go-splendor/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验 Authorization: Bearer <token>，通过后把 userID 放进上下文
func AuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "令牌无效"})
			return
		}
		c.Set("userID", claims.UserID)
		c.Next()
	}
}
