package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/openpan/drive-service/config"
	"github.com/openpan/drive-service/utils"
)

// AuthMiddleware validates the access token and injects user_id plus the
// capability list into the request context.
func AuthMiddleware(cfg *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractToken(c)
		if tokenString == "" {
			utils.JSON401(c, "Missing access token")
			c.Abort()
			return
		}

		token, err := utils.ParseToken(tokenString, cfg)
		if err != nil || !token.Valid {
			utils.JSON401(c, "Invalid access token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.JSON401(c, "Invalid token claims")
			c.Abort()
			return
		}

		if err := utils.InjectClaimsToContext(c, claims); err != nil {
			utils.JSON401(c, err.Error())
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireCapability gates a route group on one entry of the token's
// space-separated capability list.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.HasCapability(c, capability) {
			utils.JSON403(c, "Missing required capability: "+capability)
			c.Abort()
			return
		}
		c.Next()
	}
}
