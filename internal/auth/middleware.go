package auth

import (
	"errors"
	"net/http"
	"strings"

	"gymdesk/internal/api"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Fail(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			api.Fail(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			api.Fail(c, http.StatusUnauthorized, "Token is empty")
			c.Abort()
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				api.Fail(c, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, ErrInvalidTokenType):
				api.Fail(c, http.StatusUnauthorized, "Invalid token type")
			default:
				api.Fail(c, http.StatusUnauthorized, "Invalid or malformed token")
			}
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			api.Fail(c, http.StatusUnauthorized, "Access token required")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)

		c.Next()
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "User role not found")
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			api.Fail(c, http.StatusUnauthorized, "Invalid role type")
			c.Abort()
			return
		}

		for _, required := range requiredRoles {
			if roleStr == required {
				c.Next()
				return
			}
		}

		api.Fail(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get("user_role")
	if !exists {
		return "", false
	}

	roleStr, ok := role.(string)
	if !ok {
		return "", false
	}

	return roleStr, true
}
