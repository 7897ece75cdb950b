package middleware

import (
	"carbon-market/internal/config"
	"carbon-market/internal/database"
	"carbon-market/internal/models"
	"carbon-market/internal/response"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userContextKey = "current_user"

// RequireAuth validates the bearer token and loads the acting account into
// the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Missing bearer token"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(config.AppConfig.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token subject"))
			c.Abort()
			return
		}

		// Role and existence are checked against the identity store, not the
		// token claim, so a role change takes effect immediately.
		var user models.User
		if err := database.GetDB().First(&user, uint(userID)).Error; err != nil {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Account not found"))
			c.Abort()
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// RequireCapability aborts the request unless the acting account's role
// grants the capability. Must run after RequireAuth.
func RequireCapability(cap models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
			c.Abort()
			return
		}
		if !user.Role.Has(cap) {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated account stored by RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(userContextKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
