package middleware

import (
	"net/http"

	"github.com/IV-YADOV/eternal-tick/auth"
	"github.com/gin-gonic/gin"
)

// ValidateToken requires a valid bearer token (user or guest) and puts the
// identity into the context.
func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		c.Abort()
		return
	}

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return
	}

	c.Set("user_id", claims["user_id"])
	c.Set("role", claims["role"])

	c.Next()
}

// OptionalToken parses the bearer token when present but lets anonymous
// requests through. Handlers treat a missing identity as "guest".
func OptionalToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString != "" {
		if claims, err := auth.ParseToken(tokenString); err == nil {
			c.Set("user_id", claims["user_id"])
			c.Set("role", claims["role"])
		}
	}
	c.Next()
}

// RequireUser rejects guest identities. Must run after ValidateToken.
func RequireUser(c *gin.Context) {
	if role, _ := c.Get("role"); role != auth.RoleUser {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account required"})
		c.Abort()
		return
	}
	c.Next()
}
