package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleGuest = "guest"

	sessionTTL = 30 * 24 * time.Hour
	loginTTL   = 10 * time.Minute
)

// IssueSessionToken signs a long-lived session JWT for an authenticated user.
func IssueSessionToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    RoleUser,
		"exp":     time.Now().Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// issueLoginToken signs the short-lived deep-link token handed to the chat bot.
func issueLoginToken(userID, tgID string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"tg_id": tgID,
		"exp":   time.Now().Add(loginTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
