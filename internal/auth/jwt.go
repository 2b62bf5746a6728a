// Package auth issues and validates the HS256 service tokens that guard the
// admin endpoints. There are no user accounts; callers hold a shared secret.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 24 * time.Hour

func GenerateServiceToken(secret, subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateServiceToken returns the token subject if the token is valid.
func ValidateServiceToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		subject, _ := claims["sub"].(string)
		if subject == "" {
			return "", fmt.Errorf("token has no subject")
		}
		return subject, nil
	}

	return "", fmt.Errorf("invalid token")
}
