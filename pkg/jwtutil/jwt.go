package jwtutil

import (
	"time"

	"catalog-service/internal/model"
	"catalog-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	signingKey = []byte("catalogservicesecretkey")
	expiration = 24 * time.Hour
)

// Initialize sets the signing key and token lifetime from configuration.
// Must be called once at startup before tokens are issued or validated.
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	expiration = time.Duration(cfg.ExpirationHours) * time.Hour
}

// Expiration returns the configured token lifetime.
func Expiration() time.Duration {
	return expiration
}

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Email  string         `json:"email"`
	UserID uint           `json:"user_id"`
	Role   model.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT carrying the user's identity and role.
func GenerateToken(userID uint, email string, role model.UserRole) (string, error) {
	claims := UserClaims{
		Email:  email,
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
