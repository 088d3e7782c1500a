// Package auth provides optional JWT bearer authentication for the tool
// endpoints. When disabled every request passes through untouched.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const SubjectContextKey ContextKey = "subject"

// Claims carried by issued tokens.
type Claims struct {
	Subject string `json:"sub_name"`
	jwt.RegisteredClaims
}

// TokenResponse is returned by the token exchange endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}

type Config struct {
	JwtSecret []byte
	APIKey    string
	Enabled   bool
	TokenTTL  time.Duration
}

var authConfig *Config

// Initialize sets up the auth configuration
func Initialize(jwtSecret, apiKey string, enabled bool) {
	authConfig = &Config{
		JwtSecret: []byte(jwtSecret),
		APIKey:    apiKey,
		Enabled:   enabled,
		TokenTTL:  24 * time.Hour,
	}
}

// IsEnabled returns whether authentication is enabled
func IsEnabled() bool {
	return authConfig != nil && authConfig.Enabled
}

// ExchangeAPIKey validates the presented key and mints a signed token.
func ExchangeAPIKey(key, subject string) (string, error) {
	if authConfig == nil {
		return "", errors.New("auth not initialized")
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(authConfig.APIKey)) != 1 {
		return "", errors.New("invalid api key")
	}
	if subject == "" {
		subject = "api-client"
	}

	claims := Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(authConfig.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "movieagent",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(authConfig.JwtSecret)
}

// ValidateJWT parses and verifies a token, returning the subject.
func ValidateJWT(tokenString string) (string, error) {
	if authConfig == nil {
		return "", errors.New("auth not initialized")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return authConfig.JwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

// OptionalAuthMiddleware enforces bearer auth only when auth is enabled.
func OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IsEnabled() {
			next(w, r)
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			http.Error(w, "No authentication token", http.StatusUnauthorized)
			return
		}

		subject, err := ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SubjectContextKey, subject)
		next(w, r.WithContext(ctx))
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}
