package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/env"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func accessSecret() []byte {
	return []byte(env.GetEnv("JWT_SECRET", ""))
}

func refreshSecret() []byte {
	return []byte(env.GetEnv("REFRESH_TOKEN_SECRET", ""))
}

// GenerateAccessToken issues a short-lived signed access token for the user.
func GenerateAccessToken(userID uint, email string) (string, error) {
	return sign(userID, email, AccessTokenTTL, accessSecret())
}

// GenerateRefreshToken issues a longer-lived refresh token signed with the
// refresh secret so access tokens can never pass as refresh tokens.
func GenerateRefreshToken(userID uint, email string) (string, error) {
	return sign(userID, email, RefreshTokenTTL, refreshSecret())
}

func sign(userID uint, email string, ttl time.Duration, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccessToken validates a bearer access token. Verification is pure and
// side-effect free so it is safe to call on every request.
func VerifyAccessToken(tokenString string) (*Claims, error) {
	return verify(tokenString, accessSecret())
}

// VerifyRefreshToken validates a refresh token against the refresh secret.
func VerifyRefreshToken(tokenString string) (*Claims, error) {
	return verify(tokenString, refreshSecret())
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("JWT secret not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
