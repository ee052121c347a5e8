package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer   = "sonos-nowplaying"
	audience = "sonos-nowplaying-client"
)

// TokenPayload represents the validated payload data.
type TokenPayload struct {
	Sub        string
	ClientName string
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type tokenClaims struct {
	ClientName string `json:"clientName"`
	jwt.RegisteredClaims
}

// GenerateToken signs a bearer token for a display client or script.
func GenerateToken(secret string, payload TokenPayload, expiry time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("auth secret not configured")
	}
	now := time.Now()
	claims := tokenClaims{
		ClientName: payload.ClientName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Sub,
			Issuer:    issuer,
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken parses and validates the JWT.
func VerifyToken(secret, token string) (TokenPayload, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
	)

	claims := &tokenClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPayload{}, ErrTokenExpired
		}
		return TokenPayload{}, ErrTokenInvalid
	}
	if parsed == nil || !parsed.Valid {
		return TokenPayload{}, ErrTokenInvalid
	}

	payload := TokenPayload{
		Sub:        claims.Subject,
		ClientName: claims.ClientName,
	}
	if payload.Sub == "" {
		return TokenPayload{}, ErrTokenInvalid
	}
	return payload, nil
}
