package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the claims carried by a service credential. The credential
// is scoped to exactly one local user account.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenGenerator mints short-lived service credentials for outbound calls
// to internal APIs. Credentials are created per call and never persisted.
type TokenGenerator struct {
	signingSecret []byte
	ttl           time.Duration
}

func NewTokenGenerator(signingSecret string, ttl time.Duration) *TokenGenerator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenGenerator{
		signingSecret: []byte(signingSecret),
		ttl:           ttl,
	}
}

// GenerateServiceToken mints an HS256 JWT scoped to userID.
func (tg *TokenGenerator) GenerateServiceToken(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "pharmatch-chatbot",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tg.signingSecret)
}

// ValidateServiceToken parses and validates a service credential.
func (tg *TokenGenerator) ValidateServiceToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tg.signingSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
