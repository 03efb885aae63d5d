package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mealmart/mealmart/internal/models"
)

const tokenDuration = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid auth token")

type claims struct {
	jwt.RegisteredClaims
	Role    models.Role `json:"role"`
	ActorID string      `json:"actor_id"`
}

// AuthToken issues and verifies JWT auth tokens. Token issuance normally
// happens in the identity service; issuing here is used by tests and tooling.
type AuthToken struct {
	key []byte
}

// NewAuthToken creates new AuthToken instance with signing key
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

// CreateToken creates signed token for actor with role
func (t *AuthToken) CreateToken(role models.Role, actorID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		},
		Role:    role,
		ActorID: actorID,
	})

	return token.SignedString(t.key)
}

// VerifyToken verifies token string and extracts its payload
func (t *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	tokenClaims := claims{}

	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.TokenPayload{
		Role:    tokenClaims.Role,
		ActorID: tokenClaims.ActorID,
	}, nil
}
