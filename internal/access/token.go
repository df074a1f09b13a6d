package access

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic-practice-server/internal/models"
)

// Claims represents the JWT claims. Subject carries the user's email so a
// verified token can be re-resolved against the identity store.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an access token for the user with an absolute expiry.
func IssueToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ParseToken validates a JWT token. Expired, malformed and bad-signature
// tokens each fail with a distinct message, all under KindUnauthenticated.
func ParseToken(tokenString string, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, Unauthenticated("token has expired")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, Unauthenticated("malformed token")
	default:
		return nil, Unauthenticated("invalid token")
	}

	if !token.Valid {
		return nil, Unauthenticated("invalid token")
	}

	return claims, nil
}
