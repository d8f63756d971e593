package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/workhubhq/presence-gateway/config"
	"github.com/workhubhq/presence-gateway/internal/domain"
)

// Authenticator verifies the signed credential presented at connection or
// request time and extracts the caller's identity from its claims.
type Authenticator struct {
	conf config.JWTConfig
}

func NewAuthenticator(conf config.JWTConfig) *Authenticator {
	return &Authenticator{conf: conf}
}

// Verify parses and validates a token and returns the identity it carries.
// Callers must not forward the returned error to clients; admission
// failures are reported uniformly regardless of cause.
func (a *Authenticator) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrTokenMissing
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnexpectedSignature
		}
		return []byte(a.conf.Secret), nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return domain.Identity{}, ErrTokenInvalid
	}

	userID, ok := claims["userId"].(float64)
	if !ok {
		return domain.Identity{}, ErrTokenInvalidClaims
	}

	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)

	role := domain.Role(roleStr)
	if role != domain.RoleAdmin && role != domain.RoleEmployee {
		return domain.Identity{}, ErrTokenInvalidClaims
	}

	return domain.Identity{
		UserID: int64(userID),
		Email:  email,
		Role:   role,
	}, nil
}

// Generate signs an identity token. The credential issuer lives outside
// this service; this mirrors its claim layout for tools and tests.
func (a *Authenticator) Generate(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": identity.UserID,
		"email":  identity.Email,
		"role":   string(identity.Role),
		"iat":    now.Unix(),
		"exp":    now.Add(a.conf.Expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.conf.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
