package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/devconnector-go/config"
)

// TokenUser is the identity embedded in a session token.
type TokenUser struct {
	ID string `json:"id"`
}

// Claims is the JWT payload: `{"user":{"id":...},"iat":...,"exp":...}`.
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (*Claims, error)
}

// JWTIssuer implements TokenIssuer with HS256 and a secret injected at construction.
type JWTIssuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewJWTIssuer creates an issuer from the auth configuration.
func NewJWTIssuer(cfg config.AuthConfig) (*JWTIssuer, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if cfg.TokenDuration <= 0 {
		return nil, fmt.Errorf("token duration must be positive, got %s", cfg.TokenDuration)
	}
	return &JWTIssuer{
		secret:   []byte(cfg.JWTSecret),
		duration: cfg.TokenDuration,
		now:      time.Now,
	}, nil
}

// Issue returns a signed token for userID that expires after the configured duration.
func (i *JWTIssuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := &Claims{
		User: TokenUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry of token and returns its claims.
func (i *JWTIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.User.ID == "" {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}
