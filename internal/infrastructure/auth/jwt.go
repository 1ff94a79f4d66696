// Package auth validates bearer tokens issued by the pharmacy account service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "pharmadesk/internal/core/context"
)

// Config holds JWT configuration.
type Config struct {
	Secret string
	Issuer string
	// TTL of tokens minted by IssueToken
	TTL time.Duration
}

// DefaultConfig returns the default configuration for secret.
func DefaultConfig(secret string) Config {
	return Config{
		Secret: secret,
		Issuer: "pharmadesk",
		TTL:    15 * time.Minute,
	}
}

// Claims are the token claims the server understands.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string   `json:"uid"`
	PharmacyID string   `json:"pharmacy_id"`
	Email      string   `json:"email,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	IsAdmin    bool     `json:"adm,omitempty"`
}

// JWTValidator checks HMAC-signed tokens.
type JWTValidator struct {
	config Config
	parser *jwt.Parser
}

// NewJWTValidator creates a validator. An empty issuer accepts any issuer.
func NewJWTValidator(config Config) *JWTValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	return &JWTValidator{config: config, parser: jwt.NewParser(opts...)}
}

// ValidateToken parses tokenString and returns the caller it identifies.
func (v *JWTValidator) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, errors.New("token has no subject")
	}

	return &appctx.UserContext{
		UserID:     userID,
		PharmacyID: claims.PharmacyID,
		Email:      claims.Email,
		Roles:      claims.Roles,
		IsAdmin:    claims.IsAdmin,
	}, nil
}

// IssueToken signs a token for user. Used by tooling and tests; production
// tokens come from the account service.
func (v *JWTValidator) IssueToken(user appctx.UserContext) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(v.config.TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.config.Issuer,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:     user.UserID,
		PharmacyID: user.PharmacyID,
		Email:      user.Email,
		Roles:      user.Roles,
		IsAdmin:    user.IsAdmin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}
