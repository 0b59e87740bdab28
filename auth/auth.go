// Package auth provides JWT token generation and validation for the
// dashboard API surface.
package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Config holds JWT configuration.
type Config struct {
	// Secret is the HMAC signing secret.
	Secret string `mapstructure:"secret"`
	// Issuer is the expected token issuer.
	Issuer string `mapstructure:"issuer"`
	// AccessTokenTTL is the lifetime of issued tokens.
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "voiceapi"
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 24 * time.Hour
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("auth secret is required")
	}
	return nil
}

// Claims are the token claims carried by dashboard sessions.
type Claims struct {
	gojwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Service generates and validates dashboard tokens.
type Service struct {
	cfg Config
}

// NewService creates a JWT service.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Generate creates a signed access token for the given user.
func (s *Service) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
		UserID: userID,
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims,
		func(t *gojwt.Token) (interface{}, error) {
			if t.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("auth: unexpected signing method: %s", t.Method.Alg())
			}
			return []byte(s.cfg.Secret), nil
		},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}
