package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims are the identity claims carried by an access token.
type Claims struct {
	Role       string `json:"role"`
	Email      string `json:"email,omitempty"`
	HospitalID string `json:"hospital_id,omitempty"`
	jwt.RegisteredClaims
}

// PrincipalID is the token subject.
func (c *Claims) PrincipalID() string {
	return c.Subject
}

// Authenticator verifies a credential and returns its claims. The
// authorization layer trusts the returned claims without re-validation.
type Authenticator interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type Config struct {
	Secret      string        `mapstructure:"secret" validate:"required,min=16"`
	Issuer      string        `mapstructure:"issuer"`
	ExpiryHours int           `mapstructure:"expiry_hours"`
	Leeway      time.Duration `mapstructure:"leeway"`
}

// JWTService issues and verifies HS256 access tokens.
type JWTService struct {
	secret []byte
	issuer string
	expiry time.Duration
	leeway time.Duration
}

func NewJWTService(cfg Config) *JWTService {
	expiry := time.Duration(cfg.ExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		expiry: expiry,
		leeway: cfg.Leeway,
	}
}

// GenerateAccessToken signs a token for the given identity.
func (s *JWTService) GenerateAccessToken(principalID, role, email, hospitalID string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:       role,
		Email:      email,
		HospitalID: hospitalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *JWTService) Verify(_ context.Context, token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}
	return claims, nil
}
