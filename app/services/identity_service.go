// Package services provides external service integrations and technical concerns like identity, eligibility and storage
package services

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/amirphl/Eligibility-Roster/roster"
)

// Identity service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// revokedTokenKeyPrefix namespaces revoked token ids in Redis
const revokedTokenKeyPrefix = "revoked_token:"

// IdentityService verifies staff bearer tokens issued by the external identity provider
type IdentityService interface {
	ValidateToken(ctx context.Context, token string) (*IdentityClaims, error)
	IsTokenRevoked(ctx context.Context, tokenID string) bool
}

// IdentityClaims represents the staff identity carried by a bearer token
type IdentityClaims struct {
	StaffID       string    `json:"sub"`
	DisplayName   string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	TokenID       string    `json:"jti"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Actor converts the claims into the identity stamped on roster and lookup operations
func (c *IdentityClaims) Actor() roster.Actor {
	return roster.Actor{
		ID:          c.StaffID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		Verified:    c.EmailVerified,
	}
}

// IdentityServiceImpl implements IdentityService
type IdentityServiceImpl struct {
	publicKey  *rsa.PublicKey
	secretKey  []byte
	useRSAKeys bool
	issuer     string
	audience   string
	redis      *redis.Client
}

// NewIdentityService creates a token verifier. The redis client is optional and backs the
// revocation list.
func NewIdentityService(issuer, audience string, useRSAKeys bool, publicKeyPEM, secretKey string, rc *redis.Client) (IdentityService, error) {
	s := &IdentityServiceImpl{
		useRSAKeys: useRSAKeys,
		issuer:     issuer,
		audience:   audience,
		redis:      rc,
	}

	if useRSAKeys {
		publicKey, err := parseRSAPublicKey(publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		s.publicKey = publicKey
	} else {
		if secretKey == "" {
			return nil, fmt.Errorf("secret key is required when not using RSA keys")
		}
		s.secretKey = []byte(secretKey)
	}

	return s, nil
}

// parseRSAPublicKey parses an RSA public key from PEM format
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	if publicKeyPEM == "" {
		return nil, fmt.Errorf("public key is required")
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to decode public key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not RSA")
	}

	return rsaPublicKey, nil
}

// ValidateToken validates a JWT token and returns the staff identity
func (s *IdentityServiceImpl) ValidateToken(ctx context.Context, token string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.useRSAKeys {
		opts = append(opts, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}))
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if s.useRSAKeys {
			return s.publicKey, nil
		}
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	staffID, err := claims.GetSubject()
	if err != nil || staffID == "" {
		return nil, ErrTokenInvalid
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, ErrTokenInvalid
	}

	identity := &IdentityClaims{
		StaffID:   staffID,
		ExpiresAt: expiresAt.Time,
	}
	if issuedAt, err := claims.GetIssuedAt(); err == nil && issuedAt != nil {
		identity.IssuedAt = issuedAt.Time
	}
	identity.DisplayName, _ = claims["name"].(string)
	identity.Email, _ = claims["email"].(string)
	identity.EmailVerified, _ = claims["email_verified"].(bool)
	identity.TokenID, _ = claims["jti"].(string)

	if identity.DisplayName == "" && identity.Email == "" {
		return nil, ErrTokenInvalid
	}

	if identity.TokenID != "" && s.IsTokenRevoked(ctx, identity.TokenID) {
		return nil, ErrTokenRevoked
	}

	return identity, nil
}

// IsTokenRevoked checks the revocation list. Without a Redis client nothing is revoked; a
// failing Redis lookup is treated as not revoked.
func (s *IdentityServiceImpl) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	if s.redis == nil || tokenID == "" {
		return false
	}
	n, err := s.redis.Exists(ctx, revokedTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return n > 0
}
