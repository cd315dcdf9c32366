// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/app/services"
	"github.com/amirphl/Eligibility-Roster/roster"
)

// Locals keys set by Authenticate
const (
	LocalActor     = "actor"
	LocalSession   = "session"
	LocalTokenID   = "token_id"
	LocalRequestID = "request_id"
)

const tokenValidationTimeout = 5 * time.Second

// AuthMiddleware resolves the staff identity of a request and binds it to a roster session
type AuthMiddleware struct {
	identity services.IdentityService
	sessions *roster.SessionRegistry
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(identity services.IdentityService, sessions *roster.SessionRegistry) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
		sessions: sessions,
	}
}

// Authenticate validates the bearer token and stores the actor and its session in Locals
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
		}

		ctx, cancel := context.WithTimeout(context.Background(), tokenValidationTimeout)
		defer cancel()
		claims, err := m.identity.ValidateToken(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenRevoked):
				return unauthorized(c, "Access token has been revoked", "TOKEN_REVOKED")
			case errors.Is(err, services.ErrTokenInvalid):
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			default:
				return unauthorized(c, "Token validation failed", "TOKEN_VALIDATION_FAILED")
			}
		}

		actor := claims.Actor()
		c.Locals(LocalActor, actor)
		c.Locals(LocalTokenID, claims.TokenID)
		if m.sessions != nil {
			c.Locals(LocalSession, m.sessions.Get(actor))
		}
		if requestID := requestid.FromContext(c); requestID != "" {
			c.Locals(LocalRequestID, requestID)
		}
		return c.Next()
	}
}

// RequireVerified rejects actors whose email address is not verified. It must run after
// Authenticate.
func (m *AuthMiddleware) RequireVerified() fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := ActorFromCtx(c)
		if !ok {
			return unauthorized(c, "Authentication required", "MISSING_IDENTITY")
		}
		if !actor.Verified {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Email address must be verified",
				Error:   dto.ErrorDetail{Code: "EMAIL_NOT_VERIFIED"},
			})
		}
		return c.Next()
	}
}

// ActorFromCtx returns the actor stored by Authenticate
func ActorFromCtx(c fiber.Ctx) (roster.Actor, bool) {
	actor, ok := c.Locals(LocalActor).(roster.Actor)
	return actor, ok
}

// SessionFromCtx returns the roster session stored by Authenticate
func SessionFromCtx(c fiber.Ctx) *roster.Session {
	session, _ := c.Locals(LocalSession).(*roster.Session)
	return session
}

func unauthorized(c fiber.Ctx, message, code string) error {
	authFailuresTotal.WithLabelValues(code).Inc()
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}
