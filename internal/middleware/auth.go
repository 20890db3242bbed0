package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/adnalow/next-level/internal/auth"
	"github.com/adnalow/next-level/pkg/response"
)

// AuthMiddleware handles session token authentication
type AuthMiddleware struct {
	verifier  auth.TokenVerifier
	jwtSecret string // fallback for HMAC-signed tokens
}

// NewAuthMiddleware creates a new auth middleware with JWKS verification
func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// NewAuthMiddlewareWithFallback creates auth middleware with both JWKS and HMAC support
func NewAuthMiddlewareWithFallback(verifier auth.TokenVerifier, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		jwtSecret: jwtSecret,
	}
}

// NewLegacyAuthMiddleware creates auth middleware using only HMAC signing (for testing/dev)
func NewLegacyAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the session token from the Authorization header and
// stores the resulting actor in locals.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		tokenString := parts[1]

		// Try JWKS verification first
		if m.verifier != nil {
			claims, err := m.verifier.Validate(tokenString)
			if err == nil {
				setActor(c, auth.Actor{UserID: claims.UserID, Email: claims.Email}, tokenString)
				return c.Next()
			}
			// If JWKS verification fails and no fallback, return error
			if m.jwtSecret == "" {
				return response.Unauthorized(c, "Invalid or expired token")
			}
		}

		// Fallback to HMAC verification
		if m.jwtSecret != "" {
			claims, err := auth.ValidateLegacyToken(tokenString, m.jwtSecret)
			if err != nil {
				return response.Unauthorized(c, "Invalid or expired token")
			}
			setActor(c, auth.Actor{UserID: claims.UserID, Email: claims.Email}, tokenString)
			return c.Next()
		}

		return response.Unauthorized(c, "Authentication not configured")
	}
}

func setActor(c *fiber.Ctx, actor auth.Actor, token string) {
	c.Locals("actor", actor)
	c.Locals("userId", actor.UserID)
	c.Locals("email", actor.Email)
	c.Locals("sessionToken", token)
}

// ActorFromCtx extracts the authenticated actor from locals. The zero actor
// means the request was not authenticated.
func ActorFromCtx(c *fiber.Ctx) auth.Actor {
	if actor, ok := c.Locals("actor").(auth.Actor); ok {
		return actor
	}
	return auth.Actor{}
}

// SessionToken returns the bearer token the actor authenticated with.
func SessionToken(c *fiber.Ctx) string {
	if token, ok := c.Locals("sessionToken").(string); ok {
		return token
	}
	return ""
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}
