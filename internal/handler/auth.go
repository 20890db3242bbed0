package handler

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/adnalow/next-level/internal/auth"
	"github.com/adnalow/next-level/internal/client"
	"github.com/adnalow/next-level/internal/middleware"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/pkg/response"
)

const mockSessionTTL = 24 * time.Hour

// AuthHandler proxies account operations to the external auth provider. When
// no provider is configured it mints local HMAC sessions so the rest of the
// API stays usable in development.
type AuthHandler struct {
	authClient *client.AuthClient
	jwtSecret  string
	validator  *validator.Validate
}

func NewAuthHandler(authClient *client.AuthClient, jwtSecret string, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		authClient: authClient,
		jwtSecret:  jwtSecret,
		validator:  v,
	}
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req model.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if h.authClient == nil || !h.authClient.IsConfigured() {
		return h.mockSession(c, req.Email)
	}

	session, err := h.authClient.SignUp(c.Context(), req.Email, req.Password)
	if err != nil {
		return response.ServiceError(c, "Failed to sign up")
	}
	return response.Created(c, session)
}

// SignIn handles POST /auth/signin
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req model.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if h.authClient == nil || !h.authClient.IsConfigured() {
		return h.mockSession(c, req.Email)
	}

	session, err := h.authClient.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return response.Unauthorized(c, "Invalid credentials")
	}
	return response.OK(c, session)
}

// Session handles GET /auth/session. With a configured provider the account
// is looked up there; otherwise the token claims are echoed back.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if h.authClient != nil && h.authClient.IsConfigured() {
		user, err := h.authClient.GetUser(c.Context(), middleware.SessionToken(c))
		if err == nil {
			return response.OK(c, user)
		}
		log.Printf("Auth provider session lookup failed, using token claims: %v", err)
	}
	return response.OK(c, client.AuthUser{
		ID:    actor.UserID,
		Email: actor.Email,
	})
}

func (h *AuthHandler) mockSession(c *fiber.Ctx, email string) error {
	log.Println("Auth provider not configured, using mock session")

	userID := uuid.New().String()
	token, err := auth.SignLegacyToken(userID, email, h.jwtSecret, mockSessionTTL)
	if err != nil {
		return response.ServiceError(c, "Failed to create session")
	}
	return response.OK(c, client.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(mockSessionTTL.Seconds()),
		User: client.AuthUser{
			ID:    userID,
			Email: email,
		},
	})
}
