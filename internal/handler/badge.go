package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/adnalow/next-level/internal/badgeart"
	"github.com/adnalow/next-level/internal/middleware"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/service"
	"github.com/adnalow/next-level/pkg/response"
)

type BadgeHandler struct {
	service   *service.BadgeService
	validator *validator.Validate
}

func NewBadgeHandler(svc *service.BadgeService, v *validator.Validate) *BadgeHandler {
	return &BadgeHandler{
		service:   svc,
		validator: v,
	}
}

// ForJob handles GET /api/badges/job/:jobId
func (h *BadgeHandler) ForJob(c *fiber.Ctx) error {
	badge, err := h.service.GetForJob(c.Context(), c.Params("jobId"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, badge)
}

// Mine handles GET /api/badges/mine
func (h *BadgeHandler) Mine(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	badges, err := h.service.ListForUser(c.Context(), actor.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, fiber.Map{"badges": badges})
}

// Generate handles POST /api/badges/generate. It returns the artwork triple
// for the given job metadata: 200 with generated or fallback artwork when a
// reply was obtained (parseable or not), 500 when the generator itself was
// unreachable. Callers proceed with whatever payload is present and fall
// back client-side when svg is empty.
func (h *BadgeHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	meta := badgeart.Metadata{
		Title:       req.Title,
		Category:    string(req.Category),
		Description: req.Description,
		Skills:      req.Skills,
		Location:    req.Location,
	}
	art, usedFallback, err := h.service.GenerateArtwork(c.Context(), meta)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, model.GenerateBadgeResponse{
		Title:       art.Title,
		Description: art.Description,
		SVG:         art.SVG,
		Fallback:    usedFallback,
	})
}
