package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/adnalow/next-level/internal/middleware"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/service"
	ws "github.com/adnalow/next-level/internal/websocket"
	"github.com/adnalow/next-level/pkg/response"
)

type ApplicationHandler struct {
	service   *service.ApplicationService
	validator *validator.Validate
	hub       *ws.Hub
}

func NewApplicationHandler(svc *service.ApplicationService, v *validator.Validate, hub *ws.Hub) *ApplicationHandler {
	return &ApplicationHandler{
		service:   svc,
		validator: v,
		hub:       hub,
	}
}

// Submit handles POST /api/applications
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var req model.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	app, err := h.service.Submit(c.Context(), middleware.ActorFromCtx(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	h.notify(ws.EventApplicationSubmitted, app)
	return response.Created(c, app)
}

// Mine handles GET /api/applications/mine
func (h *ApplicationHandler) Mine(c *fiber.Ctx) error {
	apps, err := h.service.ListByApplicant(c.Context(), middleware.ActorFromCtx(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, fiber.Map{"applications": apps})
}

// Get handles GET /api/applications/:id
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	app, err := h.service.Get(c.Context(), middleware.ActorFromCtx(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, app)
}

// ListByJob handles GET /api/jobs/:id/applications
func (h *ApplicationHandler) ListByJob(c *fiber.Ctx) error {
	apps, err := h.service.ListByJob(c.Context(), middleware.ActorFromCtx(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, fiber.Map{"applications": apps})
}

// Accept handles POST /api/applications/:id/accept
func (h *ApplicationHandler) Accept(c *fiber.Ctx) error {
	app, err := h.service.Accept(c.Context(), middleware.ActorFromCtx(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	h.notify(ws.EventApplicationAccepted, app)
	return response.OK(c, app)
}

// Decline handles POST /api/applications/:id/decline
func (h *ApplicationHandler) Decline(c *fiber.Ctx) error {
	var req model.DeclineApplicationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, "Invalid request body", nil)
		}
	}

	result, err := h.service.Decline(c.Context(), middleware.ActorFromCtx(c), c.Params("id"), req.AllowUndo)
	if err != nil {
		return writeError(c, err)
	}
	h.notify(ws.EventApplicationDeclined, result.Application)
	return response.OK(c, result)
}

// Undo handles POST /api/applications/:id/undo-decline
func (h *ApplicationHandler) Undo(c *fiber.Ctx) error {
	var req model.UndoDeclineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	app, err := h.service.Undo(c.Context(), middleware.ActorFromCtx(c), c.Params("id"), req.PreviousStatus)
	if err != nil {
		return writeError(c, err)
	}
	h.notify(ws.EventApplicationRestored, app)
	return response.OK(c, app)
}

// Complete handles POST /api/applications/:id/complete
func (h *ApplicationHandler) Complete(c *fiber.Ctx) error {
	result, err := h.service.Complete(c.Context(), middleware.ActorFromCtx(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	h.notify(ws.EventApplicationCompleted, result.Application)
	return response.OK(c, result)
}

func (h *ApplicationHandler) notify(eventType ws.JobEventType, app *model.Application) {
	if h.hub == nil || app == nil {
		return
	}
	h.hub.BroadcastJobEvent(ws.JobEvent{
		Type:          eventType,
		JobID:         app.JobID,
		ApplicationID: app.ID,
	})
}
