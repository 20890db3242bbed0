package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/adnalow/next-level/internal/middleware"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/service"
	"github.com/adnalow/next-level/pkg/response"
)

type JobHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewJobHandler(svc *service.JobService, v *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/jobs
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req model.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	job, err := h.service.Create(c.Context(), middleware.ActorFromCtx(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.Created(c, job)
}

// List handles GET /api/jobs. Defaults to open jobs for browsing; ?status=
// narrows to another status.
func (h *JobHandler) List(c *fiber.Ctx) error {
	var (
		jobs []model.Job
		err  error
	)
	if status := c.Query("status"); status != "" {
		jobs, err = h.service.ListByStatus(c.Context(), model.JobStatus(status))
	} else {
		jobs, err = h.service.ListOpen(c.Context())
	}
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, fiber.Map{"jobs": jobs})
}

// Mine handles GET /api/jobs/mine
func (h *JobHandler) Mine(c *fiber.Ctx) error {
	jobs, err := h.service.ListByPoster(c.Context(), middleware.ActorFromCtx(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, fiber.Map{"jobs": jobs})
}

// Get handles GET /api/jobs/:id
func (h *JobHandler) Get(c *fiber.Ctx) error {
	job, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, job)
}

// SetStatus handles PATCH /api/jobs/:id/status
func (h *JobHandler) SetStatus(c *fiber.Ctx) error {
	var req model.SetJobStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	job, err := h.service.SetStatus(c.Context(), middleware.ActorFromCtx(c), c.Params("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, job)
}
