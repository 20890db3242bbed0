package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/adnalow/next-level/internal/middleware"
	"github.com/adnalow/next-level/internal/service"
	"github.com/adnalow/next-level/pkg/response"
)

const maxResumeSize = 10 * 1024 * 1024 // 10MB

type UploadHandler struct {
	service *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{
		service: svc,
	}
}

// Resume handles POST /api/uploads/resume
func (h *UploadHandler) Resume(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	if file.Size > maxResumeSize {
		return response.ValidationError(c, "File size exceeds 10MB limit", map[string]interface{}{
			"maxSize":  maxResumeSize,
			"fileSize": file.Size,
		})
	}

	name := strings.ToLower(file.Filename)
	if !strings.HasSuffix(name, ".pdf") && !strings.HasSuffix(name, ".doc") && !strings.HasSuffix(name, ".docx") {
		return response.ValidationError(c, "Resume must be a PDF or Word document", nil)
	}

	src, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	actor := middleware.ActorFromCtx(c)
	result, err := h.service.UploadResume(c.Context(), actor.UserID, file.Filename, src)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.Created(c, result)
}
