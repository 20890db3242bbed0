package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/adnalow/next-level/internal/apperr"
	"github.com/adnalow/next-level/pkg/response"
)

// writeError maps a domain error onto the HTTP error envelope.
func writeError(c *fiber.Ctx, err error) error {
	var partial *apperr.PartialError
	if errors.As(err, &partial) {
		return response.PartialFailure(c, partial.Message(), map[string]interface{}{
			"completedSteps": partial.Completed,
			"failedStep":     partial.Failed,
		})
	}

	msg := apperr.MessageOf(err)
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		return response.ValidationError(c, msg, nil)
	case apperr.CodeDuplicate:
		return response.DuplicateApplication(c, msg)
	case apperr.CodeInvalidTransition:
		return response.InvalidTransition(c, msg)
	case apperr.CodeNotFound:
		return response.NotFound(c, msg)
	case apperr.CodeForbidden:
		return response.Forbidden(c, msg)
	case apperr.CodeUnauthorized:
		return response.Unauthorized(c, msg)
	case apperr.CodeUpstream:
		return response.GenerationError(c, msg)
	default:
		return response.ServiceError(c, msg)
	}
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
