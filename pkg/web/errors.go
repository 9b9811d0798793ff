package web

import (
	"log/slog"
	"strings"

	"github.com/dukex/pathway/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	return writeProblem(c, fiber.StatusBadRequest, "validation_error", detail)
}

func writeProblem(c fiber.Ctx, status int, problemType, detail string) error {
	problem := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(status).JSON(problem)
}

// problemType prefers the service error code, e.g. task_locked, over the generic type.
func problemType(err error, fallback string) string {
	if code := services.ErrorCode(err); code != "" {
		return strings.ToLower(code)
	}

	return fallback
}

// classify maps a service error to its HTTP status and problem type.
func classify(err error) (int, string) {
	switch {
	case services.IsValidationError(err):
		return fiber.StatusBadRequest, problemType(err, "validation_error")
	case services.IsNotFoundError(err):
		return fiber.StatusNotFound, "not_found"
	case services.IsConflictError(err):
		return fiber.StatusConflict, problemType(err, "conflict")
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}

// handleServiceError writes err as an RFC 7807 problem. Internal errors are logged
// and their detail is not exposed.
func handleServiceError(c fiber.Ctx, err error) error {
	status, kind := classify(err)

	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.Context(), "Request failed", "method", c.Method(), "path", c.Path(), "error", err)

		return writeProblem(c, status, kind, "internal server error")
	}

	return writeProblem(c, status, kind, err.Error())
}
