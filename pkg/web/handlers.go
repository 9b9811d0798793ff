// Package web provides HTTP handlers and REST API endpoints for onboarding and
// offboarding workflows.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/pathway/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Workflow      *services.Workflow
	Tasks         *services.Tasks
	Comments      *services.Comments
	Lifecycle     *services.Lifecycle
	Templates     *services.Templates
	Accounts      *services.Accounts
	Notifications *services.Notifications
	Users         *services.Users
}

// NewServices builds every service from the same options.
func NewServices(opts services.Options) Services {
	return Services{
		Workflow:      services.NewWorkflow(opts),
		Tasks:         services.NewTasks(opts),
		Comments:      services.NewComments(opts),
		Lifecycle:     services.NewLifecycle(opts),
		Templates:     services.NewTemplates(opts),
		Accounts:      services.NewAccounts(opts),
		Notifications: services.NewNotifications(opts),
		Users:         services.NewUsers(opts),
	}
}

type APIHandlers struct {
	services  Services
	validator *validator.Validate
}

func NewAPIHandlers(services Services, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		services:  services,
		validator: validator,
	}
}

// Routes registers every endpoint on router.
func (h *APIHandlers) Routes(router fiber.Router) {
	router.Get("/health", h.HealthCheck)

	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Get("/:id/board", h.GetBoard)
	w.Post("/:id/complete", h.CompleteWorkflow)
	w.Post("/:id/cancel", h.CancelWorkflow)
	w.Post("/:id/account/sync", h.SyncAccount)

	// Task endpoints:
	w.Patch("/:id/tasks/:taskId/status", h.UpdateTaskStatus)
	w.Put("/:id/tasks/:taskId/assignee", h.AssignTask)
	w.Put("/:id/tasks/:taskId/output", h.SetTaskOutput)
	w.Put("/:id/tasks/:taskId/due-date", h.SetTaskDueDate)
	w.Get("/:id/tasks/:taskId/comments", h.GetComments)
	w.Post("/:id/tasks/:taskId/comments", h.AddComment)
	w.Post("/:id/tasks/:taskId/comments/:commentId/replies", h.AddReply)

	t := router.Group("/templates")
	t.Get("/", h.GetTemplates)
	t.Post("/", h.CreateTemplate)
	t.Post("/import", h.ImportTemplate)
	t.Get("/:id", h.GetTemplate)
	t.Put("/:id", h.UpdateTemplate)
	t.Delete("/:id", h.DeleteTemplate)
	t.Post("/:id/instantiate", h.InstantiateTemplate)

	router.Get("/accounts", h.GetAccounts)
	router.Get("/accounts/:email", h.GetAccount)

	router.Get("/notifications", h.GetNotifications)
	router.Post("/notifications/:id/read", h.MarkNotificationRead)

	router.Get("/users", h.GetUsers)
	router.Post("/users", h.CreateUser)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.services.Workflow.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Pathway API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Pathway API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func actor(c fiber.Ctx) string {
	return c.Get(ActorHeader)
}
