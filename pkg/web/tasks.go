package web

import (
	"github.com/dukex/pathway/pkg/models"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) UpdateTaskStatus(c fiber.Ctx) error {
	var req UpdateTaskStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	task, err := h.services.Tasks.UpdateStatus(c.Context(), c.Params("id"), c.Params("taskId"), models.TaskStatus(req.Status), actor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) AssignTask(c fiber.Ctx) error {
	var req AssignTaskRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	task, err := h.services.Tasks.Assign(c.Context(), c.Params("id"), c.Params("taskId"), req.UserID, actor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) SetTaskOutput(c fiber.Ctx) error {
	var output models.TaskOutput
	if err := c.Bind().JSON(&output); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	task, err := h.services.Tasks.SetOutput(c.Context(), c.Params("id"), c.Params("taskId"), &output, actor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) SetTaskDueDate(c fiber.Ctx) error {
	var req SetDueDateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	task, err := h.services.Tasks.SetDueDate(c.Context(), c.Params("id"), c.Params("taskId"), req.DueDate, actor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) GetComments(c fiber.Ctx) error {
	comments, err := h.services.Comments.List(c.Context(), c.Params("id"), c.Params("taskId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(comments)
}

func (h *APIHandlers) AddComment(c fiber.Ctx) error {
	return h.addComment(c, "")
}

func (h *APIHandlers) AddReply(c fiber.Ctx) error {
	return h.addComment(c, c.Params("commentId"))
}

func (h *APIHandlers) addComment(c fiber.Ctx, parentID string) error {
	var req AddCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	author := h.commentAuthor(c, req.Author)

	var (
		comment *models.Comment
		err     error
	)

	if parentID == "" {
		comment, err = h.services.Comments.AddComment(c.Context(), c.Params("id"), c.Params("taskId"), req.Text, author)
	} else {
		comment, err = h.services.Comments.AddReply(c.Context(), c.Params("id"), c.Params("taskId"), parentID, req.Text, author)
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// commentAuthor falls back to the directory entry of the acting user.
func (h *APIHandlers) commentAuthor(c fiber.Ctx, given *models.CommentAuthor) models.CommentAuthor {
	if given != nil && given.ID != "" {
		return *given
	}

	actorID := actor(c)
	if actorID == "" {
		return models.CommentAuthor{}
	}

	user, err := h.services.Users.FetchByID(c.Context(), actorID)
	if err != nil {
		return models.CommentAuthor{ID: actorID}
	}

	return user.AsCommentAuthor()
}
