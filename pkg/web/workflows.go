package web

import (
	"strconv"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req, err := h.parseListWorkflowsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.services.Workflow.ListWorkflows(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
		Pagination:  Pagination{Limit: req.Limit, Offset: req.Offset},
		Sorting:     Sorting{SortBy: req.SortBy, SortOrder: req.SortOrder},
	})
}

// parseListWorkflowsRequest parses query parameters for listing workflows. Value checks
// happen in the service.
func (h *APIHandlers) parseListWorkflowsRequest(c fiber.Ctx) (*services.ListWorkflowsRequest, error) {
	req := &services.ListWorkflowsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.ClientID = c.Query("client_id")

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		req.Status = &status
	}

	if typeStr := c.Query("type"); typeStr != "" {
		workflowType := models.WorkflowType(typeStr)
		req.Type = &workflowType
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.services.Workflow.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Workflow.Create(c.Context(), req.ToWorkflow(), actor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	err := h.services.Workflow.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetBoard(c fiber.Ctx) error {
	board, err := h.services.Tasks.Board(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(board)
}

// CompleteWorkflow answers 409 while tasks are unfinished unless ?force=true is given.
func (h *APIHandlers) CompleteWorkflow(c fiber.Ctx) error {
	force := false

	if forceStr := c.Query("force"); forceStr != "" {
		parsed, err := strconv.ParseBool(forceStr)
		if err != nil {
			return badRequest(c, "Invalid force parameter")
		}

		force = parsed
	}

	completed, err := h.services.Lifecycle.CompleteChecked(c.Context(), c.Params("id"), actor(c), force)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(completed)
}

// SyncAccount re-applies the account effect of a completed workflow. Offboarding an
// employee without an account answers 204.
func (h *APIHandlers) SyncAccount(c fiber.Ctx) error {
	account, err := h.services.Lifecycle.SyncAccount(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if account == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.JSON(account)
}

func (h *APIHandlers) CancelWorkflow(c fiber.Ctx) error {
	var req CancelWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	cancelled, err := h.services.Lifecycle.Cancel(c.Context(), c.Params("id"), req.Reason, actor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(cancelled)
}
