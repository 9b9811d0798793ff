package web

import (
	"net/url"
	"strconv"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetAccounts(c fiber.Ctx) error {
	accounts, err := h.services.Accounts.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(accounts)
}

func (h *APIHandlers) GetAccount(c fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return badRequest(c, "Invalid email")
	}

	account, err := h.services.Accounts.GetByEmail(c.Context(), email)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(account)
}

func (h *APIHandlers) GetNotifications(c fiber.Ctx) error {
	filter := persistence.NotificationFilter{
		WorkflowID:  c.Query("workflow_id"),
		RecipientID: c.Query("recipient_id"),
		Kind:        models.NotificationKind(c.Query("kind")),
	}

	if unreadStr := c.Query("unread"); unreadStr != "" {
		unread, err := strconv.ParseBool(unreadStr)
		if err != nil {
			return badRequest(c, "Invalid unread parameter")
		}

		filter.UnreadOnly = unread
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}

		filter.Limit = limit
	}

	notifications, err := h.services.Notifications.List(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(notifications)
}

func (h *APIHandlers) MarkNotificationRead(c fiber.Ctx) error {
	notification, err := h.services.Notifications.MarkRead(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(notification)
}

func (h *APIHandlers) GetUsers(c fiber.Ctx) error {
	users, err := h.services.Users.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(users)
}

func (h *APIHandlers) CreateUser(c fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.services.Users.Create(c.Context(), &models.User{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Avatar: req.Avatar,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
