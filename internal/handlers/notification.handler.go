package handlers

import (
	"errors"

	"surveyhub/internal/app"
	notificationController "surveyhub/internal/controllers/notifications"
	"surveyhub/internal/logger"
	"surveyhub/internal/mail"
	. "surveyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	Handler
	controller *notificationController.NotificationController
}

func NewNotificationHandler(app app.App, router fiber.Router) *NotificationHandler {
	log := logger.New("handlers").File("notification_handler")
	return &NotificationHandler{
		controller: app.NotificationController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *NotificationHandler) Register() {
	h.router.Post("/send-welcome-email", h.send(mail.KindWelcome))
	h.router.Post("/send-assignment-email", h.send(mail.KindAssignment))
	h.router.Post("/send-reminder-email", h.send(mail.KindReminder))

	templates := h.router.Group("/email-templates")
	templates.Post("/", h.createTemplate)
	templates.Get("/", h.getTemplates)
	templates.Delete("/:id", h.deleteTemplate)
}

type sendRequest struct {
	UserID     string  `json:"user_id"`
	TemplateID *string `json:"template_id"`
}

// send builds a handler for one message kind. Delivery failure is reported
// inside the result payload, not as an HTTP error; only an unknown user
// fails the call.
func (h *NotificationHandler) send(kind mail.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("send")

		var req sendRequest
		if err := c.BodyParser(&req); err != nil {
			log.Er("failed to parse send request", err, "kind", string(kind))
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": "user_id is required"})
		}

		result, err := h.controller.SendToUser(c.UserContext(), kind, req.UserID, req.TemplateID)
		if err != nil {
			if errors.Is(err, notificationController.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).
					JSON(fiber.Map{"message": "error", "error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "error", "error": "failed to send email"})
		}

		return c.JSON(fiber.Map{"message": "success", "result": result})
	}
}

func (h *NotificationHandler) createTemplate(c *fiber.Ctx) error {
	log := h.log.Function("createTemplate")

	var req CreateEmailTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse create email template request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	template, err := h.controller.CreateEmailTemplate(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, notificationController.ErrMissingTemplateFields):
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		case errors.Is(err, notificationController.ErrTemplateExists):
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "error", "error": "failed to create email template"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "success", "template": template})
}

func (h *NotificationHandler) getTemplates(c *fiber.Ctx) error {
	templates, err := h.controller.GetEmailTemplates(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get email templates"})
	}

	return c.JSON(fiber.Map{"message": "success", "templates": templates})
}

func (h *NotificationHandler) deleteTemplate(c *fiber.Ctx) error {
	if err := h.controller.DeleteEmailTemplate(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, notificationController.ErrTemplateNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to delete email template"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}
