package handlers

import (
	"errors"

	"surveyhub/internal/app"
	responseController "surveyhub/internal/controllers/responses"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ResponseHandler struct {
	Handler
	controller *responseController.ResponseController
}

func NewResponseHandler(app app.App, router fiber.Router) *ResponseHandler {
	log := logger.New("handlers").File("response_handler")
	return &ResponseHandler{
		controller: app.ResponseController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ResponseHandler) Register() {
	h.router.Post("/templates/:id/responses", h.saveDraft)
	h.router.Get("/users/:userID/templates/:templateID/response", h.getForUserAndTemplate)

	responses := h.router.Group("/responses")
	responses.Get("/export", h.middleware.RequireSession, h.middleware.RequireAdmin, h.exportCSV)
	responses.Put("/:id", h.update)
	responses.Put("/:id/dates", h.updateDates)
}

// saveDraft answers 200 when it updated the existing response for the
// (user, template) pair and 201 when this call created it.
func (h *ResponseHandler) saveDraft(c *fiber.Ctx) error {
	log := h.log.Function("saveDraft")

	var req SaveDraftRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse save draft request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	response, created, err := h.controller.SaveDraft(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return h.responseError(c, err, "failed to save response")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"message": "success", "response": response})
}

func (h *ResponseHandler) getForUserAndTemplate(c *fiber.Ctx) error {
	response, err := h.controller.GetForUserAndTemplate(c.UserContext(), c.Params("userID"), c.Params("templateID"))
	if err != nil {
		return h.responseError(c, err, "failed to get response")
	}

	return c.JSON(fiber.Map{"message": "success", "response": response})
}

func (h *ResponseHandler) update(c *fiber.Ctx) error {
	log := h.log.Function("update")

	var req UpdateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse update response request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	response, err := h.controller.UpdateResponse(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return h.responseError(c, err, "failed to update response")
	}

	return c.JSON(fiber.Map{"message": "success", "response": response})
}

func (h *ResponseHandler) updateDates(c *fiber.Ctx) error {
	log := h.log.Function("updateDates")

	var req UpdateResponseDatesRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse update dates request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	response, err := h.controller.UpdateDates(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return h.responseError(c, err, "failed to update response dates")
	}

	return c.JSON(fiber.Map{"message": "success", "response": response})
}

func (h *ResponseHandler) exportCSV(c *fiber.Ctx) error {
	data, err := h.controller.ExportCSV(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to export responses"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="responses.csv"`)
	return c.Send(data)
}

func (h *ResponseHandler) responseError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, responseController.ErrTemplateNotFound),
		errors.Is(err, responseController.ErrUserNotFound),
		errors.Is(err, responseController.ErrResponseNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "error", "error": err.Error()})
	case errors.Is(err, responseController.ErrInvalidStatus),
		errors.Is(err, responseController.ErrInvalidDate):
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": fallback})
	}
}
