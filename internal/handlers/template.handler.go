package handlers

import (
	"errors"

	"surveyhub/internal/app"
	templateController "surveyhub/internal/controllers/templates"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TemplateHandler struct {
	Handler
	controller *templateController.TemplateController
}

func NewTemplateHandler(app app.App, router fiber.Router) *TemplateHandler {
	log := logger.New("handlers").File("template_handler")
	return &TemplateHandler{
		controller: app.TemplateController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *TemplateHandler) Register() {
	versions := h.router.Group("/template-versions")
	versions.Post("/", h.createVersion)
	versions.Get("/", h.getVersions)

	templates := h.router.Group("/templates")
	templates.Post("/", h.createTemplate)
	templates.Get("/", h.getAllTemplates)
	templates.Get("/:id", h.getTemplate)
	templates.Delete("/:id", h.deleteTemplate)
	templates.Post("/:id/questions", h.addQuestion)
	templates.Get("/:id/questions", h.getQuestions)

	h.router.Get("/question-types", h.listQuestionTypes)
}

type createVersionRequest struct {
	Name           string  `json:"name"`
	OrganizationID *string `json:"organization_id"`
}

func (h *TemplateHandler) createVersion(c *fiber.Ctx) error {
	log := h.log.Function("createVersion")

	var req createVersionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse create version request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	version, err := h.controller.CreateVersion(c.UserContext(), req.Name, req.OrganizationID)
	if err != nil {
		if errors.Is(err, templateController.ErrMissingFields) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to create template version"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "success", "version": version})
}

func (h *TemplateHandler) getVersions(c *fiber.Ctx) error {
	var organizationID *string
	if id := c.Query("organization_id"); id != "" {
		organizationID = &id
	}

	versions, err := h.controller.GetVersions(c.UserContext(), organizationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get template versions"})
	}

	return c.JSON(fiber.Map{"message": "success", "versions": versions})
}

func (h *TemplateHandler) createTemplate(c *fiber.Ctx) error {
	log := h.log.Function("createTemplate")

	var req CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse create template request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	template, err := h.controller.CreateTemplate(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, templateController.ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		case errors.Is(err, templateController.ErrTemplateExists):
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		case errors.Is(err, templateController.ErrVersionNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "error", "error": "failed to create template"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "success", "template": template})
}

func (h *TemplateHandler) getTemplate(c *fiber.Ctx) error {
	template, err := h.controller.GetTemplate(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, templateController.ErrTemplateNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get template"})
	}

	return c.JSON(fiber.Map{"message": "success", "template": template})
}

func (h *TemplateHandler) getAllTemplates(c *fiber.Ctx) error {
	templates, err := h.controller.GetAllTemplates(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get templates"})
	}

	return c.JSON(fiber.Map{"message": "success", "templates": templates})
}

func (h *TemplateHandler) deleteTemplate(c *fiber.Ctx) error {
	if err := h.controller.DeleteTemplate(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, templateController.ErrTemplateNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to delete template"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}

func (h *TemplateHandler) addQuestion(c *fiber.Ctx) error {
	log := h.log.Function("addQuestion")

	var req CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse create question request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	question, err := h.controller.AddQuestion(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, templateController.ErrTemplateNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		case errors.Is(err, templateController.ErrQuestionTypeUnknown):
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "error", "error": "failed to add question"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "success", "question": question})
}

func (h *TemplateHandler) getQuestions(c *fiber.Ctx) error {
	questions, err := h.controller.GetQuestions(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, templateController.ErrTemplateNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get questions"})
	}

	return c.JSON(fiber.Map{"message": "success", "questions": questions})
}

func (h *TemplateHandler) listQuestionTypes(c *fiber.Ctx) error {
	types, err := h.controller.ListQuestionTypes(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get question types"})
	}

	return c.JSON(fiber.Map{"message": "success", "question_types": types})
}
