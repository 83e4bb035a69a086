package handlers

import (
	"errors"

	"surveyhub/internal/app"
	orgController "surveyhub/internal/controllers/organizations"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type OrganizationHandler struct {
	Handler
	controller *orgController.OrganizationController
}

func NewOrganizationHandler(app app.App, router fiber.Router) *OrganizationHandler {
	log := logger.New("handlers").File("organization_handler")
	return &OrganizationHandler{
		controller: app.OrganizationController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *OrganizationHandler) Register() {
	orgs := h.router.Group("/organizations")
	orgs.Post("/", h.create)
	orgs.Get("/", h.getAll)
	orgs.Get("/:id", h.get)
	orgs.Put("/:id", h.update)
	orgs.Delete("/:id", h.delete)

	types := h.router.Group("/organization-types")
	types.Post("/", h.createType)
	types.Get("/", h.listTypes)
}

func (h *OrganizationHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var req CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse create organization request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	org, err := h.controller.CreateOrganization(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, orgController.ErrMissingName):
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		case errors.Is(err, orgController.ErrOrganizationExists):
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "error", "error": "failed to create organization"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "success", "organization": org})
}

func (h *OrganizationHandler) get(c *fiber.Ctx) error {
	org, err := h.controller.GetOrganization(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, orgController.ErrOrganizationNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get organization"})
	}

	return c.JSON(fiber.Map{"message": "success", "organization": org})
}

func (h *OrganizationHandler) getAll(c *fiber.Ctx) error {
	orgs, err := h.controller.GetAllOrganizations(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get organizations"})
	}

	return c.JSON(fiber.Map{"message": "success", "organizations": orgs})
}

func (h *OrganizationHandler) update(c *fiber.Ctx) error {
	log := h.log.Function("update")

	var req UpdateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse update organization request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	org, err := h.controller.UpdateOrganization(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		if errors.Is(err, orgController.ErrOrganizationNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to update organization"})
	}

	return c.JSON(fiber.Map{"message": "success", "organization": org})
}

func (h *OrganizationHandler) delete(c *fiber.Ctx) error {
	if err := h.controller.DeleteOrganization(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, orgController.ErrOrganizationNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to delete organization"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}

type createTypeRequest struct {
	Name string `json:"name"`
}

func (h *OrganizationHandler) createType(c *fiber.Ctx) error {
	log := h.log.Function("createType")

	var req createTypeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse create organization type request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	orgType, err := h.controller.CreateType(c.UserContext(), req.Name)
	if err != nil {
		if errors.Is(err, orgController.ErrOrganizationTypeExists) {
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to create organization type"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "success", "organization_type": orgType})
}

func (h *OrganizationHandler) listTypes(c *fiber.Ctx) error {
	types, err := h.controller.ListTypes(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get organization types"})
	}

	return c.JSON(fiber.Map{"message": "success", "organization_types": types})
}
