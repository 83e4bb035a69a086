package handlers

import (
	"errors"

	"surveyhub/internal/app"
	userController "surveyhub/internal/controllers/users"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	controller *userController.UserController
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		controller: app.UserController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users")
	users.Post("/login", h.login)
	users.Post("/", h.createUser)

	users.Get("/me", h.middleware.RequireSession, h.currentUser)
	users.Get("/", h.getAllUsers)
	users.Get("/:id", h.getUser)
	users.Put("/:id", h.updateUser)
	users.Delete("/:id", h.middleware.RequireSession, h.middleware.RequireAdmin, h.deleteUser)
	users.Post("/:id/details", h.saveDetails)
}

func (h *UserHandler) createUser(c *fiber.Ctx) error {
	log := h.log.Function("createUser")

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse create user request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	result, err := h.controller.CreateUser(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, userController.ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		case errors.Is(err, userController.ErrUserExists):
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "error", "error": "failed to create user"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "success",
		"user":            result.User,
		"password":        result.Password,
		"survey_code":     result.SurveyCode,
		"survey_response": result.SurveyResponse,
		"email_result":    result.EmailResult,
	})
}

func (h *UserHandler) currentUser(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(User)
	if !ok || user.ID == "" {
		h.log.Function("currentUser").ErMsg("no user found in locals")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get user"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) getUser(c *fiber.Ctx) error {
	user, err := h.controller.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, userController.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get user"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) getAllUsers(c *fiber.Ctx) error {
	users, err := h.controller.GetAllUsers(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get users"})
	}

	return c.JSON(fiber.Map{"message": "success", "users": users})
}

func (h *UserHandler) updateUser(c *fiber.Ctx) error {
	log := h.log.Function("updateUser")

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse update user request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	user, err := h.controller.UpdateUser(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		if errors.Is(err, userController.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to update user"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) deleteUser(c *fiber.Ctx) error {
	if err := h.controller.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, userController.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to delete user"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}

func (h *UserHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse login request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	user, err := h.controller.Login(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, userController.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to log in"})
	}

	token, err := h.middleware.SignToken(user.ID, user.Role)
	if err != nil {
		log.Er("failed to sign session token", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to log in"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user, "token": token})
}

type saveDetailsRequest struct {
	FormData JSONMap `json:"form_data"`
	Submit   bool    `json:"submit"`
}

func (h *UserHandler) saveDetails(c *fiber.Ctx) error {
	log := h.log.Function("saveDetails")

	var req saveDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse user details request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse request body"})
	}

	details, err := h.controller.SaveUserDetails(c.UserContext(), c.Params("id"), req.FormData, req.Submit)
	if err != nil {
		if errors.Is(err, userController.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to save user details"})
	}

	return c.JSON(fiber.Map{"message": "success", "details": details})
}
