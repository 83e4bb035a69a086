package handlers

import (
	"errors"

	"surveyhub/internal/app"
	geoController "surveyhub/internal/controllers/geolocations"
	"surveyhub/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type GeoLocationHandler struct {
	Handler
	controller *geoController.GeoLocationController
}

func NewGeoLocationHandler(app app.App, router fiber.Router) *GeoLocationHandler {
	log := logger.New("handlers").File("geolocation_handler")
	return &GeoLocationHandler{
		controller: app.GeoLocationController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *GeoLocationHandler) Register() {
	locations := h.router.Group("/geo-locations")
	locations.Get("/:id", h.get)
	locations.Post("/:id/geocode", h.geocode)
}

func (h *GeoLocationHandler) get(c *fiber.Ctx) error {
	location, err := h.controller.GetLocation(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, geoController.ErrLocationNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get geo location"})
	}

	return c.JSON(fiber.Map{"message": "success", "location": location})
}

// geocode fills in coordinates for a location that still has both at zero.
// Already-set coordinates are left alone and reported as updated=false.
func (h *GeoLocationHandler) geocode(c *fiber.Ctx) error {
	updated, err := h.controller.UpdateCoordinatesIfZero(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, geoController.ErrLocationNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to geocode location"})
	}

	return c.JSON(fiber.Map{"message": "success", "updated": updated})
}
