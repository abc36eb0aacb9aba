package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siaga-app/siaga/internal/emergency"
	"github.com/siaga-app/siaga/internal/news"
)

// RegisterNewsRoutes wires the news feed under an authenticated group.
func RegisterNewsRoutes(r fiber.Router, h *news.Handler, replayGuard fiber.Handler) {
	r.Get("/", h.List)
	r.Post("/", guarded(replayGuard, h.Submit)...)
	r.Get("/:id", h.Get)
}

// RegisterEmergencyRoutes wires hotlines and emergency reports under an
// authenticated group.
func RegisterEmergencyRoutes(r fiber.Router, h *emergency.Handler, replayGuard fiber.Handler) {
	r.Get("/services", h.Services)
	r.Post("/reports", guarded(replayGuard, h.Report)...)
	r.Get("/reports", h.History)
}

func guarded(guard, handler fiber.Handler) []fiber.Handler {
	if guard == nil {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{guard, handler}
}
