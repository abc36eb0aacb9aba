package routes

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/siaga-app/siaga/internal/identity"
	"github.com/siaga-app/siaga/internal/middleware"
)

// SessionRefresher rewrites the cached session profile.
type SessionRefresher interface {
	Refresh(ctx context.Context, profile identity.Profile) error
}

// RegisterProfileRoutes wires profile and emergency contact endpoints. Every
// edit refreshes the session snapshot so screens reading it stay current.
func RegisterProfileRoutes(r fiber.Router, ids *identity.Service, sessions SessionRefresher) {
	r.Get("/", func(c *fiber.Ctx) error {
		current, ok := middleware.CurrentProfile(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "login required")
		}
		profile, err := ids.Profile(c.UserContext(), current.ID)
		if err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(profile)
	})

	r.Patch("/", func(c *fiber.Ctx) error {
		current, ok := middleware.CurrentProfile(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "login required")
		}
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		profile, err := ids.UpdateProfile(c.UserContext(), current.ID, req.Name, req.Email)
		if err != nil {
			return err
		}
		if err := sessions.Refresh(c.UserContext(), profile); err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(profile)
	})

	r.Put("/contacts/:slot", func(c *fiber.Ctx) error {
		current, ok := middleware.CurrentProfile(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "login required")
		}
		slot, err := c.ParamsInt("slot")
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid contact slot")
		}
		var req struct {
			Phone string `json:"phone"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		profile, err := ids.UpdateEmergencyContact(c.UserContext(), current.ID, slot, req.Phone)
		if err != nil {
			return err
		}
		if err := sessions.Refresh(c.UserContext(), profile); err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(profile)
	})
}
