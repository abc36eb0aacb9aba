package emergency

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/siaga-app/siaga/internal/middleware"
)

// Handler exposes the emergency endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds an emergency HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Services lists the hotlines.
func (h *Handler) Services(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"services": h.svc.Services()})
}

// Report records an emergency for the session user.
func (h *Handler) Report(c *fiber.Ctx) error {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "login required")
	}
	var req ReportInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	req.UserID = profile.ID
	report, err := h.svc.Report(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(report)
}

// History lists the session user's reports.
func (h *Handler) History(c *fiber.Ctx) error {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "login required")
	}
	logs, err := h.svc.History(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"reports": logs})
}
