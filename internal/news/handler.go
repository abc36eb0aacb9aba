package news

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/siaga-app/siaga/internal/middleware"
)

// Handler exposes the news feed.
type Handler struct {
	svc *Service
}

// NewHandler builds a news HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the feed.
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"items": items})
}

// Get returns one item.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid news id")
	}
	item, err := h.svc.Get(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(item)
}

// Submit posts a new item authored by the session user.
func (h *Handler) Submit(c *fiber.Ctx) error {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "login required")
	}
	var req SubmitInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	req.AuthorID = profile.ID
	item, err := h.svc.Submit(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(item)
}
