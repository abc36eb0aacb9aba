package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/siaga-app/siaga/internal/identity"
)

// Handler exposes register, login, logout and auto-login state endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Phone           string `json:"phone"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Email           string `json:"email"`
}

type loginRequest struct {
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	RememberDevice bool   `json:"remember_device"`
}

type logoutRequest struct {
	ForgetDevice bool `json:"forget_device"`
}

type stateResponse struct {
	State string            `json:"state"`
	User  *identity.Profile `json:"user,omitempty"`
}

// Register creates an account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	profile, err := h.svc.Register(c.UserContext(), identity.RegisterInput{
		Phone:           req.Phone,
		Name:            req.Name,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Email:           req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(profile)
}

// Login verifies credentials and starts a session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	profile, err := h.svc.Authenticate(c.UserContext(), req.Phone, req.Password, req.RememberDevice)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(stateResponse{State: SessionActive.String(), User: &profile})
}

// Logout ends the session. The body is optional.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var req logoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	if err := h.svc.Logout(c.UserContext(), req.ForgetDevice); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

// State runs the auto-login decision and reports where the app should go.
func (h *Handler) State(c *fiber.Ctx) error {
	res := h.svc.CheckAutoLogin(c.UserContext())
	out := stateResponse{State: res.State.String()}
	if res.State.Authenticated() {
		out.User = &res.Profile
	}
	return c.Status(http.StatusOK).JSON(out)
}
