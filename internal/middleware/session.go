package middleware

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/siaga-app/siaga/internal/identity"
)

const profileLocalsKey = "profile"

// SessionSource resolves the logged-in profile for this device. It may resume
// a session through a remembered device binding.
type SessionSource interface {
	ActiveProfile(ctx context.Context) (identity.Profile, bool)
}

// RequireSession rejects requests unless the source yields a logged-in
// profile and stores that profile in the request locals. Every protected
// request re-runs the source, so a device that kept its binding after logout
// resumes here without a separate state call.
func RequireSession(sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, ok := sessions.ActiveProfile(c.UserContext())
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "login required")
		}
		c.Locals(profileLocalsKey, profile)
		return c.Next()
	}
}

// CurrentProfile returns the profile placed by RequireSession.
func CurrentProfile(c *fiber.Ctx) (identity.Profile, bool) {
	profile, ok := c.Locals(profileLocalsKey).(identity.Profile)
	return profile, ok
}
