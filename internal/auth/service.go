package auth

import (
	"context"
	"log/slog"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/identity"
)

// Service is the entry point screens use to register, log in, resume and log
// out.
type Service struct {
	users        *identity.Service
	sessions     SessionStore
	bindings     Bindings
	devices      DeviceIDSource
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewService wires the auth facade.
func NewService(users *identity.Service, sessions SessionStore, bindings Bindings, devices DeviceIDSource, logger *slog.Logger) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		bindings:     bindings,
		devices:      devices,
		orchestrator: NewOrchestrator(sessions, bindings, devices, logger),
		logger:       logger,
	}
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, in identity.RegisterInput) (identity.Profile, error) {
	return s.users.Register(ctx, in)
}

// Authenticate verifies credentials and starts a session. With
// rememberDevice the current device is bound so later launches skip the
// login screen. A failed binding does not fail the login.
func (s *Service) Authenticate(ctx context.Context, phone, password string, rememberDevice bool) (identity.Profile, error) {
	profile, err := s.users.Authenticate(ctx, phone, password)
	if err != nil {
		return identity.Profile{}, err
	}
	if err := s.sessions.Save(ctx, profile); err != nil {
		return identity.Profile{}, apperr.Persistence("save session", err)
	}

	if rememberDevice {
		deviceID, err := s.devices.DeviceID(ctx)
		if err != nil {
			s.logger.Warn("remember device skipped", slog.Int64("user_id", profile.ID), slog.Any("error", err))
		} else if !s.bindings.Register(ctx, profile.ID, deviceID) {
			s.logger.Warn("remember device failed", slog.Int64("user_id", profile.ID))
		}
	}

	s.logger.Info("user logged in", slog.Int64("user_id", profile.ID), slog.Bool("remember_device", rememberDevice))
	return profile, nil
}

// CheckAutoLogin runs the auto-login decision.
func (s *Service) CheckAutoLogin(ctx context.Context) Result {
	return s.orchestrator.Resolve(ctx)
}

// Logout clears the session. With forgetDevice the device binding of the
// logged-in user is revoked as well; otherwise the next launch resumes
// through the binding.
func (s *Service) Logout(ctx context.Context, forgetDevice bool) error {
	if forgetDevice {
		if profile, ok := s.sessions.StoredUser(ctx); ok {
			deviceID, err := s.devices.DeviceID(ctx)
			if err != nil {
				return apperr.Persistence("resolve device id", err)
			}
			if err := s.bindings.Revoke(ctx, profile.ID, deviceID); err != nil {
				return err
			}
		}
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return apperr.Persistence("clear session", err)
	}
	return nil
}

// CurrentUser returns the profile of the active session.
func (s *Service) CurrentUser(ctx context.Context) (identity.Profile, bool) {
	return s.sessions.StoredUser(ctx)
}

// ActiveProfile resolves the user behind a protected request the way a screen
// does on entry: the stored session first, then a device binding. A binding
// hit is promoted to a session.
func (s *Service) ActiveProfile(ctx context.Context) (identity.Profile, bool) {
	res := s.orchestrator.Resolve(ctx)
	switch res.State {
	case SessionActive, DeviceBound:
		return res.Profile, true
	}
	return identity.Profile{}, false
}
