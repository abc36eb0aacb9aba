// Package auth decides at startup whether the app resumes a session, binds a
// known device or asks for credentials, and fronts the login flows used by
// the screens.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/identity"
)

// State is the outcome of an auto-login run.
type State int

const (
	Unresolved State = iota
	SessionActive
	DeviceBound
	RequiresLogin
)

func (s State) String() string {
	switch s {
	case SessionActive:
		return "session_active"
	case DeviceBound:
		return "device_bound"
	case RequiresLogin:
		return "requires_login"
	default:
		return "unresolved"
	}
}

// Authenticated reports whether the state lets the user into the app.
func (s State) Authenticated() bool {
	return s == SessionActive || s == DeviceBound
}

// Result carries the resolved state and, when authenticated, the profile.
type Result struct {
	State   State
	Profile identity.Profile
}

// SessionStore is the subset of the session store the orchestrator needs.
type SessionStore interface {
	Save(ctx context.Context, profile identity.Profile) error
	Clear(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
	StoredUser(ctx context.Context) (identity.Profile, bool)
}

// Bindings is the subset of the device-binding registry in use here.
type Bindings interface {
	Register(ctx context.Context, userID int64, deviceID string) bool
	LookupByDevice(ctx context.Context, deviceID string) (identity.Profile, error)
	Revoke(ctx context.Context, userID int64, deviceID string) error
}

// DeviceIDSource yields the installation's device id.
type DeviceIDSource interface {
	DeviceID(ctx context.Context) (string, error)
}

// Orchestrator runs the auto-login decision.
type Orchestrator struct {
	sessions SessionStore
	bindings Bindings
	devices  DeviceIDSource
	logger   *slog.Logger
}

// NewOrchestrator builds an orchestrator.
func NewOrchestrator(sessions SessionStore, bindings Bindings, devices DeviceIDSource, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{sessions: sessions, bindings: bindings, devices: devices, logger: logger}
}

// Resolve checks the local session first, then falls back to a device
// binding. It fails closed: any error on the binding path yields
// RequiresLogin.
func (o *Orchestrator) Resolve(ctx context.Context) Result {
	if profile, ok := o.sessions.StoredUser(ctx); ok {
		return Result{State: SessionActive, Profile: profile}
	}

	deviceID, err := o.devices.DeviceID(ctx)
	if err != nil {
		o.logger.Warn("auto-login: device id unavailable", slog.Any("error", err))
		return Result{State: RequiresLogin}
	}

	profile, err := o.bindings.LookupByDevice(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			o.logger.Warn("auto-login: binding lookup failed", slog.String("device_id", deviceID), slog.Any("error", err))
		}
		return Result{State: RequiresLogin}
	}

	if err := o.sessions.Save(ctx, profile); err != nil {
		o.logger.Warn("auto-login: session save failed", slog.Int64("user_id", profile.ID), slog.Any("error", err))
		return Result{State: RequiresLogin}
	}
	o.logger.Info("auto-login: device bound", slog.Int64("user_id", profile.ID), slog.String("device_id", deviceID))
	return Result{State: DeviceBound, Profile: profile}
}
