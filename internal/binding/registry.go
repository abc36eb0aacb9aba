// Package binding remembers which devices may silently resume a user's
// session.
package binding

import (
	"context"
	"log/slog"
	"time"

	"github.com/siaga-app/siaga/internal/identity"
	"github.com/siaga-app/siaga/internal/security"
)

// ProfileLoader resolves a user id to its profile, refusing accounts that
// may not resume without a password.
type ProfileLoader interface {
	ResumableProfile(ctx context.Context, id int64) (identity.Profile, error)
}

// Registry registers, looks up and revokes device bindings.
type Registry struct {
	repo   Repository
	users  ProfileLoader
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistry builds a registry over repo.
func NewRegistry(repo Repository, users ProfileLoader, logger *slog.Logger) *Registry {
	return &Registry{repo: repo, users: users, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Register binds deviceID to userID, refreshing last access and reactivating
// an existing binding. Failures are logged and reported as false.
func (r *Registry) Register(ctx context.Context, userID int64, deviceID string) bool {
	b := Binding{
		UserID:     userID,
		DeviceID:   deviceID,
		DeviceHash: security.DeviceHash(deviceID, userID),
		LastAccess: r.now(),
		IsActive:   true,
	}
	if err := r.repo.Upsert(ctx, b); err != nil {
		r.logger.Error("device binding failed",
			slog.Int64("user_id", userID),
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		return false
	}
	r.logger.Info("device bound", slog.Int64("user_id", userID), slog.String("device_id", deviceID))
	return true
}

// LookupByDevice returns the profile of the user most recently bound to
// deviceID. It returns an apperr NotFound error when no active binding exists
// and a Locked error while the bound account is locked out.
func (r *Registry) LookupByDevice(ctx context.Context, deviceID string) (identity.Profile, error) {
	b, err := r.repo.FindActiveByDevice(ctx, deviceID)
	if err != nil {
		return identity.Profile{}, err
	}
	return r.users.ResumableProfile(ctx, b.UserID)
}

// Revoke deactivates the binding so the device no longer auto-logs in.
func (r *Registry) Revoke(ctx context.Context, userID int64, deviceID string) error {
	if err := r.repo.Deactivate(ctx, userID, deviceID); err != nil {
		return err
	}
	r.logger.Info("device binding revoked", slog.Int64("user_id", userID), slog.String("device_id", deviceID))
	return nil
}
