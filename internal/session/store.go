// Package session keeps the installation's login session in the device-local
// key/value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/siaga-app/siaga/internal/identity"
	"github.com/siaga-app/siaga/internal/kv"
)

const sessionKey = "user_session"

// Record is the persisted session. At most one exists per installation.
type Record struct {
	DeviceID   string           `json:"device_id"`
	UserData   identity.Profile `json:"user_data"`
	IsLoggedIn bool             `json:"is_logged_in"`
}

// DeviceIDSource yields the current installation's device id.
type DeviceIDSource interface {
	DeviceID(ctx context.Context) (string, error)
}

// Store reads and writes the session record.
type Store struct {
	kv      kv.Store
	devices DeviceIDSource
	logger  *slog.Logger
}

// NewStore builds a session store.
func NewStore(store kv.Store, devices DeviceIDSource, logger *slog.Logger) *Store {
	return &Store{kv: store, devices: devices, logger: logger}
}

// Save persists profile as the active session for this device, replacing any
// prior session.
func (s *Store) Save(ctx context.Context, profile identity.Profile) error {
	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		return fmt.Errorf("resolve device id: %w", err)
	}
	record := Record{DeviceID: deviceID, UserData: profile, IsLoggedIn: true}
	if err := kv.PutJSON(ctx, s.kv, sessionKey, record); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.logger.Debug("session saved", slog.Int64("user_id", profile.ID))
	return nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether a session exists, is flagged logged in and was
// written for this device.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.active(ctx)
	return ok
}

// StoredUser returns the cached profile while logged in.
func (s *Store) StoredUser(ctx context.Context) (identity.Profile, bool) {
	record, ok := s.active(ctx)
	if !ok {
		return identity.Profile{}, false
	}
	return record.UserData, true
}

// Refresh replaces the cached profile if the same user is still logged in.
func (s *Store) Refresh(ctx context.Context, profile identity.Profile) error {
	record, ok := s.active(ctx)
	if !ok || record.UserData.ID != profile.ID {
		return nil
	}
	record.UserData = profile
	if err := kv.PutJSON(ctx, s.kv, sessionKey, record); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

func (s *Store) active(ctx context.Context) (Record, bool) {
	var record Record
	if err := kv.GetJSON(ctx, s.kv, sessionKey, &record); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("session unreadable", slog.Any("error", err))
		}
		return Record{}, false
	}
	if !record.IsLoggedIn {
		return Record{}, false
	}
	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		s.logger.Warn("device id unavailable", slog.Any("error", err))
		return Record{}, false
	}
	if record.DeviceID != deviceID {
		s.logger.Info("session belongs to another device", slog.String("device_id", record.DeviceID))
		return Record{}, false
	}
	return record, true
}
