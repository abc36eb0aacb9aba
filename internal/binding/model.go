package binding

import (
	"context"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
)

// Binding associates a user with a device that may resume their session
// without credentials. Only active bindings are trusted.
type Binding struct {
	ID         int64
	UserID     int64
	DeviceID   string
	DeviceHash string
	LastAccess time.Time
	IsActive   bool
}

// Repository persists device bindings.
type Repository interface {
	// Upsert inserts or refreshes the binding keyed by (UserID, DeviceID),
	// marking it active.
	Upsert(ctx context.Context, b Binding) error
	// FindActiveByDevice returns the most recently accessed active binding
	// for deviceID. Ties on LastAccess go to the highest ID.
	FindActiveByDevice(ctx context.Context, deviceID string) (Binding, error)
	Deactivate(ctx context.Context, userID int64, deviceID string) error
}

var errBindingNotFound = apperr.NotFound("no active device binding")
