// Package device resolves the per-installation device identifier.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/siaga-app/siaga/internal/kv"
)

const deviceIDKey = "device_id"

// Resolver returns a random identifier that is generated once and then read
// back from the store on every later call.
type Resolver struct {
	store  kv.Store
	logger *slog.Logger
	group  singleflight.Group
}

// NewResolver builds a resolver over store.
func NewResolver(store kv.Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// DeviceID returns the installation's device identifier, creating and
// persisting it on first use. Concurrent first calls share one generation.
func (r *Resolver) DeviceID(ctx context.Context) (string, error) {
	v, err, _ := r.group.Do(deviceIDKey, func() (any, error) {
		return r.resolve(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Resolver) resolve(ctx context.Context) (string, error) {
	var id string
	err := kv.GetJSON(ctx, r.store, deviceIDKey, &id)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id = uuid.NewString()
	if err := kv.PutJSON(ctx, r.store, deviceIDKey, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	if r.logger != nil {
		r.logger.Info("device id generated", slog.String("device_id", id))
	}
	return id, nil
}
