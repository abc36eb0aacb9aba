package binding

import (
	"context"
	"sync"
)

type bindingKey struct {
	userID   int64
	deviceID string
}

type memoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	bindings map[bindingKey]Binding
}

// NewMemoryRepository builds an in-memory binding store for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{bindings: make(map[bindingKey]Binding)}
}

func (r *memoryRepository) Upsert(_ context.Context, b Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bindingKey{userID: b.UserID, deviceID: b.DeviceID}
	if existing, ok := r.bindings[key]; ok {
		b.ID = existing.ID
	} else {
		r.nextID++
		b.ID = r.nextID
	}
	b.IsActive = true
	r.bindings[key] = b
	return nil
}

func (r *memoryRepository) FindActiveByDevice(_ context.Context, deviceID string) (Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		best  Binding
		found bool
	)
	for _, b := range r.bindings {
		if b.DeviceID != deviceID || !b.IsActive {
			continue
		}
		if !found || b.LastAccess.After(best.LastAccess) || (b.LastAccess.Equal(best.LastAccess) && b.ID > best.ID) {
			best, found = b, true
		}
	}
	if !found {
		return Binding{}, errBindingNotFound
	}
	return best, nil
}

func (r *memoryRepository) Deactivate(_ context.Context, userID int64, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bindingKey{userID: userID, deviceID: deviceID}
	if b, ok := r.bindings[key]; ok {
		b.IsActive = false
		r.bindings[key] = b
	}
	return nil
}
