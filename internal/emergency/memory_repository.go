package emergency

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	logs   []Log
}

// NewMemoryRepository builds an in-memory emergency log store for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, l Log) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	r.logs = append(r.logs, l)
	return l.ID, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID int64) ([]Log, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Log{}
	for _, l := range r.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
