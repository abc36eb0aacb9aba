package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
	phones map[string]int64
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[int64]User), phones: make(map[string]int64)}
}

func (r *memoryRepository) Create(_ context.Context, user User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.phones[user.Phone]; exists {
		return 0, errPhoneTaken
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	r.phones[user.Phone] = user.ID
	return user.ID, nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.phones[phone]
	if !ok {
		return User{}, errUserNotFound
	}
	return r.users[id], nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, errUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) UpdateLoginState(_ context.Context, id int64, state LoginState) error {
	return r.update(id, func(u *User) error {
		u.LoginAttempts = state.Attempts
		u.IsLocked = state.IsLocked
		u.LockTime = state.LockTime
		if !state.LastLogin.IsZero() {
			u.LastLogin = state.LastLogin
		}
		return nil
	})
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id int64, name, email string) error {
	return r.update(id, func(u *User) error {
		u.Name = name
		u.Email = email
		return nil
	})
}

func (r *memoryRepository) UpdateEmergencyContact(_ context.Context, id int64, slot int, phone string) error {
	return r.update(id, func(u *User) error {
		switch slot {
		case 1:
			u.EmergencyContact1 = phone
		case 2:
			u.EmergencyContact2 = phone
		default:
			return errContactSlot
		}
		return nil
	})
}

func (r *memoryRepository) update(id int64, fn func(*User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return errUserNotFound
	}
	if err := fn(&user); err != nil {
		return err
	}
	r.users[id] = user
	return nil
}
