// Package identity owns user accounts: registration, password login with
// lockout, the profile projection and the two emergency contact slots.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/security"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockDuration     = 15 * time.Minute
)

var errInvalidCredentials = apperr.Unauthorized("Invalid credentials")

// LockoutPolicy bounds failed logins before an account is locked.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// Service manages the user lifecycle: registration, login attempts, profile
// and emergency contacts.
type Service struct {
	repo   Repository
	policy LockoutPolicy
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new identity service. Zero policy fields fall back to
// 5 attempts and a 15 minute lock.
func NewService(repo Repository, policy LockoutPolicy, logger *slog.Logger) *Service {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaultMaxLoginAttempts
	}
	if policy.LockDuration <= 0 {
		policy.LockDuration = defaultLockDuration
	}
	return &Service{repo: repo, policy: policy, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Register validates the form and creates the user with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" || in.Phone == "" || in.Password == "" {
		return Profile{}, apperr.Validation("Please fill in required fields")
	}
	if !security.ValidatePhone(in.Phone) {
		return Profile{}, apperr.Validation("Invalid phone number")
	}
	if in.Password != in.ConfirmPassword {
		return Profile{}, apperr.Validation("Passwords do not match")
	}
	if ok, reason := security.ValidatePasswordStrength(in.Password); !ok {
		return Profile{}, apperr.Validation(reason)
	}

	hash, err := security.Hash(in.Password, "")
	if err != nil {
		return Profile{}, apperr.Persistence("hash password", err)
	}

	user := User{
		Phone:        in.Phone,
		Name:         in.Name,
		PasswordHash: hash,
		Email:        in.Email,
		RegisteredAt: s.now(),
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return Profile{}, err
	}
	user.ID = id

	s.logger.Info("user registered", slog.Int64("user_id", id))
	return user.Profile(), nil
}

// Authenticate checks the phone/password pair, tracking failed attempts and
// locking the account once the policy limit is reached. Phone numbers are
// matched as entered; surrounding whitespace makes them invalid.
func (s *Service) Authenticate(ctx context.Context, phone, password string) (Profile, error) {
	if phone == "" || password == "" {
		return Profile{}, apperr.Validation("Please fill in all fields")
	}
	if !security.ValidatePhone(phone) {
		return Profile{}, apperr.Validation("Invalid phone number")
	}

	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Profile{}, errInvalidCredentials
		}
		return Profile{}, err
	}

	now := s.now()
	if user.IsLocked {
		if s.lockActive(user, now) {
			return Profile{}, apperr.Locked("Account temporarily locked, try again later")
		}
		user.IsLocked = false
		user.LoginAttempts = 0
	}

	if !security.Verify(user.PasswordHash, password) {
		state := LoginState{Attempts: user.LoginAttempts + 1}
		if state.Attempts >= s.policy.MaxAttempts {
			state.IsLocked = true
			state.LockTime = now
		}
		if err := s.repo.UpdateLoginState(ctx, user.ID, state); err != nil {
			return Profile{}, err
		}
		if state.IsLocked {
			s.logger.Warn("account locked", slog.Int64("user_id", user.ID), slog.Int("attempts", state.Attempts))
			return Profile{}, apperr.Locked("Account temporarily locked, try again later")
		}
		return Profile{}, errInvalidCredentials
	}

	if err := s.repo.UpdateLoginState(ctx, user.ID, LoginState{LastLogin: now}); err != nil {
		return Profile{}, err
	}
	return user.Profile(), nil
}

// Profile loads the current projection of a user.
func (s *Service) Profile(ctx context.Context, id int64) (Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return user.Profile(), nil
}

// ResumableProfile loads the profile for a session resumed without a
// password. Accounts still inside their lock window are refused with a Locked
// error.
func (s *Service) ResumableProfile(ctx context.Context, id int64) (Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if s.lockActive(user, s.now()) {
		return Profile{}, apperr.Locked("Account temporarily locked, try again later")
	}
	return user.Profile(), nil
}

func (s *Service) lockActive(user User, now time.Time) bool {
	return user.IsLocked && now.Before(user.LockTime.Add(s.policy.LockDuration))
}

// UpdateProfile edits name and email. Both are required.
func (s *Service) UpdateProfile(ctx context.Context, id int64, name, email string) (Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return Profile{}, apperr.Validation("All fields must be filled")
	}
	if err := s.repo.UpdateProfile(ctx, id, name, email); err != nil {
		return Profile{}, err
	}
	return s.Profile(ctx, id)
}

// UpdateEmergencyContact stores a validated phone number in slot 1 or 2.
func (s *Service) UpdateEmergencyContact(ctx context.Context, id int64, slot int, phone string) (Profile, error) {
	if slot != 1 && slot != 2 {
		return Profile{}, errContactSlot
	}
	if !security.ValidatePhone(phone) {
		return Profile{}, apperr.Validation("Invalid phone number")
	}
	if err := s.repo.UpdateEmergencyContact(ctx, id, slot, phone); err != nil {
		return Profile{}, err
	}
	return s.Profile(ctx, id)
}
