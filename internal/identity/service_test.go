package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/logging"
)

func newTestService(repo Repository) *Service {
	return NewService(repo, LockoutPolicy{MaxAttempts: 3, LockDuration: 10 * time.Minute}, logging.Discard())
}

func validInput() RegisterInput {
	return RegisterInput{
		Phone:           "081234567890",
		Name:            "Alice",
		Password:        "Valid1Pass!",
		ConfirmPassword: "Valid1Pass!",
		Email:           "alice@example.com",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	profile, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if profile.ID == 0 || profile.Phone != "081234567890" || profile.Name != "Alice" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	authed, err := svc.Authenticate(ctx, "081234567890", "Valid1Pass!")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != profile.ID {
		t.Fatalf("expected user %d, got %d", profile.ID, authed.ID)
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, validInput())
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	cases := map[string]func(*RegisterInput){
		"missing name":  func(in *RegisterInput) { in.Name = " " },
		"bad phone":     func(in *RegisterInput) { in.Phone = "12345" },
		"padded phone":  func(in *RegisterInput) { in.Phone = " 081234567890" },
		"mismatch":      func(in *RegisterInput) { in.ConfirmPassword = "Other1Pass!" },
		"weak password": func(in *RegisterInput) { in.Password, in.ConfirmPassword = "short1", "short1" },
	}
	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		_, err := svc.Register(ctx, in)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	in := validInput()
	in.Password, in.ConfirmPassword = "NoSymbol1", "NoSymbol1"
	_, err := svc.Register(ctx, in)
	if apperr.Message(err) != "Password must contain at least one special character" {
		t.Fatalf("expected strength reason, got %v", err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()
	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "081234567890", "Valid1Pass!x"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "089999999999", "Valid1Pass!"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown phone, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "12345", "Valid1Pass!"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for bad phone, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, " 081234567890", "Valid1Pass!"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for padded phone, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for empty fields, got %v", err)
	}
}

func TestAuthenticateLocksAfterRepeatedFailures(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	profile, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Authenticate(ctx, "081234567890", "wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
			t.Fatalf("attempt %d: expected unauthorized, got %v", i+1, err)
		}
	}
	if _, err := svc.Authenticate(ctx, "081234567890", "wrong"); !errors.Is(err, apperr.ErrLocked) {
		t.Fatalf("expected lock on third failure, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "081234567890", "Valid1Pass!"); !errors.Is(err, apperr.ErrLocked) {
		t.Fatalf("expected locked account to reject correct password, got %v", err)
	}

	if _, err := svc.ResumableProfile(ctx, profile.ID); !errors.Is(err, apperr.ErrLocked) {
		t.Fatalf("expected locked account to refuse resume, got %v", err)
	}

	now = now.Add(11 * time.Minute)
	if _, err := svc.ResumableProfile(ctx, profile.ID); err != nil {
		t.Fatalf("expected resume after lock expiry, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "081234567890", "Valid1Pass!"); err != nil {
		t.Fatalf("expected login after lock expiry, got %v", err)
	}

	user, err := repo.FindByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.IsLocked || user.LoginAttempts != 0 || !user.LastLogin.Equal(now) {
		t.Fatalf("expected reset login state, got %+v", user)
	}
}

func TestUpdateProfileAndContacts(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()
	profile, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, profile.ID, "Alice B", "ab@example.com")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Alice B" || updated.Email != "ab@example.com" {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if _, err := svc.UpdateProfile(ctx, profile.ID, "Alice", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for empty email, got %v", err)
	}

	withContact, err := svc.UpdateEmergencyContact(ctx, profile.ID, 2, "+6281100000002")
	if err != nil {
		t.Fatalf("update contact: %v", err)
	}
	if withContact.EmergencyContact2 != "+6281100000002" {
		t.Fatalf("unexpected contacts %+v", withContact)
	}
	if got := withContact.Contacts(); len(got) != 1 || got[0] != "+6281100000002" {
		t.Fatalf("unexpected contact list %v", got)
	}
	if _, err := svc.UpdateEmergencyContact(ctx, profile.ID, 3, "081100000001"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for bad slot, got %v", err)
	}
	if _, err := svc.UpdateEmergencyContact(ctx, profile.ID, 1, "081100000001 "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for padded phone, got %v", err)
	}
	if _, err := svc.UpdateEmergencyContact(ctx, profile.ID, 1, "110"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for bad phone, got %v", err)
	}
	if _, err := svc.Profile(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
