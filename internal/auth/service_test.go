package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/binding"
	"github.com/siaga-app/siaga/internal/device"
	"github.com/siaga-app/siaga/internal/identity"
	"github.com/siaga-app/siaga/internal/kv"
	"github.com/siaga-app/siaga/internal/logging"
	"github.com/siaga-app/siaga/internal/session"
	"github.com/siaga-app/siaga/internal/storage/sqlitestore"
)

type harness struct {
	svc      *Service
	sessions *session.Store
	bindings *binding.Registry
	devices  *device.Resolver
}

// newHarness wires the real stack over a SQLite database and a file-backed
// key/value store inside dir. Calling it twice with the same dir simulates an
// app restart.
func newHarness(t *testing.T, dir string) *harness {
	t.Helper()
	logger := logging.Discard()

	db, err := sqlitestore.Open(filepath.Join(dir, "emergency_app.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := kv.NewFileStore(filepath.Join(dir, "device_info.json"))
	if err != nil {
		t.Fatalf("kv store: %v", err)
	}

	users := identity.NewService(identity.NewSQLiteRepository(db), identity.LockoutPolicy{}, logger)
	devices := device.NewResolver(store, logger)
	sessions := session.NewStore(store, devices, logger)
	bindings := binding.NewRegistry(binding.NewSQLiteRepository(db), users, logger)

	return &harness{
		svc:      NewService(users, sessions, bindings, devices, logger),
		sessions: sessions,
		bindings: bindings,
		devices:  devices,
	}
}

func aliceInput() identity.RegisterInput {
	return identity.RegisterInput{
		Phone:           "081234567890",
		Name:            "Alice",
		Password:        "Valid1Pass!",
		ConfirmPassword: "Valid1Pass!",
	}
}

func TestAutoLoginScenario(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	h := newHarness(t, dir)

	if res := h.svc.CheckAutoLogin(ctx); res.State != RequiresLogin {
		t.Fatalf("fresh install: expected RequiresLogin, got %s", res.State)
	}

	alice, err := h.svc.Register(ctx, aliceInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := h.svc.Register(ctx, aliceInput()); !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("duplicate register: expected integrity error, got %v", err)
	}
	if h.sessions.IsLoggedIn(ctx) {
		t.Fatalf("registration must not log the user in")
	}

	profile, err := h.svc.Authenticate(ctx, "081234567890", "Valid1Pass!", true)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if profile.ID != alice.ID {
		t.Fatalf("expected user %d, got %d", alice.ID, profile.ID)
	}
	if res := h.svc.CheckAutoLogin(ctx); res.State != SessionActive || res.Profile.ID != alice.ID {
		t.Fatalf("expected SessionActive for alice, got %+v", res)
	}

	// Restart with the session wiped but the binding intact.
	if err := h.sessions.Clear(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	restarted := newHarness(t, dir)
	res := restarted.svc.CheckAutoLogin(ctx)
	if res.State != DeviceBound || res.Profile.ID != alice.ID || res.Profile.Name != "Alice" {
		t.Fatalf("expected DeviceBound for alice, got %+v", res)
	}
	if !restarted.sessions.IsLoggedIn(ctx) {
		t.Fatalf("expected DeviceBound to persist a session")
	}
	if res := restarted.svc.CheckAutoLogin(ctx); res.State != SessionActive {
		t.Fatalf("expected promoted session to resolve as SessionActive, got %s", res.State)
	}
}

func TestLockedAccountDoesNotResumeThroughBinding(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, t.TempDir())

	if _, err := h.svc.Register(ctx, aliceInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := h.svc.Authenticate(ctx, "081234567890", "Valid1Pass!", true); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := h.svc.Logout(ctx, false); err != nil {
		t.Fatalf("logout: %v", err)
	}

	var err error
	for i := 0; i < 5; i++ {
		_, err = h.svc.Authenticate(ctx, "081234567890", "Wrong1Pass!", false)
	}
	if !errors.Is(err, apperr.ErrLocked) {
		t.Fatalf("expected account to lock, got %v", err)
	}

	if res := h.svc.CheckAutoLogin(ctx); res.State != RequiresLogin {
		t.Fatalf("expected locked account to require login, got %+v", res)
	}
	if h.sessions.IsLoggedIn(ctx) {
		t.Fatalf("expected no session for a locked account")
	}
}

func TestLoginWithoutRememberDeviceDoesNotBind(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, t.TempDir())

	if _, err := h.svc.Register(ctx, aliceInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := h.svc.Authenticate(ctx, "081234567890", "Valid1Pass!", false); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := h.sessions.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if res := h.svc.CheckAutoLogin(ctx); res.State != RequiresLogin {
		t.Fatalf("expected RequiresLogin without a binding, got %s", res.State)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, t.TempDir())

	if _, err := h.svc.Register(ctx, aliceInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := h.svc.Authenticate(ctx, "081234567890", "Valid1Pass!", true); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := h.svc.Logout(ctx, false); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := h.svc.CurrentUser(ctx); ok {
		t.Fatalf("expected no stored user after logout")
	}
	if res := h.svc.CheckAutoLogin(ctx); res.State != DeviceBound {
		t.Fatalf("expected binding to survive a plain logout, got %s", res.State)
	}

	if err := h.svc.Logout(ctx, true); err != nil {
		t.Fatalf("logout forgetting device: %v", err)
	}
	if res := h.svc.CheckAutoLogin(ctx); res.State != RequiresLogin {
		t.Fatalf("expected RequiresLogin after forgetting device, got %s", res.State)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, t.TempDir())
	if _, err := h.svc.Register(ctx, aliceInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := h.svc.Authenticate(ctx, "081234567890", "Wrong1Pass!", true); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := h.svc.Authenticate(ctx, "not-a-phone", "Valid1Pass!", true); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.sessions.IsLoggedIn(ctx) {
		t.Fatalf("failed logins must not create a session")
	}
	if res := h.svc.CheckAutoLogin(ctx); res.State != RequiresLogin {
		t.Fatalf("failed logins must not bind the device, got %s", res.State)
	}
}

type brokenBindings struct{}

func (brokenBindings) Register(context.Context, int64, string) bool { return false }

func (brokenBindings) LookupByDevice(context.Context, string) (identity.Profile, error) {
	return identity.Profile{}, apperr.Persistence("find device binding", errors.New("database is locked"))
}

func (brokenBindings) Revoke(context.Context, int64, string) error { return nil }

type brokenDevices struct{}

func (brokenDevices) DeviceID(context.Context) (string, error) {
	return "", errors.New("storage unavailable")
}

func TestResolveFailsClosed(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()
	store := kv.NewMemoryStore()
	devices := device.NewResolver(store, logger)
	sessions := session.NewStore(store, devices, logger)

	if res := NewOrchestrator(sessions, brokenBindings{}, devices, logger).Resolve(ctx); res.State != RequiresLogin {
		t.Fatalf("lookup failure: expected RequiresLogin, got %s", res.State)
	}
	if res := NewOrchestrator(sessions, brokenBindings{}, brokenDevices{}, logger).Resolve(ctx); res.State != RequiresLogin {
		t.Fatalf("device failure: expected RequiresLogin, got %s", res.State)
	}
}

func TestLoginSucceedsWhenBindingFails(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()
	store := kv.NewMemoryStore()
	devices := device.NewResolver(store, logger)
	sessions := session.NewStore(store, devices, logger)
	users := identity.NewService(identity.NewMemoryRepository(), identity.LockoutPolicy{MaxAttempts: 3, LockDuration: time.Minute}, logger)
	svc := NewService(users, sessions, brokenBindings{}, devices, logger)

	if _, err := svc.Register(ctx, aliceInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "081234567890", "Valid1Pass!", true); err != nil {
		t.Fatalf("expected login despite binding failure, got %v", err)
	}
	if !sessions.IsLoggedIn(ctx) {
		t.Fatalf("expected an active session")
	}
}

func TestStateStrings(t *testing.T) {
	cases := map[State]string{
		Unresolved:    "unresolved",
		SessionActive: "session_active",
		DeviceBound:   "device_bound",
		RequiresLogin: "requires_login",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if RequiresLogin.Authenticated() || !DeviceBound.Authenticated() {
		t.Fatalf("unexpected Authenticated results")
	}
}
