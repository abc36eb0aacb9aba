package news

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/identity"
	"github.com/siaga-app/siaga/internal/logging"
	"github.com/siaga-app/siaga/internal/storage/sqlitestore"
)

func TestSubmitValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), logging.Discard())
	_, err := svc.Submit(context.Background(), SubmitInput{Title: "Flood", Category: " ", Description: "Water rising"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitListAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), logging.Discard())
	now := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	first, err := svc.Submit(ctx, SubmitInput{Title: "Flood", Category: "Weather", Description: "Water rising", AuthorID: 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", first.Status)
	}
	second, _ := svc.Submit(ctx, SubmitInput{Title: "Road closed", Category: "Traffic", Description: "Jl. Sudirman"})
	now = now.Add(time.Hour)
	third, _ := svc.Submit(ctx, SubmitInput{Title: "Power restored", Category: "Utility", Description: "Grid back"})

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || items[0].ID != third.ID || items[1].ID != second.ID || items[2].ID != first.ID {
		t.Fatalf("unexpected order %+v", items)
	}

	got, err := svc.Get(ctx, first.ID)
	if err != nil || got.Title != "Flood" {
		t.Fatalf("get: %+v %v", got, err)
	}
	if _, err := svc.Get(ctx, 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(filepath.Join(t.TempDir(), "emergency_app.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	author, err := identity.NewSQLiteRepository(db).Create(ctx, identity.User{Phone: "081234567890", Name: "Alice", PasswordHash: "s$d", RegisteredAt: time.Now()})
	if err != nil {
		t.Fatalf("create author: %v", err)
	}

	repo := NewSQLiteRepository(db)
	base := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)
	older, err := repo.Create(ctx, Item{Title: "Old", Description: "d", Category: "c", AuthorID: author, CreatedAt: base, Status: StatusApproved})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	newer, err := repo.Create(ctx, Item{Title: "New", Description: "d", CreatedAt: base.Add(time.Minute), Status: StatusPending})
	if err != nil {
		t.Fatalf("create anonymous: %v", err)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != newer || items[1].ID != older {
		t.Fatalf("unexpected order %+v", items)
	}
	if items[0].AuthorID != 0 || items[0].Category != "" || items[1].AuthorID != author {
		t.Fatalf("unexpected nullable columns %+v", items)
	}

	got, err := repo.Get(ctx, older)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(base) || got.Status != StatusApproved {
		t.Fatalf("unexpected item %+v", got)
	}
	if _, err := repo.Get(ctx, 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
