package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(dup) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain errors are not unique violations")
	}
}

func TestEnsureSchemaRequiresPool(t *testing.T) {
	if err := EnsureSchema(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil pool")
	}
}

func TestSchemaDeclaresCoreTables(t *testing.T) {
	for _, table := range []string{"users", "device_auth", "news", "emergency_logs"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("schema missing table %s", table)
		}
	}
	if !strings.Contains(schema, "UNIQUE (user_id, device_id)") {
		t.Fatalf("schema missing device binding uniqueness")
	}
}
