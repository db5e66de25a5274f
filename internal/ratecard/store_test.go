package ratecard_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Simplici0/renoquote/internal/db"
	"github.com/Simplici0/renoquote/internal/migrations"
	"github.com/Simplici0/renoquote/internal/ratecard"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "ratecards.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(context.Background(), database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestStoreActiveWithoutCards(t *testing.T) {
	store := ratecard.NewStore(openTestDB(t))
	if _, err := store.Active(context.Background()); !errors.Is(err, ratecard.ErrNoActiveCard) {
		t.Fatalf("expected ErrNoActiveCard, got %v", err)
	}
}

func TestStoreSaveActivateAndList(t *testing.T) {
	ctx := context.Background()
	store := ratecard.NewStore(openTestDB(t))

	if err := store.Save(ctx, ratecard.Default(), true); err != nil {
		t.Fatalf("save default: %v", err)
	}

	next := ratecard.Default()
	next.Version = "2025.1"
	next.VATRate = 0.175
	if err := store.Save(ctx, next, false); err != nil {
		t.Fatalf("save next: %v", err)
	}

	active, err := store.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.Version != ratecard.DefaultVersion {
		t.Fatalf("expected %s active, got %s", ratecard.DefaultVersion, active.Version)
	}

	if err := store.Activate(ctx, "2025.1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	active, err = store.Active(ctx)
	if err != nil {
		t.Fatalf("active after switch: %v", err)
	}
	if active.Version != "2025.1" || active.VATRate != 0.175 {
		t.Fatalf("unexpected active card %s vat=%v", active.Version, active.VATRate)
	}

	versions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	activeCount := 0
	for _, v := range versions {
		if v.Active {
			activeCount++
			if v.Version != "2025.1" {
				t.Fatalf("wrong version flagged active: %s", v.Version)
			}
		}
		if v.CreatedAt.IsZero() {
			t.Fatalf("version %s has no created_at", v.Version)
		}
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly one active version, got %d", activeCount)
	}

	got, err := store.Get(ctx, ratecard.DefaultVersion)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VATRate != 0.20 {
		t.Fatalf("stored card changed: vat=%v", got.VATRate)
	}
}

func TestStoreRejectsDuplicatesAndInvalidCards(t *testing.T) {
	ctx := context.Background()
	store := ratecard.NewStore(openTestDB(t))

	if err := store.Save(ctx, ratecard.Default(), true); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, ratecard.Default(), false); !errors.Is(err, ratecard.ErrVersionExists) {
		t.Fatalf("expected ErrVersionExists, got %v", err)
	}

	bad := ratecard.Default()
	bad.Version = "broken"
	bad.VATRate = 1.5
	if err := store.Save(ctx, bad, true); !errors.Is(err, ratecard.ErrInvalidCard) {
		t.Fatalf("expected ErrInvalidCard, got %v", err)
	}

	if err := store.Activate(ctx, "missing"); !errors.Is(err, ratecard.ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ratecard.ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}

	active, err := store.Active(ctx)
	if err != nil || active.Version != ratecard.DefaultVersion {
		t.Fatalf("failed activation must not clear the active card: %v %v", active.Version, err)
	}
}
