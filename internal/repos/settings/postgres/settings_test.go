package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quizearn/quizearn/internal/infra/pgtestutil"
	"github.com/quizearn/quizearn/internal/repos/settings"
)

func TestSettings_SeededDefaults(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// migration seeds every key; reads must match the documented defaults
	for key, want := range settings.Defaults {
		got, err := repo.Get(ctx, key)
		if err != nil {
			t.Fatalf("get %q: %v", key, err)
		}
		if got != want {
			t.Fatalf("setting %q: want %q, got %q", key, want, got)
		}
	}
}

func TestSettings_FallbackWhenRowMissing(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := db.Exec(`DELETE FROM settings WHERE key = $1`, settings.KeyMinWithdraw)
	if err != nil {
		t.Fatalf("delete seeded row: %v", err)
	}

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := repo.GetInt64(ctx, settings.KeyMinWithdraw)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 1_000 {
		t.Fatalf("fallback mismatch: want 1000, got %d", got)
	}
}

func TestSettings_SetAppliesOnNextRead(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := repo.Set(ctx, settings.KeyQuizReward, "750")
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := repo.GetInt64(ctx, settings.KeyQuizReward)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 750 {
		t.Fatalf("want 750, got %d", got)
	}
}

func TestSettings_UnknownKey(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repo.Get(ctx, "max_velocity")
	if !errors.Is(err, settings.ErrUnknownKey) {
		t.Fatalf("get: want ErrUnknownKey, got %v", err)
	}

	err = repo.Set(ctx, "max_velocity", "1")
	if !errors.Is(err, settings.ErrUnknownKey) {
		t.Fatalf("set: want ErrUnknownKey, got %v", err)
	}
}
