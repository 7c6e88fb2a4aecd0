package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "rules", []byte(`[]`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := store.Get(ctx, "rules")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("Get found = false, want true")
	}
	if string(value) != `[]` {
		t.Errorf("Get value = %q, want []", value)
	}
}

func TestMemory_MissAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, found, _ := store.Get(ctx, "absent"); found {
		t.Error("Get found = true for absent key")
	}

	store.Set(ctx, "k", []byte("v"), time.Minute)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("Get found = true after Delete")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Set(ctx, "k", []byte("v"), time.Minute)

	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Fatal("Get found = false before expiry")
	}

	current = current.Add(2 * time.Minute)
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("Get found = true after expiry")
	}
}

func TestMemory_CopiesValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	buf := []byte("original")
	store.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'X'

	value, _, _ := store.Get(ctx, "k")
	if string(value) != "original" {
		t.Errorf("Get value = %q, want original (stored value must not alias caller buffer)", value)
	}
}
