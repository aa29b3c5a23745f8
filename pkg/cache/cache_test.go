package cache

import (
	"context"
	"testing"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}

	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok=%v err=%v", ok, err)
	}
	if string(got) != "v" {
		t.Errorf("Get(k) = %q, want v", got)
	}

	// Overwrite
	if err := m.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, _, _ = m.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("Get(k) after overwrite = %q, want v2", got)
	}
}
