package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalPutOpenDelete(t *testing.T) {
	provider, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	payload := []byte("hello object")
	if err := provider.Put(ctx, "media/ab/abcd.jpg", bytes.NewReader(payload)); err != nil {
		t.Fatal(err)
	}

	r, err := provider.Open(ctx, "media/ab/abcd.jpg")
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read back %q, want %q", got, payload)
	}

	if err := provider.Delete(ctx, "media/ab/abcd.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := provider.Open(ctx, "media/ab/abcd.jpg"); err == nil {
		t.Fatal("expected an error opening a deleted object")
	}

	// Deleting again is fine.
	if err := provider.Delete(ctx, "media/ab/abcd.jpg"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestLocalRejectsTraversalKeys(t *testing.T) {
	provider, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"../escape", "/abs/path", "", "."} {
		if err := provider.Put(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}

func TestLocalAccessPath(t *testing.T) {
	root := t.TempDir()
	provider, err := NewLocal(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := provider.AccessPath("a/b.png"); !strings.HasPrefix(got, root) {
		t.Fatalf("access path %q should live under %q", got, root)
	}
	if provider.AccessPath("../escape") != "" {
		t.Fatal("invalid keys must not produce a path")
	}
}
