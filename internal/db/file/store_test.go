package file

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	blob := []byte{0x00, 0x01, 0xfe, 0xff}

	if err := s.Set(ctx, "embeddings_model.bin", blob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Get(ctx, "embeddings_model.bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("Get() = %v, want %v", got, blob)
	}

	// overwrite
	if err := s.Set(ctx, "embeddings_model.bin", []byte("v2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.Get(ctx, "embeddings_model.bin")
	if string(got) != "v2" {
		t.Errorf("Get() after overwrite = %q", got)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "..", "../escape", "a/b", `a\b`, ".hidden"} {
		if err := s.Set(ctx, key, []byte("x")); !errors.Is(err, db.ErrInvalidKey) {
			t.Errorf("Set(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := s.Get(ctx, key); !errors.Is(err, db.ErrInvalidKey) {
			t.Errorf("Get(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestDel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after Del, got %v", err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of missing key should succeed, got %v", err)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.RemoveAll(s.Dir()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error after dir removal")
	}
}

func TestNewStore_EmptyDir(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Fatal("expected error")
	}
}
