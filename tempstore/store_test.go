package tempstore

import (
	"context"
	"os"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(Config{Dir: t.TempDir()})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestSaveAndRelease(t *testing.T) {
	s := newTestStore(t)

	path, release, err := s.Save([]byte("audio bytes"), "wav")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if s.Live() != 1 {
		t.Errorf("Live = %d, want 1", s.Live())
	}

	release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be removed after release")
	}
	if s.Live() != 0 {
		t.Errorf("Live = %d, want 0", s.Live())
	}

	// Idempotent.
	release()
}

func TestStopSweepsLeftovers(t *testing.T) {
	s := newTestStore(t)

	path1, _, err := s.Save([]byte("a"), "wav")
	if err != nil {
		t.Fatal(err)
	}
	path2, _, err := s.Save([]byte("b"), "mp3")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	for _, p := range []string{path1, path2} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("file %s should be swept on shutdown", p)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestStore(t)
	h := s.Health(context.Background())
	if h.Name != "tempstore" || h.Status != "healthy" {
		t.Errorf("Health = %+v", h)
	}
}
