package alerts

import (
	"strings"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()
	if _, err := New(Level("fatal"), "boom"); err == nil {
		t.Fatalf("expected invalid level to be rejected")
	}
	m, err := New(LevelCTA, "try the new review queue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(m.ID, "alert-") {
		t.Fatalf("unexpected id: %q", m.ID)
	}
}

func TestStorePushPopClear(t *testing.T) {
	t.Parallel()
	s := NewStore()
	a := s.Success("created")
	b := s.Warning("careful")
	c := s.Danger("failed")

	vals := s.Values()
	if len(vals) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(vals))
	}
	if vals[0].ID != a.ID || vals[1].ID != b.ID || vals[2].ID != c.ID {
		t.Fatalf("expected insertion order to be preserved")
	}

	s.Pop(b.ID)
	vals = s.Values()
	if len(vals) != 2 || vals[0].ID != a.ID || vals[1].ID != c.ID {
		t.Fatalf("unexpected values after pop: %+v", vals)
	}

	// Popping an unknown id is a no-op.
	s.Pop("alert-missing")
	if len(s.Values()) != 2 {
		t.Fatalf("pop of unknown id must not change the store")
	}

	s.Clear()
	if len(s.Values()) != 0 {
		t.Fatalf("expected empty store after clear")
	}
}

func TestPushSameIDDoesNotDuplicateOrder(t *testing.T) {
	t.Parallel()
	s := NewStore()
	m, _ := New(LevelInfo, "first")
	s.Push(m)
	m.Message = "second"
	s.Push(m)
	vals := s.Values()
	if len(vals) != 1 {
		t.Fatalf("expected 1 message, got %d", len(vals))
	}
	if vals[0].Message != "second" {
		t.Fatalf("expected push with same id to overwrite, got %q", vals[0].Message)
	}
}
