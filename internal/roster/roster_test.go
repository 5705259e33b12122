package roster

import (
	"errors"
	"testing"
	"time"

	"github.com/packworks/packtrack/internal/topology"
)

func members(names ...string) []Member {
	ms := make([]Member, len(names))
	for i, n := range names {
		ms[i] = Member{Username: n, JoinedAt: time.Now().UTC()}
	}
	return ms
}

func TestNew(t *testing.T) {
	r, err := New(members("alice", "bob", "carol"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Size() != 3 {
		t.Errorf("expected size 3, got %d", r.Size())
	}
}

func TestNew_TooManyMembers(t *testing.T) {
	_, err := New(members("a", "b", "c", "d", "e"))
	if !errors.Is(err, topology.ErrInvalidTeamSize) {
		t.Errorf("expected ErrInvalidTeamSize, got %v", err)
	}
}

func TestNew_EmptyUsername(t *testing.T) {
	if _, err := New(members("alice", "  ")); err == nil {
		t.Fatal("expected error for empty username")
	}
}

func TestNew_DuplicateUsername(t *testing.T) {
	if _, err := New(members("alice", "alice")); err == nil {
		t.Fatal("expected error for duplicate username")
	}
}

func TestAssigneeFor(t *testing.T) {
	r, err := New(members("alice", "bob", "carol"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	assignee, err := r.AssigneeFor("spec")
	if err != nil {
		t.Fatalf("AssigneeFor: %v", err)
	}
	if assignee != "bob" {
		t.Errorf("expected bob on spec, got %q", assignee)
	}

	if _, err := r.AssigneeFor("nonsense"); !errors.Is(err, topology.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestFirstColumn(t *testing.T) {
	r, err := New(members("alice", "bob", "carol"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	column, assignee := r.FirstColumn()
	if column != "requirements" {
		t.Errorf("expected requirements, got %q", column)
	}
	if assignee != "alice" {
		t.Errorf("expected alice, got %q", assignee)
	}
}

func TestContains(t *testing.T) {
	r, err := New(members("alice"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !r.Contains("alice") {
		t.Error("expected roster to contain alice")
	}
	if r.Contains("mallory") {
		t.Error("did not expect roster to contain mallory")
	}
}
