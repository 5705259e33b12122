package hunt

import (
	"errors"
	"testing"
	"time"

	"github.com/packworks/packtrack/internal/topology"
)

// fakeClock replaces timeNow with a clock that can be advanced manually.
func fakeClock(t *testing.T, start time.Time) func(time.Duration) {
	t.Helper()
	current := start
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = time.Now })
	return func(d time.Duration) { current = current.Add(d) }
}

func newHunt(t *testing.T, teamSize int) *Hunt {
	t.Helper()
	h, err := New("hunt-1", "Checkout flow", "Rework the checkout", "nightpack", teamSize)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestNew_InvalidTeamSize(t *testing.T) {
	if _, err := New("hunt-1", "f", "", "pack", 9); !errors.Is(err, topology.ErrInvalidTeamSize) {
		t.Errorf("expected ErrInvalidTeamSize, got %v", err)
	}
}

func TestStart(t *testing.T) {
	fakeClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	h := newHunt(t, 3)

	if err := h.Start("requirements", "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h.Status != StatusActive {
		t.Errorf("expected active, got %s", h.Status)
	}
	if h.CurrentPhase != "requirements" || h.CurrentRole != "alice" {
		t.Errorf("expected requirements/alice, got %s/%s", h.CurrentPhase, h.CurrentRole)
	}
	if len(h.PhaseHistory) != 1 {
		t.Fatalf("expected 1 phase record, got %d", len(h.PhaseHistory))
	}
	if h.PhaseHistory[0].EndTime != nil {
		t.Error("open phase record should have nil EndTime")
	}
}

func TestStart_WrongFirstPhase(t *testing.T) {
	h := newHunt(t, 3)
	if err := h.Start("spec", "bob"); !errors.Is(err, ErrPhaseSequenceViolation) {
		t.Errorf("expected ErrPhaseSequenceViolation, got %v", err)
	}
}

func TestStart_Twice(t *testing.T) {
	h := newHunt(t, 3)
	if err := h.Start("requirements", "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.Start("requirements", "alice"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestTransitionTo(t *testing.T) {
	advance := fakeClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	h := newHunt(t, 3)
	if err := h.Start("requirements", "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	advance(90 * time.Minute)
	if err := h.TransitionTo("spec", "bob"); err != nil {
		t.Fatalf("TransitionTo: %v", err)
	}

	if h.CurrentPhase != "spec" || h.CurrentRole != "bob" {
		t.Errorf("expected spec/bob, got %s/%s", h.CurrentPhase, h.CurrentRole)
	}
	prev := h.PhaseHistory[0]
	if prev.EndTime == nil {
		t.Fatal("previous phase should be closed")
	}
	if prev.Duration == nil || *prev.Duration != 90 {
		t.Errorf("expected 90 minute duration, got %v", prev.Duration)
	}
	if h.PhaseHistory[1].EndTime != nil {
		t.Error("new phase record should be open")
	}
}

func TestTransitionTo_SkipsPhase(t *testing.T) {
	h := newHunt(t, 3)
	if err := h.Start("requirements", "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// requirements → implementation skips spec.
	if err := h.TransitionTo("implementation", "carol"); !errors.Is(err, ErrPhaseSequenceViolation) {
		t.Errorf("expected ErrPhaseSequenceViolation, got %v", err)
	}
}

func TestTransitionTo_Backwards(t *testing.T) {
	h := newHunt(t, 3)
	h.Start("requirements", "alice")
	h.TransitionTo("spec", "bob")
	if err := h.TransitionTo("requirements", "alice"); !errors.Is(err, ErrPhaseSequenceViolation) {
		t.Errorf("expected ErrPhaseSequenceViolation, got %v", err)
	}
}

func TestTransitionTo_FromPending(t *testing.T) {
	h := newHunt(t, 3)
	if err := h.TransitionTo("spec", "bob"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestFullDriveThrough_AllTeamSizes(t *testing.T) {
	for size := topology.MinTeamSize; size <= topology.MaxTeamSize; size++ {
		advance := fakeClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
		h := newHunt(t, size)

		seq, err := topology.ColumnSequence(size)
		if err != nil {
			t.Fatalf("ColumnSequence(%d): %v", size, err)
		}

		if err := h.Start(seq[0], "m1"); err != nil {
			t.Fatalf("size %d: Start: %v", size, err)
		}
		for _, phase := range seq[1:] {
			advance(30 * time.Minute)
			if err := h.TransitionTo(phase, "m1"); err != nil {
				t.Fatalf("size %d: TransitionTo(%s): %v", size, phase, err)
			}
		}
		advance(30 * time.Minute)
		if err := h.Complete(); err != nil {
			t.Fatalf("size %d: Complete: %v", size, err)
		}

		if h.Status != StatusCompleted {
			t.Errorf("size %d: expected completed, got %s", size, h.Status)
		}
		if h.CompletedAt == nil {
			t.Errorf("size %d: CompletedAt not set", size)
		}
		if len(h.PhaseHistory) != len(seq) {
			t.Errorf("size %d: expected %d phase records, got %d", size, len(seq), len(h.PhaseHistory))
		}
		last := h.PhaseHistory[len(h.PhaseHistory)-1]
		if last.EndTime == nil {
			t.Errorf("size %d: final phase record not closed", size)
		}
		if h.Metrics.TotalDuration != 30*len(seq) {
			t.Errorf("size %d: expected total duration %d, got %d", size, 30*len(seq), h.Metrics.TotalDuration)
		}
	}
}

func TestComplete_NotOnFinalPhase(t *testing.T) {
	h := newHunt(t, 3)
	h.Start("requirements", "alice")
	if err := h.Complete(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestComplete_FromPending(t *testing.T) {
	h := newHunt(t, 3)
	if err := h.Complete(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestBlockUnblock(t *testing.T) {
	h := newHunt(t, 3)
	h.Start("requirements", "alice")

	if err := h.Block("waiting on legal"); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if h.Status != StatusBlocked || h.BlockedReason != "waiting on legal" {
		t.Errorf("expected blocked with reason, got %s %q", h.Status, h.BlockedReason)
	}
	if len(h.PhaseHistory) != 1 || h.PhaseHistory[0].EndTime != nil {
		t.Error("blocking must not touch phase history")
	}

	// Cannot transition while blocked.
	if err := h.TransitionTo("spec", "bob"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition while blocked, got %v", err)
	}

	if err := h.Unblock(); err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	if h.Status != StatusActive || h.BlockedReason != "" {
		t.Errorf("expected active with cleared reason, got %s %q", h.Status, h.BlockedReason)
	}
}

func TestBlock_FromPending(t *testing.T) {
	h := newHunt(t, 3)
	if err := h.Block("too early"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestBlockedTimeCountsTowardDuration(t *testing.T) {
	advance := fakeClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	h := newHunt(t, 3)
	h.Start("requirements", "alice")

	advance(10 * time.Minute)
	h.Block("waiting")
	advance(50 * time.Minute)
	h.Unblock()
	advance(10 * time.Minute)

	if err := h.TransitionTo("spec", "bob"); err != nil {
		t.Fatalf("TransitionTo: %v", err)
	}
	// Wall clock: 10 + 50 blocked + 10 = 70 minutes.
	if d := h.PhaseHistory[0].Duration; d == nil || *d != 70 {
		t.Errorf("expected 70 minutes including blocked interval, got %v", d)
	}
}

func TestTotalDuration_InFlight(t *testing.T) {
	advance := fakeClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	h := newHunt(t, 1)
	h.Start("plan", "alice")
	advance(45 * time.Minute)

	if got := h.TotalDuration(); got != 45 {
		t.Errorf("expected 45 minutes, got %d", got)
	}
}

func TestClone_IsDeep(t *testing.T) {
	fakeClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	h := newHunt(t, 3)
	h.Start("requirements", "alice")

	c := h.Clone()
	c.TransitionTo("spec", "bob")

	if h.CurrentPhase != "requirements" {
		t.Errorf("mutating the clone changed the original phase: %s", h.CurrentPhase)
	}
	if len(h.PhaseHistory) != 1 {
		t.Errorf("mutating the clone changed the original history: %d records", len(h.PhaseHistory))
	}
	if h.PhaseHistory[0].EndTime != nil {
		t.Error("mutating the clone closed the original's open phase")
	}
}
