// Package hunt implements the per-work-item phase state machine. A hunt moves
// through the column sequence of the topology it was created under, recording
// when each phase started and ended. Lifecycle: pending → active → completed,
// with active ⇄ blocked as a side transition that never touches phase history.
package hunt

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/packworks/packtrack/internal/topology"
)

// Status is the lifecycle state of a hunt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusBlocked   Status = "blocked"
)

// Sentinel errors for state machine violations.
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPhaseSequenceViolation = errors.New("phase sequence violation")
)

// PhaseRecord tracks one phase the hunt has entered. EndTime is nil while the
// phase is in progress; Duration is whole minutes, set when the phase closes.
type PhaseRecord struct {
	Phase     string     `json:"phase"`
	Assignee  string     `json:"assignee"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  *int       `json:"duration,omitempty"`
}

// Metrics carries per-hunt quality numbers. Only TotalDuration is computed by
// the engine; the rest are reported by external tooling and default to zero.
type Metrics struct {
	TotalDuration int     `json:"totalDuration"`
	TestCoverage  float64 `json:"testCoverage"`
	QualityScore  float64 `json:"qualityScore"`
	BugsFound     int     `json:"bugsFound"`
}

// Hunt is one tracked work item. TeamSize pins the topology the hunt was
// created under, so phase validation stays correct even if the pack later
// changes shape.
type Hunt struct {
	ID            string        `json:"id"`
	FeatureName   string        `json:"featureName"`
	Description   string        `json:"description"`
	PackName      string        `json:"packName"`
	TeamSize      int           `json:"teamSize"`
	Status        Status        `json:"status"`
	CurrentPhase  string        `json:"currentPhase,omitempty"`
	CurrentRole   string        `json:"currentRole,omitempty"`
	BlockedReason string        `json:"blockedReason,omitempty"`
	StartedAt     time.Time     `json:"startedAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
	PhaseHistory  []PhaseRecord `json:"phaseHistory"`
	Metrics       Metrics       `json:"metrics"`
}

// New creates a pending hunt. No phase has started yet.
func New(id, featureName, description, packName string, teamSize int) (*Hunt, error) {
	if err := topology.ValidateTeamSize(teamSize); err != nil {
		return nil, err
	}
	return &Hunt{
		ID:          id,
		FeatureName: featureName,
		Description: description,
		PackName:    packName,
		TeamSize:    teamSize,
		Status:      StatusPending,
	}, nil
}

// Start opens the first phase. Only valid from pending; firstPhase must be
// the head of the topology sequence for the hunt's team size.
func (h *Hunt) Start(firstPhase, assignee string) error {
	if h.Status != StatusPending {
		return fmt.Errorf("%w: cannot start hunt %s from status %s", ErrInvalidStateTransition, h.ID, h.Status)
	}
	seq, err := topology.ColumnSequence(h.TeamSize)
	if err != nil {
		return err
	}
	if firstPhase != seq[0] {
		return fmt.Errorf("%w: hunt %s must start at %q, not %q", ErrPhaseSequenceViolation, h.ID, seq[0], firstPhase)
	}

	now := timeNow().UTC()
	h.PhaseHistory = append(h.PhaseHistory, PhaseRecord{
		Phase:     firstPhase,
		Assignee:  assignee,
		StartTime: now,
	})
	h.Status = StatusActive
	h.CurrentPhase = firstPhase
	h.CurrentRole = assignee
	h.StartedAt = now
	return nil
}

// TransitionTo closes the current phase and opens nextPhase. Only valid from
// active, and only to the immediate successor of the current phase.
func (h *Hunt) TransitionTo(nextPhase, nextAssignee string) error {
	if h.Status != StatusActive {
		return fmt.Errorf("%w: cannot transition hunt %s from status %s", ErrInvalidStateTransition, h.ID, h.Status)
	}

	successor, ok, err := topology.NextColumn(h.TeamSize, h.CurrentPhase)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: hunt %s is already on the final phase %q", ErrPhaseSequenceViolation, h.ID, h.CurrentPhase)
	}
	if nextPhase != successor {
		return fmt.Errorf("%w: hunt %s must move from %q to %q, not %q",
			ErrPhaseSequenceViolation, h.ID, h.CurrentPhase, successor, nextPhase)
	}

	now := timeNow().UTC()
	h.closeCurrentPhase(now)
	h.PhaseHistory = append(h.PhaseHistory, PhaseRecord{
		Phase:     nextPhase,
		Assignee:  nextAssignee,
		StartTime: now,
	})
	h.CurrentPhase = nextPhase
	h.CurrentRole = nextAssignee
	return nil
}

// Complete closes the final phase and marks the hunt completed. Only valid
// from active while on the terminal phase of the sequence.
func (h *Hunt) Complete() error {
	if h.Status != StatusActive {
		return fmt.Errorf("%w: cannot complete hunt %s from status %s", ErrInvalidStateTransition, h.ID, h.Status)
	}
	_, hasNext, err := topology.NextColumn(h.TeamSize, h.CurrentPhase)
	if err != nil {
		return err
	}
	if hasNext {
		return fmt.Errorf("%w: hunt %s is on phase %q, not the final phase", ErrInvalidStateTransition, h.ID, h.CurrentPhase)
	}

	now := timeNow().UTC()
	h.closeCurrentPhase(now)
	h.Status = StatusCompleted
	h.CompletedAt = &now
	h.Metrics.TotalDuration = h.TotalDuration()
	return nil
}

// Block pauses the hunt. Phase history and timers are untouched: durations
// stay wall-clock, blocked intervals included.
func (h *Hunt) Block(reason string) error {
	if h.Status != StatusActive {
		return fmt.Errorf("%w: cannot block hunt %s from status %s", ErrInvalidStateTransition, h.ID, h.Status)
	}
	h.Status = StatusBlocked
	h.BlockedReason = reason
	return nil
}

// Unblock resumes a blocked hunt.
func (h *Hunt) Unblock() error {
	if h.Status != StatusBlocked {
		return fmt.Errorf("%w: cannot unblock hunt %s from status %s", ErrInvalidStateTransition, h.ID, h.Status)
	}
	h.Status = StatusActive
	h.BlockedReason = ""
	return nil
}

// TotalDuration returns whole minutes between StartedAt and CompletedAt,
// or until now for an unfinished hunt. Zero for a hunt that never started.
func (h *Hunt) TotalDuration() int {
	if h.StartedAt.IsZero() {
		return 0
	}
	end := timeNow().UTC()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return roundMinutes(end.Sub(h.StartedAt))
}

// Clone returns a deep copy. The registry mutates clones and only swaps them
// in after persistence succeeds.
func (h *Hunt) Clone() *Hunt {
	c := *h
	c.PhaseHistory = make([]PhaseRecord, len(h.PhaseHistory))
	for i, p := range h.PhaseHistory {
		c.PhaseHistory[i] = p
		if p.EndTime != nil {
			end := *p.EndTime
			c.PhaseHistory[i].EndTime = &end
		}
		if p.Duration != nil {
			d := *p.Duration
			c.PhaseHistory[i].Duration = &d
		}
	}
	if h.CompletedAt != nil {
		completed := *h.CompletedAt
		c.CompletedAt = &completed
	}
	return &c
}

func (h *Hunt) closeCurrentPhase(now time.Time) {
	if len(h.PhaseHistory) == 0 {
		return
	}
	current := &h.PhaseHistory[len(h.PhaseHistory)-1]
	if current.EndTime != nil {
		return
	}
	current.EndTime = &now
	d := roundMinutes(now.Sub(current.StartTime))
	current.Duration = &d
}

func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
