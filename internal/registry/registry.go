// Package registry owns the hunt collection for one pack. Every mutation
// follows the same commit path: clone the hunt, mutate the clone, persist the
// full snapshot, and only then swap the clone in and emit the domain event.
// A failed save leaves memory untouched and emits nothing.
//
// The registry is the single writer for its document. A coarse mutex
// serializes mutations so a CLI command and a dashboard request sharing one
// process cannot interleave commits.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/packworks/packtrack/internal/event"
	"github.com/packworks/packtrack/internal/hunt"
	"github.com/packworks/packtrack/internal/roster"
	"github.com/packworks/packtrack/internal/storage"
)

// ErrHuntNotFound marks lookups and mutations against unknown hunt IDs.
var ErrHuntNotFound = errors.New("hunt not found")

// Registry is the owning collection of hunts for one pack.
type Registry struct {
	mu       sync.Mutex
	packName string
	roster   *roster.Roster
	store    storage.Store
	notifier event.Notifier
	revision int64
	hunts    []*hunt.Hunt
}

// Open loads the persisted document from the store and builds a registry
// over it. A store that has never been saved yields an empty registry.
func Open(packName string, r *roster.Roster, store storage.Store, notifier event.Notifier) (*Registry, error) {
	if notifier == nil {
		notifier = event.NopNotifier{}
	}
	doc, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Registry{
		packName: packName,
		roster:   r,
		store:    store,
		notifier: notifier,
		revision: doc.Revision,
		hunts:    doc.Hunts,
	}, nil
}

// StartHunt creates a hunt, opens its first phase with the topology's first
// column and mapped assignee, persists, and emits hunt:created.
func (r *Registry) StartHunt(featureName, description string) (*hunt.Hunt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := hunt.New(newHuntID(), featureName, description, r.packName, r.roster.Size())
	if err != nil {
		return nil, err
	}
	firstPhase, assignee := r.roster.FirstColumn()
	if err := h.Start(firstPhase, assignee); err != nil {
		return nil, err
	}

	if err := r.save(append(r.snapshotLocked(), h)); err != nil {
		return nil, err
	}
	r.hunts = append(r.hunts, h)

	r.notifier.HuntCreated(event.HuntCreated{
		ID:          h.ID,
		FeatureName: h.FeatureName,
		Owner:       h.CurrentRole,
		CreatedAt:   h.StartedAt,
	})
	return h.Clone(), nil
}

// Hunt returns a copy of the hunt with the given ID.
func (r *Registry) Hunt(id string) (*hunt.Hunt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, _, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}
	return h.Clone(), nil
}

// ActiveHunts returns copies of all hunts with status active.
func (r *Registry) ActiveHunts() []*hunt.Hunt {
	return r.HuntsByStatus(hunt.StatusActive)
}

// CompletedHunts returns copies of all hunts with status completed.
func (r *Registry) CompletedHunts() []*hunt.Hunt {
	return r.HuntsByStatus(hunt.StatusCompleted)
}

// HuntsByStatus returns copies of all hunts with the given status.
func (r *Registry) HuntsByStatus(status hunt.Status) []*hunt.Hunt {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*hunt.Hunt
	for _, h := range r.hunts {
		if h.Status == status {
			out = append(out, h.Clone())
		}
	}
	return out
}

// ListOptions filter and page the hunt list for the transport layer.
type ListOptions struct {
	Owner  string
	Status hunt.Status
	Limit  int
	Offset int
}

// List returns hunts matching the options, in creation order, plus the total
// match count before paging.
func (r *Registry) List(opts ListOptions) ([]*hunt.Hunt, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*hunt.Hunt
	for _, h := range r.hunts {
		if opts.Status != "" && h.Status != opts.Status {
			continue
		}
		if opts.Owner != "" && h.CurrentRole != opts.Owner {
			continue
		}
		matched = append(matched, h)
	}
	total := len(matched)

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Offset:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	out := make([]*hunt.Hunt, len(matched))
	for i, h := range matched {
		out[i] = h.Clone()
	}
	return out, total
}

// TransitionHunt advances a hunt to nextPhase with nextAssignee, persists,
// and emits hunt:phase-changed.
func (r *Registry) TransitionHunt(id, nextPhase, nextAssignee string) (*hunt.Hunt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, idx, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}
	previousPhase := h.CurrentPhase

	clone := h.Clone()
	if err := clone.TransitionTo(nextPhase, nextAssignee); err != nil {
		return nil, err
	}
	if err := r.commitLocked(idx, clone); err != nil {
		return nil, err
	}

	r.notifier.HuntPhaseChanged(event.HuntPhaseChanged{
		ID:            clone.ID,
		PreviousPhase: previousPhase,
		NewPhase:      clone.CurrentPhase,
		ChangedAt:     clone.PhaseHistory[len(clone.PhaseHistory)-1].StartTime,
	})
	return clone.Clone(), nil
}

// AdvanceHunt moves a hunt to the successor of its current phase, with the
// assignee the roster maps to that column. Convenience for callers that do
// not pick phases explicitly, like the dashboard's "next phase" action.
func (r *Registry) AdvanceHunt(id string) (*hunt.Hunt, error) {
	r.mu.Lock()
	h, _, err := r.findLocked(id)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	currentPhase := h.CurrentPhase
	r.mu.Unlock()

	seq := r.roster.ColumnSequence()
	for i, columnID := range seq {
		if columnID == currentPhase && i < len(seq)-1 {
			nextPhase := seq[i+1]
			nextAssignee, err := r.roster.AssigneeFor(nextPhase)
			if err != nil {
				return nil, err
			}
			return r.TransitionHunt(id, nextPhase, nextAssignee)
		}
	}
	return nil, fmt.Errorf("%w: hunt %s has no next phase after %q",
		hunt.ErrPhaseSequenceViolation, id, currentPhase)
}

// CompleteHunt closes the final phase, persists, and emits hunt:completed.
func (r *Registry) CompleteHunt(id string) (*hunt.Hunt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, idx, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}
	clone := h.Clone()
	if err := clone.Complete(); err != nil {
		return nil, err
	}
	if err := r.commitLocked(idx, clone); err != nil {
		return nil, err
	}

	r.notifier.HuntCompleted(event.HuntCompleted{
		ID:                   clone.ID,
		TotalDurationMinutes: clone.Metrics.TotalDuration,
		CompletedAt:          *clone.CompletedAt,
	})
	return clone.Clone(), nil
}

// BlockHunt marks a hunt blocked, persists, and emits hunt:updated.
func (r *Registry) BlockHunt(id, reason string) (*hunt.Hunt, error) {
	return r.updateHunt(id, []string{"status", "blockedReason"}, func(h *hunt.Hunt) error {
		return h.Block(reason)
	})
}

// UnblockHunt resumes a blocked hunt, persists, and emits hunt:updated.
func (r *Registry) UnblockHunt(id string) (*hunt.Hunt, error) {
	return r.updateHunt(id, []string{"status", "blockedReason"}, func(h *hunt.Hunt) error {
		return h.Unblock()
	})
}

func (r *Registry) updateHunt(id string, changedFields []string, mutate func(*hunt.Hunt) error) (*hunt.Hunt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, idx, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}
	clone := h.Clone()
	if err := mutate(clone); err != nil {
		return nil, err
	}
	if err := r.commitLocked(idx, clone); err != nil {
		return nil, err
	}

	r.notifier.HuntUpdated(event.HuntUpdated{
		ID:            clone.ID,
		ChangedFields: changedFields,
		UpdatedAt:     time.Now().UTC(),
	})
	return clone.Clone(), nil
}

// Statistics are aggregate counts plus duration totals over completed hunts.
type Statistics struct {
	Total                  int `json:"total"`
	Pending                int `json:"pending"`
	Active                 int `json:"active"`
	Completed              int `json:"completed"`
	Blocked                int `json:"blocked"`
	TotalDurationMinutes   int `json:"totalDurationMinutes"`
	AverageDurationMinutes int `json:"averageDurationMinutes"`
}

// Statistics aggregates the current collection.
func (r *Registry) Statistics() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Statistics{Total: len(r.hunts)}
	for _, h := range r.hunts {
		switch h.Status {
		case hunt.StatusPending:
			stats.Pending++
		case hunt.StatusActive:
			stats.Active++
		case hunt.StatusBlocked:
			stats.Blocked++
		case hunt.StatusCompleted:
			stats.Completed++
			stats.TotalDurationMinutes += h.Metrics.TotalDuration
		}
	}
	if stats.Completed > 0 {
		stats.AverageDurationMinutes = stats.TotalDurationMinutes / stats.Completed
	}
	return stats
}

// Snapshot returns a deep copy of every hunt, for analytics and reporting.
func (r *Registry) Snapshot() []*hunt.Hunt {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*hunt.Hunt, len(r.hunts))
	for i, h := range r.hunts {
		out[i] = h.Clone()
	}
	return out
}

// Roster returns the roster the registry was opened with.
func (r *Registry) Roster() *roster.Roster {
	return r.roster
}

// PackName returns the pack this registry tracks.
func (r *Registry) PackName() string {
	return r.packName
}

// Revision returns the persisted document revision.
func (r *Registry) Revision() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revision
}

// findLocked returns the live hunt and its index. Callers hold r.mu.
func (r *Registry) findLocked(id string) (*hunt.Hunt, int, error) {
	for i, h := range r.hunts {
		if h.ID == id {
			return h, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: %s", ErrHuntNotFound, id)
}

// commitLocked persists the collection with clone replacing index idx, then
// swaps the clone in. Callers hold r.mu.
func (r *Registry) commitLocked(idx int, clone *hunt.Hunt) error {
	next := r.snapshotLocked()
	next[idx] = clone
	if err := r.save(next); err != nil {
		return err
	}
	r.hunts[idx] = clone
	return nil
}

// snapshotLocked returns a shallow copy of the hunt slice (shared hunt
// pointers; commit replaces only the mutated slot).
func (r *Registry) snapshotLocked() []*hunt.Hunt {
	return append([]*hunt.Hunt(nil), r.hunts...)
}

// save persists hunts under the next revision and bumps the in-memory
// revision on success. Callers hold r.mu.
func (r *Registry) save(hunts []*hunt.Hunt) error {
	doc := &storage.Document{
		PackName: r.packName,
		Revision: r.revision + 1,
		Hunts:    hunts,
	}
	if err := r.store.Save(doc); err != nil {
		return err
	}
	r.revision = doc.Revision
	return nil
}

// newHuntID builds a timestamp-ordered ID with a random suffix so two hunts
// created in the same millisecond stay distinct.
func newHuntID() string {
	return fmt.Sprintf("hunt-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// SortByStartedAt orders hunts oldest-first in place.
func SortByStartedAt(hunts []*hunt.Hunt) {
	sort.Slice(hunts, func(i, j int) bool {
		return hunts[i].StartedAt.Before(hunts[j].StartedAt)
	})
}
