// Package event defines the domain events the registry emits after each
// successful mutation, and the Notifier port the transport layer implements.
// Emission is fire-and-forget: by the time a notifier sees an event, the
// mutation has already been persisted.
package event

import "time"

// Event types, in the order the registry can emit them over a hunt's life.
const (
	TypeHuntCreated      = "hunt:created"
	TypeHuntUpdated      = "hunt:updated"
	TypeHuntPhaseChanged = "hunt:phase-changed"
	TypeHuntCompleted    = "hunt:completed"
)

// HuntCreated is emitted once when a hunt enters the registry.
type HuntCreated struct {
	ID          string    `json:"id"`
	FeatureName string    `json:"featureName"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HuntUpdated is emitted on mutations that change fields without moving
// phases (block, unblock).
type HuntUpdated struct {
	ID            string    `json:"id"`
	ChangedFields []string  `json:"changedFields"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HuntPhaseChanged is emitted when a hunt advances to its next phase.
type HuntPhaseChanged struct {
	ID            string    `json:"id"`
	PreviousPhase string    `json:"previousPhase"`
	NewPhase      string    `json:"newPhase"`
	ChangedAt     time.Time `json:"changedAt"`
}

// HuntCompleted is emitted when a hunt finishes its final phase.
type HuntCompleted struct {
	ID                   string    `json:"id"`
	TotalDurationMinutes int       `json:"totalDurationMinutes"`
	CompletedAt          time.Time `json:"completedAt"`
}

// Notifier receives domain events. Implementations must not block the
// caller for long; the registry does not retry or time out emission.
type Notifier interface {
	HuntCreated(e HuntCreated)
	HuntUpdated(e HuntUpdated)
	HuntPhaseChanged(e HuntPhaseChanged)
	HuntCompleted(e HuntCompleted)
}

// NopNotifier discards all events. Used by callers that have no transport,
// like one-shot CLI commands.
type NopNotifier struct{}

func (NopNotifier) HuntCreated(HuntCreated)           {}
func (NopNotifier) HuntUpdated(HuntUpdated)           {}
func (NopNotifier) HuntPhaseChanged(HuntPhaseChanged) {}
func (NopNotifier) HuntCompleted(HuntCompleted)       {}
