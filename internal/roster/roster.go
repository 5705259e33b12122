// Package roster holds the pack's members and their column assignments.
// A roster is immutable once built: assignments come from the topology for
// the roster's size, so a hunt created under it always has a valid assignee
// for every phase.
package roster

import (
	"fmt"
	"strings"
	"time"

	"github.com/packworks/packtrack/internal/topology"
)

// Member is one person on the pack.
type Member struct {
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Roster binds an ordered member list to the topology of its size.
type Roster struct {
	members    []Member
	assignment map[string]string // column ID → username
}

// New validates the member list and maps members onto the topology columns
// for len(members). Usernames must be non-empty and unique.
func New(members []Member) (*Roster, error) {
	seen := make(map[string]bool, len(members))
	usernames := make([]string, len(members))
	for i, m := range members {
		name := strings.TrimSpace(m.Username)
		if name == "" {
			return nil, fmt.Errorf("member %d: username is empty", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate member %q", name)
		}
		seen[name] = true
		usernames[i] = name
	}

	assignment, err := topology.MapMembersToColumns(len(members), usernames)
	if err != nil {
		return nil, err
	}

	return &Roster{
		members:    append([]Member(nil), members...),
		assignment: assignment,
	}, nil
}

// Size returns the team size the roster was built for.
func (r *Roster) Size() int {
	return len(r.members)
}

// Members returns the members in roster order.
func (r *Roster) Members() []Member {
	return append([]Member(nil), r.members...)
}

// AssigneeFor returns the username assigned to a column.
func (r *Roster) AssigneeFor(columnID string) (string, error) {
	username, ok := r.assignment[columnID]
	if !ok {
		return "", fmt.Errorf("%w: %q for team size %d", topology.ErrUnknownColumn, columnID, r.Size())
	}
	return username, nil
}

// ColumnSequence returns the phase sequence for the roster's size.
func (r *Roster) ColumnSequence() []string {
	seq, _ := topology.ColumnSequence(r.Size()) // size already validated in New
	return seq
}

// FirstColumn returns the first phase and its assignee.
func (r *Roster) FirstColumn() (columnID, assignee string) {
	seq := r.ColumnSequence()
	columnID = seq[0]
	assignee = r.assignment[columnID]
	return columnID, assignee
}

// Contains reports whether username is on the roster.
func (r *Roster) Contains(username string) bool {
	for _, m := range r.members {
		if m.Username == username {
			return true
		}
	}
	return false
}
