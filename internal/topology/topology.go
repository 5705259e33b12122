// Package topology derives the workflow column layout for a pack from its
// team size. Small packs merge several roles into one column; a full pack of
// four gets one column per role. The layout for a given size is deterministic:
// every valid size maps to exactly one ordered column sequence.
package topology

import (
	"errors"
	"fmt"
)

// Role is a functional responsibility within the pipeline. Merged columns
// carry more than one role; unmerged columns carry exactly one, and their
// column ID equals the role name.
type Role string

const (
	RoleRequirements   Role = "requirements"
	RoleSpec           Role = "spec"
	RoleImplementation Role = "implementation"
	RoleTesting        Role = "testing"
	RoleReview         Role = "review"
	RoleRelease        Role = "release"
)

// MinTeamSize and MaxTeamSize bound the supported pack sizes.
const (
	MinTeamSize = 1
	MaxTeamSize = 4
)

// Sentinel errors for topology lookups.
var (
	ErrInvalidTeamSize   = errors.New("invalid team size")
	ErrRoleCountMismatch = errors.New("member count does not match team size")
	ErrUnknownColumn     = errors.New("unknown column")
)

// Column is one named stage in the pipeline for a specific team size.
type Column struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Emoji       string `json:"emoji"`
	Roles       []Role `json:"roles"`
	Position    int    `json:"position"`
	Description string `json:"description"`
	Merged      bool   `json:"merged"`
}

// layouts defines the column sequence for each team size. Assignment of
// members to columns is positional: memberIndex says which member (by order
// in the roster) owns each column.
//
//   - size 1: three merged columns, all owned by the solo member
//   - size 2: planning merged; member 1 also owns testing so the
//     implementer never verifies their own work
//   - size 3: one column per core role; member 1 carries the
//     requirements+testing pairing
//   - size 4: full separation, one role per person
var layouts = map[int][]layoutEntry{
	1: {
		{col("plan", "Plan", "📋", "Requirements and specification", RoleRequirements, RoleSpec), 0},
		{col("build", "Build", "🔨", "Implementation and testing", RoleImplementation, RoleTesting), 0},
		{col("ship", "Ship", "🚀", "Review and release", RoleReview, RoleRelease), 0},
	},
	2: {
		{col("plan", "Plan", "📋", "Requirements and specification", RoleRequirements, RoleSpec), 0},
		{col("implementation", "Implementation", "🔨", "Build the feature", RoleImplementation), 1},
		{col("testing", "Testing", "🧪", "Verify the feature", RoleTesting), 0},
	},
	3: {
		{col("requirements", "Requirements", "🎯", "Capture what to build", RoleRequirements), 0},
		{col("spec", "Spec", "📋", "Write the specification", RoleSpec), 1},
		{col("implementation", "Implementation", "🔨", "Build the feature", RoleImplementation), 2},
		{col("testing", "Testing", "🧪", "Verify the feature", RoleTesting), 0},
	},
	4: {
		{col("requirements", "Requirements", "🎯", "Capture what to build", RoleRequirements), 0},
		{col("spec", "Spec", "📋", "Write the specification", RoleSpec), 1},
		{col("implementation", "Implementation", "🔨", "Build the feature", RoleImplementation), 2},
		{col("testing", "Testing", "🧪", "Verify the feature", RoleTesting), 3},
	},
}

type layoutEntry struct {
	column      Column
	memberIndex int
}

func col(id, name, emoji, desc string, roles ...Role) Column {
	return Column{
		ID:          id,
		DisplayName: name,
		Emoji:       emoji,
		Roles:       roles,
		Description: desc,
		Merged:      len(roles) > 1,
	}
}

// ValidateTeamSize returns an error if the size is outside the supported range.
func ValidateTeamSize(teamSize int) error {
	if teamSize < MinTeamSize || teamSize > MaxTeamSize {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidTeamSize, teamSize, MinTeamSize, MaxTeamSize)
	}
	return nil
}

// Columns returns the ordered column list for the given team size.
// Positions are contiguous, strictly increasing and unique.
func Columns(teamSize int) ([]Column, error) {
	if err := ValidateTeamSize(teamSize); err != nil {
		return nil, err
	}
	entries := layouts[teamSize]
	columns := make([]Column, len(entries))
	for i, e := range entries {
		c := e.column
		c.Position = i
		// Copy the role slice so callers cannot mutate the layout table.
		c.Roles = append([]Role(nil), e.column.Roles...)
		columns[i] = c
	}
	return columns, nil
}

// ColumnSequence returns the ordered column IDs for the given team size.
// These IDs are the phase identifiers hunts move through.
func ColumnSequence(teamSize int) ([]string, error) {
	columns, err := Columns(teamSize)
	if err != nil {
		return nil, err
	}
	seq := make([]string, len(columns))
	for i, c := range columns {
		seq[i] = c.ID
	}
	return seq, nil
}

// RolesForColumn returns the roles a column carries in the given team size.
func RolesForColumn(teamSize int, columnID string) ([]Role, error) {
	columns, err := Columns(teamSize)
	if err != nil {
		return nil, err
	}
	for _, c := range columns {
		if c.ID == columnID {
			return c.Roles, nil
		}
	}
	return nil, fmt.Errorf("%w: %q for team size %d", ErrUnknownColumn, columnID, teamSize)
}

// MapMembersToColumns assigns members (in roster order) to columns for the
// given team size. Fails if the member count does not equal the team size
// the layout was generated for.
func MapMembersToColumns(teamSize int, members []string) (map[string]string, error) {
	if err := ValidateTeamSize(teamSize); err != nil {
		return nil, err
	}
	if len(members) != teamSize {
		return nil, fmt.Errorf("%w: got %d members for team size %d", ErrRoleCountMismatch, len(members), teamSize)
	}
	assignment := make(map[string]string, len(layouts[teamSize]))
	for _, e := range layouts[teamSize] {
		assignment[e.column.ID] = members[e.memberIndex]
	}
	return assignment, nil
}

// NextColumn returns the column immediately after columnID in the sequence,
// or empty string with ok=false on the terminal column.
func NextColumn(teamSize int, columnID string) (string, bool, error) {
	seq, err := ColumnSequence(teamSize)
	if err != nil {
		return "", false, err
	}
	for i, id := range seq {
		if id == columnID {
			if i == len(seq)-1 {
				return "", false, nil
			}
			return seq[i+1], true, nil
		}
	}
	return "", false, fmt.Errorf("%w: %q for team size %d", ErrUnknownColumn, columnID, teamSize)
}

// ColumnIndex returns the position of columnID in the sequence for the given
// team size, or an ErrUnknownColumn error.
func ColumnIndex(teamSize int, columnID string) (int, error) {
	seq, err := ColumnSequence(teamSize)
	if err != nil {
		return 0, err
	}
	for i, id := range seq {
		if id == columnID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q for team size %d", ErrUnknownColumn, columnID, teamSize)
}
