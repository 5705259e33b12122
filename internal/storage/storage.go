// Package storage persists the hunt collection. The registry talks to the
// Store port only; adapters exist for a JSON document on disk, a SQLite
// database, and an in-memory map for tests. All adapters share snapshot
// semantics: Save writes the whole document, Load reads it back.
package storage

import (
	"errors"

	"github.com/packworks/packtrack/internal/hunt"
)

// ErrStorage marks I/O failures. A missing backing file on first Load is
// not a storage error; adapters return an empty document instead.
var ErrStorage = errors.New("storage error")

// Document is the full persisted state for one pack. Revision increments on
// every save so concurrent writers can detect a lost update.
type Document struct {
	PackName string       `json:"packName"`
	Revision int64        `json:"revision"`
	Hunts    []*hunt.Hunt `json:"hunts"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		PackName: d.PackName,
		Revision: d.Revision,
		Hunts:    make([]*hunt.Hunt, len(d.Hunts)),
	}
	for i, h := range d.Hunts {
		c.Hunts[i] = h.Clone()
	}
	return c
}

// Store is the persistence port injected into the registry.
type Store interface {
	// Load reads the current document. A store that has never been saved
	// returns an empty document, not an error.
	Load() (*Document, error)
	// Save replaces the stored document with a full snapshot.
	Save(doc *Document) error
	Close() error
}
