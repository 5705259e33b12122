package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/packworks/packtrack/internal/hunt"
)

// sampleDocument builds a populated document with fixed timestamps so
// round-trip comparisons are exact.
func sampleDocument() *Document {
	started := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ended := started.Add(90 * time.Minute)
	duration := 90
	completed := started.Add(3 * time.Hour)

	return &Document{
		PackName: "nightpack",
		Revision: 7,
		Hunts: []*hunt.Hunt{
			{
				ID:           "hunt-001",
				FeatureName:  "Checkout flow",
				Description:  "Rework the checkout",
				PackName:     "nightpack",
				TeamSize:     3,
				Status:       hunt.StatusCompleted,
				CurrentPhase: "testing",
				CurrentRole:  "alice",
				StartedAt:    started,
				CompletedAt:  &completed,
				PhaseHistory: []hunt.PhaseRecord{
					{Phase: "requirements", Assignee: "alice", StartTime: started, EndTime: &ended, Duration: &duration},
					{Phase: "spec", Assignee: "bob", StartTime: ended},
				},
				Metrics: hunt.Metrics{TotalDuration: 180, TestCoverage: 82.5, QualityScore: 4.2, BugsFound: 1},
			},
			{
				ID:          "hunt-002",
				FeatureName: "Search filters",
				PackName:    "nightpack",
				TeamSize:    3,
				Status:      hunt.StatusPending,
			},
		},
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "hunts.json"))

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if doc.Revision != 0 || len(doc.Hunts) != 0 {
		t.Errorf("expected empty document, got revision %d with %d hunts", doc.Revision, len(doc.Hunts))
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "hunts.json"))

	want := sampleDocument()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestFileStore_EmptyThenPopulated(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "hunts.json"))

	if err := s.Save(&Document{PackName: "nightpack", Revision: 1}); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Hunts) != 0 {
		t.Fatalf("expected no hunts, got %d", len(doc.Hunts))
	}

	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("Save populated: %v", err)
	}
	doc, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Hunts) != 2 {
		t.Errorf("expected 2 hunts, got %d", len(doc.Hunts))
	}
}

func TestFileStore_SaveMissingDirectory(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "no-such-dir", "hunts.json"))
	err := s.Save(sampleDocument())
	if !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "hunts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	want := sampleDocument()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "hunts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Revision != 0 || len(doc.Hunts) != 0 {
		t.Errorf("expected empty document, got revision %d with %d hunts", doc.Revision, len(doc.Hunts))
	}
}

func TestSQLiteStore_SaveReplacesSnapshot(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "hunts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	smaller := sampleDocument()
	smaller.Hunts = smaller.Hunts[:1]
	smaller.Revision = 8
	if err := s.Save(smaller); err != nil {
		t.Fatalf("Save smaller: %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Hunts) != 1 {
		t.Errorf("expected snapshot replacement to leave 1 hunt, got %d", len(doc.Hunts))
	}
	if doc.Revision != 8 {
		t.Errorf("expected revision 8, got %d", doc.Revision)
	}
}

func TestMemoryStore_Isolation(t *testing.T) {
	s := NewMemoryStore()

	doc := sampleDocument()
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's document must not affect the stored copy.
	doc.Hunts[0].FeatureName = "changed"

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Hunts[0].FeatureName != "Checkout flow" {
		t.Errorf("store shared memory with caller: %q", got.Hunts[0].FeatureName)
	}
}

func TestMemoryStore_FailSaves(t *testing.T) {
	s := NewMemoryStore()
	s.FailSaves = true
	if err := s.Save(sampleDocument()); !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}
