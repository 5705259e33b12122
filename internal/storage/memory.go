package storage

// MemoryStore keeps the document in process memory. Used in tests and
// anywhere persistence is not wanted. Load and Save both deep-copy so the
// caller and the store never share hunt pointers.
type MemoryStore struct {
	doc *Document

	// FailSaves makes every Save return ErrStorage. Tests use it to verify
	// that the registry neither mutates in-memory state nor emits events
	// when persistence fails.
	FailSaves bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: &Document{}}
}

func (s *MemoryStore) Load() (*Document, error) {
	return s.doc.Clone(), nil
}

func (s *MemoryStore) Save(doc *Document) error {
	if s.FailSaves {
		return ErrStorage
	}
	s.doc = doc.Clone()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
