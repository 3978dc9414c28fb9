package executor

// ObjectStore is the per-run mapping from producing output pin to the
// value object it produced. Values are held as direct references with no
// encode/decode step, so identity and mutation visibility are preserved
// exactly as the user function produced them.
type ObjectStore struct {
	values map[string]any
}

// NewObjectStore creates an empty store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{values: make(map[string]any)}
}

// Set records the value produced by an output pin.
func (s *ObjectStore) Set(pinID string, value any) {
	s.values[pinID] = value
}

// Get returns the value produced by an output pin.
func (s *ObjectStore) Get(pinID string) (any, bool) {
	v, ok := s.values[pinID]

	return v, ok
}

// Reset discards all produced values.
func (s *ObjectStore) Reset() {
	s.values = make(map[string]any)
}

// Len returns the number of stored values.
func (s *ObjectStore) Len() int {
	return len(s.values)
}

// Snapshot returns a shallow copy of the store contents. The values
// themselves are the shared references, not copies.
func (s *ObjectStore) Snapshot() map[string]any {
	snapshot := make(map[string]any, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}

	return snapshot
}
