package catalog

// Store holds the loaded catalog. It is immutable after Load returns:
// concurrent readers need no locking, and a reload builds a fresh Store
// that replaces this one wholesale.
type Store struct {
	records []MedicationRecord
	byCis   map[string]int
}

// Len returns the number of records in the catalog.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns all records in load order. Callers must not mutate
// the returned slice.
func (s *Store) Records() []MedicationRecord {
	if s == nil {
		return nil
	}
	return s.records
}

// Lookup returns the record for the given CIS code, or ErrNotFound.
func (s *Store) Lookup(cis string) (*MedicationRecord, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	idx, ok := s.byCis[cis]
	if !ok {
		return nil, ErrNotFound
	}
	return &s.records[idx], nil
}

// Has reports whether the catalog contains the given CIS code.
func (s *Store) Has(cis string) bool {
	if s == nil {
		return false
	}
	_, ok := s.byCis[cis]
	return ok
}
