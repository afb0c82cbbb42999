package health

import "sync"

type productEntry struct {
	url      *string
	editions map[string]EditionResult
}

// Store is the shared result map of one aggregation run. Every mutation is a
// short critical section under a single mutex.
type Store struct {
	mu       sync.Mutex
	products map[ProductKey]*productEntry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{products: make(map[ProductKey]*productEntry)}
}

// entry returns the product record for key, creating it with a nil url.
// Callers must hold s.mu.
func (s *Store) entry(key ProductKey) *productEntry {
	e, ok := s.products[key]
	if !ok {
		e = &productEntry{editions: make(map[string]EditionResult)}
		s.products[key] = e
	}
	return e
}

// PutProduct records a product's published URL. Existing edition entries
// are kept.
func (s *Store) PutProduct(key ProductKey, publishedURL *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(key).url = cloneString(publishedURL)
}

// RecordFailure records a failed stage under the failing URL, creating the
// product with a nil url if it does not exist yet.
func (s *Store) RecordFailure(key ProductKey, r EditionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(key).editions[r.URL] = r
}

// PutEdition records an edition result under editionKey.
func (s *Store) PutEdition(key ProductKey, editionKey string, r EditionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(key).editions[editionKey] = r
}

// ClearProductURL sets a product's url to nil.
func (s *Store) ClearProductURL(key ProductKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.products[key]; ok {
		e.url = nil
	}
}

// Len returns the number of products recorded.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.products)
}

// Snapshot returns a deep copy of the store as a Report. When an unresolved
// URL key and a slug render the same string, the slug wins.
func (s *Store) Snapshot() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := make(Report, len(s.products))
	for _, resolved := range []bool{false, true} {
		for key, e := range s.products {
			if key.Resolved() != resolved {
				continue
			}
			editions := make(map[string]EditionResult, len(e.editions))
			for k, v := range e.editions {
				editions[k] = v
			}
			report[key.String()] = ProductReport{URL: cloneString(e.url), Editions: editions}
		}
	}
	return report
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
