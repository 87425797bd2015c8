package qualify

import (
	"fmt"
	"sync"
	"time"
)

// TaxonomyStore manages taxonomy persistence and retrieval.
type TaxonomyStore interface {
	// Add a new taxonomy
	Add(tax *Taxonomy) error

	// Get a taxonomy by ID
	Get(id string) (*Taxonomy, error)

	// List all active taxonomies
	ListActive() ([]*Taxonomy, error)

	// Update an existing taxonomy
	Update(tax *Taxonomy) error

	// Delete a taxonomy
	Delete(id string) error
}

// InMemoryTaxonomyStore implements TaxonomyStore with a map. It backs the
// server when no database is configured, and the unit tests.
type InMemoryTaxonomyStore struct {
	taxonomies map[string]*Taxonomy
	mu         sync.RWMutex
}

// NewInMemoryTaxonomyStore creates an empty in-memory store.
func NewInMemoryTaxonomyStore() *InMemoryTaxonomyStore {
	return &InMemoryTaxonomyStore{
		taxonomies: make(map[string]*Taxonomy),
	}
}

// Add stores a new taxonomy, enforcing unique IDs.
func (s *InMemoryTaxonomyStore) Add(tax *Taxonomy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.taxonomies[tax.ID]; exists {
		return fmt.Errorf("taxonomy with ID %s already exists", tax.ID)
	}

	now := time.Now()
	tax.CreatedAt = now
	tax.UpdatedAt = now
	s.taxonomies[tax.ID] = tax
	return nil
}

// Get retrieves a taxonomy by ID.
func (s *InMemoryTaxonomyStore) Get(id string) (*Taxonomy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tax, exists := s.taxonomies[id]
	if !exists {
		return nil, fmt.Errorf("taxonomy with ID %s not found", id)
	}
	return tax, nil
}

// ListActive returns all active taxonomies.
func (s *InMemoryTaxonomyStore) ListActive() ([]*Taxonomy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*Taxonomy
	for _, tax := range s.taxonomies {
		if tax.Active {
			active = append(active, tax)
		}
	}
	return active, nil
}

// Update replaces an existing taxonomy, preserving its CreatedAt.
func (s *InMemoryTaxonomyStore) Update(tax *Taxonomy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.taxonomies[tax.ID]
	if !exists {
		return fmt.Errorf("taxonomy with ID %s not found", tax.ID)
	}

	tax.CreatedAt = existing.CreatedAt
	tax.UpdatedAt = time.Now()
	s.taxonomies[tax.ID] = tax
	return nil
}

// Delete removes a taxonomy from the store.
func (s *InMemoryTaxonomyStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.taxonomies[id]; !exists {
		return fmt.Errorf("taxonomy with ID %s not found", id)
	}

	delete(s.taxonomies, id)
	return nil
}
