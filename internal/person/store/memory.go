package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"usermgmt/internal/person/models"
	"usermgmt/pkg/platform/sentinel"
)

// InMemory is the authoritative person collection for the life of the
// process. A single mutex guards every operation, so callers never observe a
// half-applied mutation. Records are kept in insertion order.
type InMemory struct {
	mu      sync.Mutex
	persons []models.Person
	index   map[string]int
	newID   func() string
}

type Option func(*InMemory)

// WithIDGenerator replaces the UUIDv4 generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *InMemory) {
		s.newID = gen
	}
}

func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{
		index: make(map[string]int),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a snapshot in insertion order. It never fails.
func (s *InMemory) List(_ context.Context) ([]models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]models.Person, 0, len(s.persons)), s.persons...), nil
}

// Get returns the person with the given id.
func (s *InMemory) Get(_ context.Context, id string) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return models.Person{}, fmt.Errorf("person %s: %w", id, sentinel.ErrNotFound)
	}
	return s.persons[pos], nil
}

// Create mints a fresh id, appends the record and returns it.
func (s *InMemory) Create(_ context.Context, draft models.Draft) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.mintID()
	if err != nil {
		return models.Person{}, err
	}
	p := models.Person{ID: id}
	draft.Apply(&p)

	s.index[id] = len(s.persons)
	s.persons = append(s.persons, p)
	return p, nil
}

// Update replaces the mutable fields of an existing person in place.
func (s *InMemory) Update(_ context.Context, id string, draft models.Draft) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return models.Person{}, fmt.Errorf("person %s: %w", id, sentinel.ErrNotFound)
	}
	draft.Apply(&s.persons[pos])
	return s.persons[pos], nil
}

// Delete removes exactly one record; survivors keep their relative order.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("person %s: %w", id, sentinel.ErrNotFound)
	}
	s.persons = append(s.persons[:pos], s.persons[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.persons); i++ {
		s.index[s.persons[i].ID] = i
	}
	return nil
}

// Count returns the number of stored persons.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.persons), nil
}

// maxMintAttempts bounds retries when a generator repeats itself.
const maxMintAttempts = 8

func (s *InMemory) mintID() (string, error) {
	for range maxMintAttempts {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not mint a unique person id after %d attempts", maxMintAttempts)
}
