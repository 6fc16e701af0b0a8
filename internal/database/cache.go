package database

import (
	"context"
	"errors"
	"sync"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

// CachedStore wraps a Store with lookup caches for bulk imports, where the same
// school names and upstream person ids are resolved many times.
type CachedStore struct {
	Store

	schoolCache   map[string]int64
	schoolCacheMu sync.RWMutex

	personCache   map[string]int64
	personCacheMu sync.RWMutex
}

// NewCachedStore creates a new cached store
func NewCachedStore(store Store) *CachedStore {
	return &CachedStore{
		Store:       store,
		schoolCache: make(map[string]int64),
		personCache: make(map[string]int64),
	}
}

// GetOrCreateSchool gets or creates a school with caching
func (s *CachedStore) GetOrCreateSchool(ctx context.Context, name string) (int64, error) {
	key := classifier.SearchKey(classifier.NormalizeText(name))

	s.schoolCacheMu.RLock()
	if id, ok := s.schoolCache[key]; ok {
		s.schoolCacheMu.RUnlock()
		return id, nil
	}
	s.schoolCacheMu.RUnlock()

	id, err := s.Store.GetOrCreateSchool(ctx, name)
	if err != nil {
		return 0, err
	}

	s.schoolCacheMu.Lock()
	s.schoolCache[key] = id
	s.schoolCacheMu.Unlock()

	return id, nil
}

// UpsertPerson upserts through the wrapped store and remembers the external id mapping
func (s *CachedStore) UpsertPerson(ctx context.Context, person *Person) (int64, error) {
	id, err := s.Store.UpsertPerson(ctx, person)
	if err != nil {
		return 0, err
	}
	if person.ExternalID != nil {
		s.personCacheMu.Lock()
		s.personCache[*person.ExternalID] = id
		s.personCacheMu.Unlock()
	}
	return id, nil
}

// PersonIDByExternalID resolves an upstream person id, consulting the cache first.
// The boolean is false when no person carries that id.
func (s *CachedStore) PersonIDByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	s.personCacheMu.RLock()
	if id, ok := s.personCache[externalID]; ok {
		s.personCacheMu.RUnlock()
		return id, true, nil
	}
	s.personCacheMu.RUnlock()

	person, err := s.Store.GetPersonByExternalID(ctx, externalID)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	s.personCacheMu.Lock()
	s.personCache[externalID] = person.ID
	s.personCacheMu.Unlock()

	return person.ID, true, nil
}
