// Package favorites holds the user's favorited creature IDs and keeps
// in-memory views consistent when a favorite is toggled.
package favorites

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/derickschaefer/dex/internal/store"
)

// StorageKey is the settings key holding the favorited IDs.
const StorageKey = "favoritePokemonIds"

// Set is an unordered set of creature IDs.
type Set map[int]struct{}

// NewSet builds a Set from ids.
func NewSet(ids ...int) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the IDs in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Store is the durable favorites set. Every read reloads from the backend
// and every mutation writes the whole set back before returning, so stores
// sharing a backend always agree. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	settings store.Settings
}

// NewStore returns a Store persisting to settings.
func NewStore(settings store.Settings) *Store {
	return &Store{settings: settings}
}

// All returns the current set. A backend read error is logged and yields
// an empty set.
func (s *Store) All() Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load()
	if err != nil {
		slog.Warn("favorites read failed", "err", err)
		return Set{}
	}
	return set
}

// Contains reports whether id is favorited. A backend read error counts as
// not favorited.
func (s *Store) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load()
	if err != nil {
		slog.Warn("favorites read failed", "id", id, "err", err)
		return false
	}
	return set.Has(id)
}

// Add favorites id. Adding an ID already present does not write.
func (s *Store) Add(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load()
	if err != nil {
		return err
	}
	if set.Has(id) {
		return nil
	}
	set[id] = struct{}{}
	return s.save(set)
}

// AddMany favorites every id in one write.
func (s *Store) AddMany(ids []int) (added int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load()
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if !set.Has(id) {
			set[id] = struct{}{}
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.save(set)
}

// Remove unfavorites id. Removing an absent ID does not write.
func (s *Store) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load()
	if err != nil {
		return err
	}
	if !set.Has(id) {
		return nil
	}
	delete(set, id)
	return s.save(set)
}

// Toggle flips id's membership and returns the new state.
func (s *Store) Toggle(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load()
	if err != nil {
		return false, err
	}
	now := !set.Has(id)
	if now {
		set[id] = struct{}{}
	} else {
		delete(set, id)
	}
	if err := s.save(set); err != nil {
		return !now, err
	}
	return now, nil
}

// Clear empties the set.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(Set{})
}

// ─── Persistence ──────────────────────────────────────────────────────────────

func (s *Store) load() (Set, error) {
	data, found, err := s.settings.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("reading favorites: %w", err)
	}
	if !found || len(data) == 0 {
		return Set{}, nil
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding favorites %q: %w", StorageKey, err)
	}
	return NewSet(ids...), nil
}

// save writes the set as a sorted JSON array.
func (s *Store) save(set Set) error {
	data, err := json.Marshal(set.Sorted())
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}
	if err := s.settings.Set(StorageKey, data); err != nil {
		return fmt.Errorf("writing favorites: %w", err)
	}
	return nil
}
