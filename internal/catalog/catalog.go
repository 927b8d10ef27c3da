// Package catalog holds the price list of diagnostic tests. A Store is built
// once at startup from a spreadsheet (see Load) and is read-only afterwards,
// which makes it safe for concurrent use without locking.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/elix-bot/internal/domain"
)

// ErrEmpty is returned when a source yields no priced rows.
var ErrEmpty = errors.New("catalog: no entries")

// Store is an ordered, immutable set of catalog entries. Insertion order is
// the order of rows in the source file and is what the matcher uses to break
// score ties.
type Store struct {
	entries []domain.CatalogEntry
	byName  map[string]int
}

// New validates entries (non-empty names, unique names, non-negative
// prices) and returns a Store preserving their order.
func New(entries []domain.CatalogEntry) (*Store, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	s := &Store{
		entries: make([]domain.CatalogEntry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog: entry %d has an empty name", i+1)
		}
		if e.Price.IsNegative() {
			return nil, fmt.Errorf("catalog: %q has a negative price", name)
		}
		if _, dup := s.byName[name]; dup {
			return nil, fmt.Errorf("catalog: duplicate entry %q", name)
		}
		s.byName[name] = len(s.entries)
		s.entries = append(s.entries, domain.CatalogEntry{Name: name, Price: e.Price})
	}
	return s, nil
}

// Entries returns a copy of all entries in insertion order.
func (s *Store) Entries() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Lookup returns the entry with exactly the given canonical name.
func (s *Store) Lookup(name string) (domain.CatalogEntry, bool) {
	i, ok := s.byName[strings.TrimSpace(name)]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	return s.entries[i], true
}
