// Package session remembers which reply keyboard each user was last shown.
// It is the only per-user state the bot keeps and is lost on restart, in
// which case users fall back to the main menu.
package session

import "sync"

// KeyboardContext identifies the set of buttons currently displayed.
type KeyboardContext int

const (
	MainMenu KeyboardContext = iota
	ConsultMenu
	ConsentPending
)

func (k KeyboardContext) String() string {
	switch k {
	case ConsultMenu:
		return "consult_menu"
	case ConsentPending:
		return "consent_pending"
	default:
		return "main_menu"
	}
}

// Store is a concurrency-safe map from user id to keyboard context.
type Store struct {
	mu   sync.RWMutex
	byID map[int64]KeyboardContext
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[int64]KeyboardContext)}
}

// Get returns the user's context, MainMenu when unknown.
func (s *Store) Get(userID int64) KeyboardContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[userID]
}

// Set records the keyboard just shown to the user. MainMenu is stored as
// absence so the map only holds users in a sub-menu.
func (s *Store) Set(userID int64, k KeyboardContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k == MainMenu {
		delete(s.byID, userID)
		return
	}
	s.byID[userID] = k
}

// Len returns the number of users outside the main menu.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
