package restart

import (
	"strconv"
	"sync"
)

// SessionStore caches the session id and per-(session, set index) subset
// identifiers across restarts of the tool. It is a resumption hint only and
// is never authoritative; server responses always overwrite it.
type SessionStore interface {
	SessionID() (string, bool, error)
	SetSessionID(id string) error
	ClearSessionID() error
	SubsetID(sessionID string, setIndex int) (string, bool, error)
	SetSubsetID(sessionID string, setIndex int, subsetID string) error
	ClearSubsetIDs(sessionID string) error
}

// MemorySessionStore is an in-memory SessionStore for tests and one-shot
// invocations that must not touch the durable cache.
type MemorySessionStore struct {
	mu      sync.Mutex
	session string
	subsets map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{subsets: make(map[string]string)}
}

func (s *MemorySessionStore) SessionID() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.session != "", nil
}

func (s *MemorySessionStore) SetSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = id
	return nil
}

func (s *MemorySessionStore) ClearSessionID() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = ""
	return nil
}

func (s *MemorySessionStore) SubsetID(sessionID string, setIndex int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.subsets[memorySubsetKey(sessionID, setIndex)]
	return id, ok && id != "", nil
}

func (s *MemorySessionStore) SetSubsetID(sessionID string, setIndex int, subsetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subsets == nil {
		s.subsets = make(map[string]string)
	}
	s.subsets[memorySubsetKey(sessionID, setIndex)] = subsetID
	return nil
}

func (s *MemorySessionStore) ClearSubsetIDs(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := sessionID + "\x00"
	for key := range s.subsets {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.subsets, key)
		}
	}
	return nil
}

func memorySubsetKey(sessionID string, setIndex int) string {
	return sessionID + "\x00" + strconv.Itoa(setIndex)
}
