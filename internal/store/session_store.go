package store

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketSession   = []byte("session")
	bucketSubsetIDs = []byte("subset_ids")
	keySessionID    = []byte("session_id")
)

// BoltSessionStore is the durable resumption cache. It holds the current
// session id and per-(session, set index) subset identifiers. It is a pure
// cache: values are hints only and are always overwritten once server truth
// has been fetched.
type BoltSessionStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func Open(path string) (*BoltSessionStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("session store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltSessionStore{db: db}, nil
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSession); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketSubsetIDs); err != nil {
			return err
		}
		return nil
	})
}

func (s *BoltSessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltSessionStore) SessionID() (string, bool, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		id = string(b.Get(keySessionID))
		return nil
	})
	if err != nil {
		return "", false, err
	}
	id = strings.TrimSpace(id)
	return id, id != "", nil
}

func (s *BoltSessionStore) SetSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("session id is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return errors.New("session bucket missing")
		}
		return b.Put(keySessionID, []byte(id))
	})
}

func (s *BoltSessionStore) ClearSessionID() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return errors.New("session bucket missing")
		}
		return b.Delete(keySessionID)
	})
}

func (s *BoltSessionStore) SubsetID(sessionID string, setIndex int) (string, bool, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSubsetIDs)
		if b == nil {
			return nil
		}
		id = string(b.Get(subsetKey(sessionID, setIndex)))
		return nil
	})
	if err != nil {
		return "", false, err
	}
	id = strings.TrimSpace(id)
	return id, id != "", nil
}

func (s *BoltSessionStore) SetSubsetID(sessionID string, setIndex int, subsetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subsetID = strings.TrimSpace(subsetID)
	if strings.TrimSpace(sessionID) == "" || subsetID == "" {
		return errors.New("subset id cache requires session id and subset id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSubsetIDs)
		if b == nil {
			return errors.New("subset ids bucket missing")
		}
		return b.Put(subsetKey(sessionID, setIndex), []byte(subsetID))
	})
}

// ClearSubsetIDs removes every cached subset identifier for the session.
// Missing entries are not an error; the cache may legitimately be empty.
func (s *BoltSessionStore) ClearSubsetIDs(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSubsetIDs)
		if b == nil {
			return errors.New("subset ids bucket missing")
		}
		prefix := subsetSessionPrefix(sessionID)
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func subsetSessionPrefix(sessionID string) []byte {
	return []byte(strings.TrimSpace(sessionID) + "\x00")
}

func subsetKey(sessionID string, setIndex int) []byte {
	return []byte(strings.TrimSpace(sessionID) + "\x00" + strconv.Itoa(setIndex))
}
