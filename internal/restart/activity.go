package restart

import (
	"sync"
	"time"
)

// DefaultActivityCapacity bounds the in-memory activity log.
const DefaultActivityCapacity = 50

type ActivityCategory string

const (
	ActivitySession  ActivityCategory = "session"
	ActivityStatus   ActivityCategory = "status"
	ActivityStep     ActivityCategory = "step"
	ActivityAck      ActivityCategory = "ack"
	ActivityAPIError ActivityCategory = "api-error"
	ActivityNoop     ActivityCategory = "noop"
)

type ActivityEntry struct {
	At       time.Time
	Category ActivityCategory
	Message  string
	Payload  map[string]string
}

// ActivityLog is a bounded, most-recent-first record of coordinator events.
// It exists for operator visibility only and is never persisted.
type ActivityLog struct {
	mu      sync.Mutex
	cap     int
	entries []ActivityEntry
	now     func() time.Time
}

func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityLog{
		cap: capacity,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (l *ActivityLog) Record(category ActivityCategory, message string, payload map[string]string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := ActivityEntry{
		At:       l.now(),
		Category: category,
		Message:  message,
	}
	if len(payload) > 0 {
		entry.Payload = make(map[string]string, len(payload))
		for k, v := range payload {
			entry.Payload[k] = v
		}
	}
	l.entries = append([]ActivityEntry{entry}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Entries returns a copy, most recent first.
func (l *ActivityLog) Entries() []ActivityEntry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ActivityEntry(nil), l.entries...)
}

func (l *ActivityLog) Reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
