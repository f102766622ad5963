package client

import (
	"sync"
	"sync/atomic"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

// ProgressLog is the ordered progress history of one generation.
// An event identical to the one before it is not recorded again.
type ProgressLog struct {
	mu     sync.Mutex
	events []models.ProgressEvent
}

// NewProgressLog creates an empty log
func NewProgressLog() *ProgressLog {
	return &ProgressLog{}
}

// Append records event and reports whether it was new
func (l *ProgressLog) Append(event models.ProgressEvent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.events); n > 0 && l.events[n-1] == event {
		return false
	}
	l.events = append(l.events, event)
	return true
}

// Events returns a copy of the recorded events
func (l *ProgressLog) Events() []models.ProgressEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ProgressEvent(nil), l.events...)
}

// Len returns the number of recorded events
func (l *ProgressLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Epoch hands out monotonically increasing generation ids. A caller that
// starts a new generation makes every earlier ticket stale, and should drop
// progress and results delivered for stale tickets.
type Epoch struct {
	current atomic.Uint64
}

// Ticket identifies one generation issued from an Epoch
type Ticket struct {
	id    uint64
	epoch *Epoch
}

// Begin starts a new generation, superseding all earlier tickets
func (e *Epoch) Begin() Ticket {
	return Ticket{id: e.current.Add(1), epoch: e}
}

// ID returns the generation id
func (t Ticket) ID() uint64 {
	return t.id
}

// Current reports whether no newer generation has begun
func (t Ticket) Current() bool {
	return t.epoch != nil && t.epoch.current.Load() == t.id
}
