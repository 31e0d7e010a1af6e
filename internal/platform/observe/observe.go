// Package observe is a small injectable event recorder. Managers record
// the operations they run; the recorder keeps a bounded ring of recent
// events for inspection. A nil *Recorder is valid and records nothing, so
// its absence never changes behavior.
package observe

import (
	"sync"
	"time"
)

type Event struct {
	Op  string
	At  time.Time
	Dur time.Duration
	Err string
}

type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
}

// NewRecorder keeps at most size events, overwriting the oldest.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 128
	}
	return &Recorder{events: make([]Event, size)}
}

func (r *Recorder) Record(op string, dur time.Duration, err error) {
	if r == nil {
		return
	}
	e := Event{Op: op, At: time.Now(), Dur: dur}
	if err != nil {
		e.Err = err.Error()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.filled = true
	}
}

// Recent returns the buffered events, oldest first.
func (r *Recorder) Recent() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.filled {
		out := make([]Event, r.next)
		copy(out, r.events[:r.next])
		return out
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	out = append(out, r.events[:r.next]...)
	return out
}
