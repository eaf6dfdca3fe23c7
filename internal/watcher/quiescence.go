package watcher

import (
	"sync"
	"time"
)

// DefaultQuiescenceDuration is how long a file must stay unchanged before
// its change is reported.
const DefaultQuiescenceDuration = 250 * time.Millisecond

// QuiescenceTracker manages per-file debounce timers.
// When a file stops being written to for the quiescence duration,
// the callback fires once for the whole burst.
type QuiescenceTracker struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	duration time.Duration
	callback func(filePath string)
	stopped  bool
}

func NewQuiescenceTracker(duration time.Duration, callback func(filePath string)) *QuiescenceTracker {
	return &QuiescenceTracker{
		timers:   make(map[string]*time.Timer),
		duration: duration,
		callback: callback,
	}
}

// Touch resets the quiescence timer for a file.
func (q *QuiescenceTracker) Touch(filePath string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}

	if timer, ok := q.timers[filePath]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(q.duration, func() {
		q.mu.Lock()
		// A later Touch replaced this timer; let that one fire.
		if q.stopped || q.timers[filePath] != timer {
			q.mu.Unlock()
			return
		}
		delete(q.timers, filePath)
		q.mu.Unlock()

		q.callback(filePath)
	})
	q.timers[filePath] = timer
}

// Pending returns how many files are waiting to settle.
func (q *QuiescenceTracker) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers)
}

// Stop cancels all pending timers. Touch is a no-op afterwards.
func (q *QuiescenceTracker) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, timer := range q.timers {
		timer.Stop()
	}
	q.timers = make(map[string]*time.Timer)
	q.stopped = true
}
