// Package frame is the frame clock: callbacks requested during a frame run
// once, together, when the frame is flushed.
package frame

import (
	"context"
	"sync"
	"time"
)

type request struct {
	id     uint64
	fn     func()
	queued bool
}

// Scheduler queues callbacks for the next frame. Triggers may come from any
// goroutine; callbacks run on the goroutine calling Flush.
type Scheduler struct {
	mu     sync.Mutex
	queue  []*request
	nextID uint64
	frames uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Request schedules fn for the next frame and returns an id for Cancel.
func (s *Scheduler) Request(fn func()) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.queue = append(s.queue, &request{id: s.nextID, fn: fn, queued: true})
	return s.nextID
}

// Cancel removes a pending request. Unknown ids are ignored.
func (s *Scheduler) Cancel(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.queue {
		if r.id == id {
			r.queued = false
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// Debounce returns a trigger for fn. Any number of triggers before the next
// Flush run fn exactly once.
func (s *Scheduler) Debounce(fn func()) func() {
	r := &request{fn: fn}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r.queued {
			return
		}
		s.nextID++
		r.id = s.nextID
		r.queued = true
		s.queue = append(s.queue, r)
	}
}

// Flush runs every due callback in first-request order and returns how many
// ran. Callbacks requested while flushing wait for the next frame.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	due := s.queue
	s.queue = nil
	for _, r := range due {
		r.queued = false
	}
	s.frames++
	s.mu.Unlock()

	for _, r := range due {
		r.fn()
	}
	return len(due)
}

// Pending reports whether callbacks wait for the next frame.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

// Frames returns the number of flushes so far.
func (s *Scheduler) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Run flushes once per interval until ctx is done. onFrame, if set, is
// called after every flush that ran at least one callback.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, onFrame func(ran int)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.Flush(); n > 0 && onFrame != nil {
				onFrame(n)
			}
		}
	}
}
