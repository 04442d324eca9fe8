package compress

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates one display frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Cancel withdraws a scheduled callback. Calling it after the callback ran,
// or more than once, is harmless.
type Cancel func()

// Scheduler runs a callback at the next frame.
type Scheduler interface {
	Schedule(fn func()) Cancel
}

// FrameScheduler schedules callbacks on a timer, one frame interval ahead.
type FrameScheduler struct {
	Interval time.Duration
}

// Schedule implements [Scheduler].
func (s FrameScheduler) Schedule(fn func()) Cancel {
	d := s.Interval
	if d <= 0 {
		d = DefaultFrameInterval
	}
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues callbacks until RunFrame is called. It drives the
// convergent engine from tests and from the terminal UI's tick loop.
type ManualScheduler struct {
	mu      sync.Mutex
	next    int
	pending map[int]func()
	order   []int
}

// NewManualScheduler returns an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[int]func())}
}

// Schedule implements [Scheduler].
func (s *ManualScheduler) Schedule(fn func()) Cancel {
	s.mu.Lock()
	id := s.next
	s.next++
	s.pending[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// RunFrame runs the callbacks queued before the call and returns how many
// ran. Callbacks scheduled while the frame runs wait for the next frame.
func (s *ManualScheduler) RunFrame() int {
	s.mu.Lock()
	var fns []func()
	for _, id := range s.order {
		if fn, ok := s.pending[id]; ok {
			fns = append(fns, fn)
			delete(s.pending, id)
		}
	}
	s.order = s.order[:0]
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// RunUntilIdle runs frames until nothing is pending or limit frames have
// run, and returns the number of frames.
func (s *ManualScheduler) RunUntilIdle(limit int) int {
	frames := 0
	for frames < limit && s.Pending() > 0 {
		s.RunFrame()
		frames++
	}
	return frames
}
