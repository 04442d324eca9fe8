package compress

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightchart/pkg/observability"
)

// Phase is the state of the convergence loop.
type Phase int

const (
	// Idle means no step is pending.
	Idle Phase = iota
	// Converging means exactly one step is scheduled.
	Converging
)

func (p Phase) String() string {
	if p == Converging {
		return "converging"
	}
	return "idle"
}

// MeasureFunc lays the avatar row out at the given compression and reports
// its width.
type MeasureFunc func(compression float64) Measurement

// ConvergentConfig configures a [Convergent] engine.
type ConvergentConfig struct {
	Bounds    Bounds
	Step      float64       // per-frame increment (DefaultStep when 0)
	Scheduler Scheduler     // FrameScheduler when nil
	Measure   MeasureFunc   // required
	OnChange  func(float64) // called outside the engine lock after each change
	Logger    *log.Logger   // log.Default() when nil
}

// Convergent walks the compression toward a fit one step per frame.
//
// Each step measures the row at the current compression. An overflowing row
// below Max steps up. A fitting row above Min steps down, but only when the
// row measured at the lower value still fits; without that check a row
// whose fit boundary falls between two steps would oscillate forever. A
// step that changes nothing moves the engine to [Idle]; any change
// schedules the next step.
//
// At most one step is ever pending. Start and Stop cancel it, and a step
// that was already running when it was cancelled discards its result.
type Convergent struct {
	mu       sync.Mutex
	bounds   Bounds
	step     float64
	sched    Scheduler
	measure  MeasureFunc
	onChange func(float64)
	logger   *log.Logger

	value  float64
	phase  Phase
	cancel Cancel
	gen    uint64 // bumped on every Start/Stop; stale steps compare against it
	steps  int    // steps taken in the current run
}

// NewConvergent returns an idle engine at Min.
func NewConvergent(cfg ConvergentConfig) *Convergent {
	b := cfg.Bounds.orDefault()
	c := &Convergent{
		bounds:   b,
		step:     cfg.Step,
		sched:    cfg.Scheduler,
		measure:  cfg.Measure,
		onChange: cfg.OnChange,
		logger:   cfg.Logger,
		value:    b.Min,
	}
	if c.step <= 0 {
		c.step = DefaultStep
	}
	if c.sched == nil {
		c.sched = FrameScheduler{}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Value returns the current compression.
func (c *Convergent) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Phase returns the loop state.
func (c *Convergent) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Bounds returns the configured range.
func (c *Convergent) Bounds() Bounds { return c.bounds }

// Start cancels any pending step and schedules a fresh one. It is the entry
// point for every external trigger: avatar count change, viewport flip or
// resize.
func (c *Convergent) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.steps = 0
	c.scheduleLocked()
}

// Stop cancels any pending step and returns to Idle, keeping the value.
func (c *Convergent) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.phase = Idle
}

// Reset stops the loop and returns the compression to Min.
func (c *Convergent) Reset() {
	c.mu.Lock()
	c.cancelLocked()
	c.phase = Idle
	changed := c.value != c.bounds.Min
	c.value = c.bounds.Min
	c.mu.Unlock()

	if changed && c.onChange != nil {
		c.onChange(c.bounds.Min)
	}
}

func (c *Convergent) cancelLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Convergent) scheduleLocked() {
	gen := c.gen
	c.phase = Converging
	c.cancel = c.sched.Schedule(func() { c.runStep(gen) })
}

// runStep performs one measurement. The engine lock is not held while
// measuring so the measure callback may read board state freely.
func (c *Convergent) runStep(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.measure == nil {
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	cur := c.value
	c.mu.Unlock()

	next := c.nextValue(cur)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	changed := next != cur
	c.value = next
	if changed {
		c.steps++
		c.scheduleLocked()
	} else {
		c.phase = Idle
		if c.steps > 0 {
			c.logger.Debug("compression converged", "value", next, "steps", c.steps)
		}
	}
	c.mu.Unlock()

	if changed {
		observability.Board().OnCompression(context.Background(), string(ModeConvergent), cur, next)
		if c.onChange != nil {
			c.onChange(next)
		}
	}
}

func (c *Convergent) nextValue(cur float64) float64 {
	m := c.measure(cur)
	switch {
	case m.Count == 0:
		return c.bounds.Min
	case !m.Fits() && cur < c.bounds.Max:
		return c.bounds.Clamp(cur + c.step)
	case m.Fits() && cur > c.bounds.Min:
		lower := c.bounds.Clamp(cur - c.step)
		if c.measure(lower).Fits() {
			return lower
		}
	}
	return cur
}
