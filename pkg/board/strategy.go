package board

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightchart/pkg/compress"
)

// Strategy is a viewport-specific way of sizing the board. The board holds
// its lock while calling these methods; a strategy reports synchronous
// compression changes through its results and asynchronous ones through the
// callback it was built with.
type Strategy interface {
	// Name is "desktop" or "mobile".
	Name() string

	// Mode names the compression engine.
	Mode() compress.Mode

	// Metrics returns the layout constants.
	Metrics() Metrics

	// Compression returns the current multiplier.
	Compression() float64

	// Activate is called when the board switches to this strategy.
	Activate() (changed bool)

	// Deactivate cancels any background work.
	Deactivate()

	// AvatarsChanged is called after the avatar set changed.
	AvatarsChanged(countChanged bool) (changed bool)

	// Resized is called once a burst of container resizes settles.
	Resized() (changed bool)
}

// =============================================================================
// Desktop
// =============================================================================

// desktop recomputes in one jump from natural widths.
type desktop struct {
	metrics Metrics
	engine  *compress.Continuous
	natural func() compress.Measurement // natural widths; board lock held
}

func newDesktop(m Metrics, natural func() compress.Measurement) *desktop {
	return &desktop{
		metrics: m,
		engine:  compress.NewContinuous(m.Bounds, m.Margin),
		natural: natural,
	}
}

func (d *desktop) Name() string             { return "desktop" }
func (d *desktop) Mode() compress.Mode      { return compress.ModeContinuous }
func (d *desktop) Metrics() Metrics         { return d.metrics }
func (d *desktop) Compression() float64     { return d.engine.Value() }
func (d *desktop) Activate() bool           { return d.recompute() }
func (d *desktop) Deactivate()              {}
func (d *desktop) AvatarsChanged(bool) bool { return d.recompute() }
func (d *desktop) Resized() bool            { return d.recompute() }

func (d *desktop) recompute() bool {
	m := d.natural()
	_, changed := d.engine.Recompute(m.Count, m.Total, m.Available)
	return changed
}

// =============================================================================
// Mobile
// =============================================================================

// mobile converges frame by frame.
type mobile struct {
	metrics Metrics
	engine  *compress.Convergent
}

func newMobile(m Metrics, sched compress.Scheduler, measure compress.MeasureFunc, onChange func(float64), logger *log.Logger) *mobile {
	return &mobile{
		metrics: m,
		engine: compress.NewConvergent(compress.ConvergentConfig{
			Bounds:    m.Bounds,
			Step:      m.Step,
			Scheduler: sched,
			Measure:   measure,
			OnChange:  onChange,
			Logger:    logger,
		}),
	}
}

func (m *mobile) Name() string         { return "mobile" }
func (m *mobile) Mode() compress.Mode  { return compress.ModeConvergent }
func (m *mobile) Metrics() Metrics     { return m.metrics }
func (m *mobile) Compression() float64 { return m.engine.Value() }
func (m *mobile) Deactivate()          { m.engine.Stop() }

func (m *mobile) Activate() bool {
	m.engine.Start()
	return false
}

// AvatarsChanged restarts convergence only when the count changed; edits
// that keep the count are picked up on the next count change or resize.
func (m *mobile) AvatarsChanged(countChanged bool) bool {
	if countChanged {
		m.engine.Start()
	}
	return false
}

func (m *mobile) Resized() bool {
	m.engine.Start()
	return false
}
