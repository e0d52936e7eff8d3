package driver

import (
	"context"
	"sync"

	"github.com/sarchlab/pipesim/log"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOnStep sets a callback invoked with the new state after every cycle.
// Callbacks run with the runner locked and must not call back into it.
func WithOnStep(f func(pipeline.SimulationState)) RunnerOption {
	return func(r *Runner) {
		r.onStep = f
	}
}

// WithOnComplete sets a callback invoked once when the program completes.
func WithOnComplete(f func(pipeline.SimulationState)) RunnerOption {
	return func(r *Runner) {
		r.onComplete = f
	}
}

// Runner steps a core from a Ticker and mirrors its run/pause status into
// the engine's Running and Paused flags.
type Runner struct {
	core   *core.Core
	ticker Ticker

	onStep     func(pipeline.SimulationState)
	onComplete func(pipeline.SimulationState)

	mu     sync.Mutex
	active bool
	gen    uint64
}

// NewRunner creates a runner that drives c from t.
func NewRunner(c *core.Core, t Ticker, opts ...RunnerOption) *Runner {
	r := &Runner{
		core:   c,
		ticker: t,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start begins stepping in the background. It returns ErrAlreadyRunning if
// a run is in progress.
func (r *Runner) Start() error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.active = true
	r.gen++
	gen := r.gen
	r.setFlags(true, false)
	r.mu.Unlock()

	// A paused run may still be winding down.
	<-r.ticker.Done()

	if err := r.ticker.Start(func() bool { return r.tick(gen) }); err != nil {
		r.mu.Lock()
		r.active = false
		r.setFlags(false, false)
		r.mu.Unlock()
		return err
	}

	log.Debug(log.DriverModule, "run started", "gen", gen)

	return nil
}

// Pause stops stepping and marks the engine paused. The run can be resumed
// with Start.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}

	r.active = false
	r.ticker.Stop()
	r.setFlags(false, true)

	log.Debug(log.DriverModule, "run paused", "cycle", r.core.Stats().Cycles)
}

// Stop stops stepping and clears both flags.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = false
	r.ticker.Stop()
	r.setFlags(false, false)

	log.Debug(log.DriverModule, "run stopped", "cycle", r.core.Stats().Cycles)
}

// Step advances one cycle by hand. It is refused while a run is active.
func (r *Runner) Step() (pipeline.SimulationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return pipeline.SimulationState{}, ErrAlreadyRunning
	}

	stepped := r.core.Tick()
	s := r.core.Pipeline.State()
	if stepped && r.onStep != nil {
		r.onStep(s)
	}

	return s, nil
}

// Running returns true while a run is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// State returns a copy of the engine state.
func (r *Runner) State() pipeline.SimulationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.core.Pipeline.State()
}

// Wait blocks until the current run ends or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	select {
	case <-r.ticker.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) tick(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || r.gen != gen {
		return false
	}

	if !r.core.Tick() {
		r.finish()
		return false
	}

	s := r.core.Pipeline.State()
	if r.onStep != nil {
		r.onStep(s)
	}

	if r.core.Halted() {
		r.finish()
		return false
	}

	return true
}

func (r *Runner) finish() {
	r.active = false
	r.setFlags(false, false)

	log.Debug(log.DriverModule, "run complete", "cycle", r.core.Stats().Cycles)

	if r.onComplete != nil {
		r.onComplete(r.core.Pipeline.State())
	}
}

func (r *Runner) setFlags(running, paused bool) {
	r.core.Pipeline.SetState(pipeline.StateUpdate{
		Running: pipeline.Bool(running),
		Paused:  pipeline.Bool(paused),
	})
}
