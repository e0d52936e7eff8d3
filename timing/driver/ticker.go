// Package driver runs a pipeline on a clock. The engine itself is
// synchronous; a driver decides when Step is called and stops calling it to
// pause or stop a run.
package driver

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/log"
)

// ErrAlreadyRunning is returned when starting a ticker or runner that has
// not stopped yet.
var ErrAlreadyRunning = errors.New("already running")

// A Ticker calls tick repeatedly until tick returns false or Stop is called.
type Ticker interface {
	// Start begins ticking in the background and returns immediately.
	Start(tick func() bool) error

	// Stop asks the ticker to stop. It does not wait; tick is never called
	// again after the call in progress, if any, returns.
	Stop()

	// Done is closed once the current run has ended.
	Done() <-chan struct{}
}

// WallTicker ticks on a wall-clock interval.
type WallTicker struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewWallTicker creates a ticker firing once every interval.
func NewWallTicker(interval time.Duration) *WallTicker {
	return &WallTicker{
		interval: interval,
		done:     closedChan(),
	}
}

// Interval returns the time between ticks.
func (t *WallTicker) Interval() time.Duration {
	return t.interval
}

// Start implements Ticker.
func (t *WallTicker) Start(tick func() bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isClosed(t.done) {
		return ErrAlreadyRunning
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done

	go func() {
		defer close(done)

		clock := time.NewTicker(t.interval)
		defer clock.Stop()

		for {
			select {
			case <-stop:
				return
			case <-clock.C:
			}

			select {
			case <-stop:
				return
			default:
			}

			if !tick() {
				return
			}
		}
	}()

	return nil
}

// Stop implements Ticker.
func (t *WallTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil && !isClosed(t.stop) {
		close(t.stop)
	}
}

// Done implements Ticker.
func (t *WallTicker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// SimTicker ticks in simulated time on an akita serial engine, as fast as
// the host allows. The tick is wrapped in a ticking component clocked at
// Freq.
type SimTicker struct {
	freq sim.Freq

	mu      sync.Mutex
	stopped atomic.Bool
	done    chan struct{}
	ticks   atomic.Uint64
}

// NewSimTicker creates a virtual-time ticker with the given clock frequency.
func NewSimTicker(freq sim.Freq) *SimTicker {
	return &SimTicker{
		freq: freq,
		done: closedChan(),
	}
}

// Ticks returns the number of ticks delivered in the current or last run.
func (t *SimTicker) Ticks() uint64 {
	return t.ticks.Load()
}

// Start implements Ticker.
func (t *SimTicker) Start(tick func() bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isClosed(t.done) {
		return ErrAlreadyRunning
	}

	t.stopped.Store(false)
	t.ticks.Store(0)

	engine := sim.NewSerialEngine()
	clock := sim.NewTickingComponent("PipelineClock", engine, t.freq,
		tickFunc(func() bool {
			if t.stopped.Load() {
				return false
			}
			t.ticks.Add(1)
			return tick()
		}))
	clock.TickLater()

	done := make(chan struct{})
	t.done = done

	go func() {
		defer close(done)

		if err := engine.Run(); err != nil {
			log.Error(log.DriverModule, "simulation engine failed", "err", err)
		}
	}()

	return nil
}

// Stop implements Ticker.
func (t *SimTicker) Stop() {
	t.stopped.Store(true)
}

// Done implements Ticker.
func (t *SimTicker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// tickFunc adapts a function to sim.Ticker.
type tickFunc func() bool

func (f tickFunc) Tick() bool {
	return f()
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func isClosed(c chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
