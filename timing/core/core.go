// Package core provides the tickable CPU core model.
// It wraps the pipeline engine so that a clock, real or simulated, can
// drive it one cycle per tick.
package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of cycles EX held an instruction.
	Stalls uint64
	// Hazards is the number of entries in the hazard log.
	Hazards int
}

// Core represents a cycle-level CPU core model.
// It wraps a 5-stage pipeline and satisfies sim.Ticker.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	ticks uint64
}

var _ sim.Ticker = (*Core)(nil)

// NewCore creates a new Core around p.
func NewCore(p *pipeline.Pipeline) *Core {
	return &Core{Pipeline: p}
}

// Tick executes one pipeline cycle. It returns false, without stepping, once
// the program has completed.
func (c *Core) Tick() bool {
	if c.Pipeline.IsComplete() {
		return false
	}

	c.Pipeline.Step()
	c.ticks++

	return true
}

// Ticks returns the number of Tick calls that stepped the pipeline. This
// includes the fill edge, which the cycle counter does not count.
func (c *Core) Ticks() uint64 {
	return c.ticks
}

// Halted returns true if the program has completed.
func (c *Core) Halted() bool {
	return c.Pipeline.IsComplete()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Pipeline.State()
	return Stats{
		Cycles:       s.Cycle,
		Instructions: s.Completed,
		Stalls:       s.StallCycles,
		Hazards:      len(s.Hazards),
	}
}

// Run executes the core until it halts and returns the final statistics.
func (c *Core) Run() Stats {
	for c.Tick() {
	}
	return c.Stats()
}

// RunCycles executes the core for at most the specified number of ticks.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles; i++ {
		if !c.Tick() {
			return false
		}
	}
	return !c.Halted()
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.Pipeline.Reset()
	c.ticks = 0
}
