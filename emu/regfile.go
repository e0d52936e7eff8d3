// Package emu provides the architectural state of the simulated processor
// (registers and data memory) and a functional, non-pipelined emulator.
package emu

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/pipesim/insts"
)

// initialRegisterRange bounds the random initial register contents.
const initialRegisterRange = 0x1000

// Register is one general-purpose register.
type Register struct {
	Name              string
	Value             uint32
	Modified          bool   // Written recently
	LastModifiedCycle uint64 // Cycle of the last write
}

// RegFile represents the register file. R0 always reads as 0 and writes to
// it are discarded.
type RegFile struct {
	Regs [insts.NumRegisters]Register
}

// NewRegFile creates a register file with every register set to 0.
func NewRegFile() RegFile {
	var r RegFile
	for i := range r.Regs {
		r.Regs[i].Name = fmt.Sprintf("R%d", i)
	}
	return r
}

// Randomize fills R1-R31 with values in [0, 0x1000) drawn from rng and
// clears the modification flags.
func (r *RegFile) Randomize(rng *rand.Rand) {
	for i := range r.Regs {
		r.Regs[i].Modified = false
		r.Regs[i].LastModifiedCycle = 0
		if i == 0 {
			r.Regs[i].Value = 0
			continue
		}
		r.Regs[i].Value = uint32(rng.Intn(initialRegisterRange))
	}
}

// ReadReg reads a register by index. Out-of-range indices read as 0.
func (r *RegFile) ReadReg(idx int) uint32 {
	if idx <= 0 || idx >= len(r.Regs) {
		return 0
	}
	return r.Regs[idx].Value
}

// Read reads a register by name. Names that are not registers read as 0.
func (r *RegFile) Read(name string) uint32 {
	idx, ok := insts.RegisterIndex(name)
	if !ok {
		return 0
	}
	return r.ReadReg(idx)
}

// WriteReg writes a register by index and marks it modified at cycle.
// It returns false if the write was discarded (R0 or out of range).
func (r *RegFile) WriteReg(idx int, value uint32, cycle uint64) bool {
	if idx <= 0 || idx >= len(r.Regs) {
		return false
	}
	r.Regs[idx].Value = value
	r.Regs[idx].Modified = true
	r.Regs[idx].LastModifiedCycle = cycle
	return true
}

// Write writes a register by name.
func (r *RegFile) Write(name string, value uint32, cycle uint64) bool {
	idx, ok := insts.RegisterIndex(name)
	if !ok {
		return false
	}
	return r.WriteReg(idx, value, cycle)
}

// ClearStale clears the Modified flag of registers written more than window
// cycles before cycle.
func (r *RegFile) ClearStale(cycle, window uint64) {
	for i := range r.Regs {
		reg := &r.Regs[i]
		if reg.Modified && cycle-reg.LastModifiedCycle > window {
			reg.Modified = false
		}
	}
}

// Values returns the register values indexed by register number.
func (r *RegFile) Values() [insts.NumRegisters]uint32 {
	var v [insts.NumRegisters]uint32
	for i := range r.Regs {
		v[i] = r.Regs[i].Value
	}
	return v
}
