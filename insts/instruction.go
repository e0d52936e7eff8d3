package insts

import (
	"fmt"
	"strconv"
	"strings"
)

// NumRegisters is the number of general-purpose registers (R0-R31).
const NumRegisters = 32

// Instruction is one parsed assembly instruction. Everything except the
// bookkeeping fields (Cycle, Stage, Completed) is fixed once parsed.
type Instruction struct {
	ID       int      // Position in the program
	Line     int      // 1-based source line
	PC       uint32   // Address of the instruction
	Op       Op       // Operation code
	Operands []string // Operands, offset(base) split into offset and base
	Format   Format   // Format class
	Raw      string   // Source text without comments

	// Bookkeeping owned by the pipeline.
	Cycle     uint64 // Cycle the instruction entered the pipeline
	Stage     Stage  // Current stage, StageNone when not in flight
	Completed bool   // Retired through write-back
}

// Deps lists the registers an instruction reads and writes.
type Deps struct {
	Reads  []string
	Writes []string
}

// Dependencies returns the register dependencies of the instruction.
// Operands missing from a malformed instruction are left out. R0 is never
// listed as written since writes to it are discarded.
func (i *Instruction) Dependencies() Deps {
	sem := i.Op.sem()

	var writes []string
	for _, reg := range i.pick(sem.writes) {
		if idx, ok := RegisterIndex(reg); ok && idx == 0 {
			continue
		}
		writes = append(writes, reg)
	}

	return Deps{
		Reads:  i.pick(sem.reads),
		Writes: writes,
	}
}

func (i *Instruction) pick(indices []int) []string {
	var regs []string
	for _, idx := range indices {
		if idx < len(i.Operands) && i.Operands[idx] != "" {
			regs = append(regs, i.Operands[idx])
		}
	}
	return regs
}

// Dest returns the destination register, or "" if the instruction does not
// write a register.
func (i *Instruction) Dest() string {
	writes := i.Dependencies().Writes
	if len(writes) == 0 {
		return ""
	}
	return writes[0]
}

// Operand returns operand n, or "" if it does not exist.
func (i *Instruction) Operand(n int) string {
	if n < 0 || n >= len(i.Operands) {
		return ""
	}
	return i.Operands[n]
}

// Offset returns the memory offset of a LW or SW. Unparsable offsets are 0.
func (i *Instruction) Offset() int32 {
	v, err := ParseImmediate(i.Operand(1))
	if err != nil {
		return 0
	}
	return v
}

// Validate checks the operand count and the shape of every operand.
func (i *Instruction) Validate() error {
	sem := i.Op.sem()
	if i.Op == OpUnknown || i.Op >= numOps {
		return fmt.Errorf("%w: %s", ErrUnknownOpcode, i.Raw)
	}

	if len(i.Operands) != len(sem.operands) {
		return fmt.Errorf("%s expects %d operands, got %d",
			sem.name, len(sem.operands), len(i.Operands))
	}

	for n, kind := range sem.operands {
		operand := i.Operands[n]
		switch kind {
		case operandReg:
			if _, ok := RegisterIndex(operand); !ok {
				return fmt.Errorf("%s operand %d: %q is not a register", sem.name, n, operand)
			}
		case operandImm:
			if _, err := ParseImmediate(operand); err != nil {
				return fmt.Errorf("%s operand %d: %q is not an immediate", sem.name, n, operand)
			}
		case operandTarget:
			if !isTarget(operand) {
				return fmt.Errorf("%s operand %d: %q is not a branch target", sem.name, n, operand)
			}
		}
	}

	return nil
}

// IsValid reports whether Validate passes.
func (i *Instruction) IsValid() bool {
	return i.Validate() == nil
}

// Render formats the instruction in canonical assembly syntax.
func (i *Instruction) Render() string {
	if len(i.Operands) == 0 {
		return i.Op.String()
	}

	if i.Op.IsMemory() && len(i.Operands) == 3 {
		return fmt.Sprintf("%s %s, %s(%s)",
			i.Op, i.Operands[0], i.Operands[1], i.Operands[2])
	}

	return i.Op.String() + " " + strings.Join(i.Operands, ", ")
}

// String returns the source text of the instruction.
func (i *Instruction) String() string {
	return i.Raw
}

// Clone returns a copy that shares nothing with i.
func (i *Instruction) Clone() *Instruction {
	c := *i
	c.Operands = append([]string(nil), i.Operands...)
	return &c
}

// RegisterIndex parses a register name such as "R7" or "r7".
func RegisterIndex(name string) (int, bool) {
	if len(name) < 2 || (name[0] != 'R' && name[0] != 'r') {
		return -1, false
	}

	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return -1, false
		}
	}

	idx, err := strconv.Atoi(name[1:])
	if err != nil || idx >= NumRegisters {
		return -1, false
	}

	return idx, true
}

// ParseImmediate parses a decimal, hex (0x) or negative immediate.
func ParseImmediate(s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func isTarget(s string) bool {
	if _, err := ParseImmediate(s); err == nil {
		return true
	}
	if s == "" {
		return false
	}
	for n, c := range s {
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !letter && (n == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}
