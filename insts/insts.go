// Package insts provides the instruction set of the simulated processor and
// the assembler front end that turns program text into instructions.
//
// The instruction set is a small RISC subset:
//   - R-type ALU operations: ADD, SUB, AND, OR
//   - I-type memory operations: LW, SW (offset(base) addressing)
//   - I-type branches: BEQ, BNE
//   - J-type jump: J
//   - NOP
//
// Usage:
//
//	prog, err := insts.ParseAssembly("ADD R1, R2, R3\nLW R4, 0(R1)")
//	for _, inst := range prog.Instructions {
//		deps := inst.Dependencies()
//		fmt.Println(inst.Op, deps.Reads, deps.Writes)
//	}
package insts

import "strings"

// Op represents an opcode.
type Op uint8

// Opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpAND
	OpOR
	OpLW
	OpSW
	OpBEQ
	OpBNE
	OpJ
	OpNOP

	numOps
)

// Format represents an instruction format class.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // Register
	FormatI              // Immediate
	FormatJ              // Jump
)

// String returns the single-letter name of the format.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// Class groups opcodes that behave the same way in the pipeline.
type Class uint8

// Opcode classes.
const (
	ClassNone Class = iota
	ClassALU
	ClassLoad
	ClassStore
	ClassBranch
	ClassJump
	ClassNop
)

type operandKind uint8

const (
	operandReg operandKind = iota
	operandImm
	operandTarget // immediate or label
)

// semantics holds everything the simulator needs to know about an opcode.
// Reads and writes are operand indices.
type semantics struct {
	name     string
	format   Format
	class    Class
	operands []operandKind
	reads    []int
	writes   []int
}

var (
	shapeRRR  = []operandKind{operandReg, operandReg, operandReg}
	shapeMem  = []operandKind{operandReg, operandImm, operandReg}
	shapeCond = []operandKind{operandReg, operandReg, operandTarget}
)

var opTable = [numOps]semantics{
	OpUnknown: {name: "UNKNOWN"},
	OpADD:     {"ADD", FormatR, ClassALU, shapeRRR, []int{1, 2}, []int{0}},
	OpSUB:     {"SUB", FormatR, ClassALU, shapeRRR, []int{1, 2}, []int{0}},
	OpAND:     {"AND", FormatR, ClassALU, shapeRRR, []int{1, 2}, []int{0}},
	OpOR:      {"OR", FormatR, ClassALU, shapeRRR, []int{1, 2}, []int{0}},
	OpLW:      {"LW", FormatI, ClassLoad, shapeMem, []int{2}, []int{0}},
	OpSW:      {"SW", FormatI, ClassStore, shapeMem, []int{0, 2}, nil},
	OpBEQ:     {"BEQ", FormatI, ClassBranch, shapeCond, []int{0, 1}, nil},
	OpBNE:     {"BNE", FormatI, ClassBranch, shapeCond, []int{0, 1}, nil},
	OpJ:       {"J", FormatJ, ClassJump, []operandKind{operandTarget}, nil, nil},
	OpNOP:     {"NOP", FormatR, ClassNop, nil, nil, nil},
}

func (op Op) sem() *semantics {
	if op >= numOps {
		return &opTable[OpUnknown]
	}
	return &opTable[op]
}

// LookupOp returns the opcode for a mnemonic, ignoring case.
// It returns OpUnknown if the mnemonic is not part of the instruction set.
func LookupOp(mnemonic string) Op {
	m := strings.ToUpper(mnemonic)
	for op := OpADD; op < numOps; op++ {
		if opTable[op].name == m {
			return op
		}
	}
	return OpUnknown
}

// Ops returns every valid opcode in table order.
func Ops() []Op {
	ops := make([]Op, 0, numOps-1)
	for op := OpADD; op < numOps; op++ {
		ops = append(ops, op)
	}
	return ops
}

// String returns the mnemonic.
func (op Op) String() string { return op.sem().name }

// Format returns the format class of the opcode.
func (op Op) Format() Format { return op.sem().format }

// Class returns the pipeline class of the opcode.
func (op Op) Class() Class { return op.sem().class }

// NumOperands returns the number of operands the opcode takes once
// offset(base) has been split.
func (op Op) NumOperands() int { return len(op.sem().operands) }

// IsALU returns true for ADD, SUB, AND and OR.
func (op Op) IsALU() bool { return op.Class() == ClassALU }

// IsMemory returns true for LW and SW.
func (op Op) IsMemory() bool {
	c := op.Class()
	return c == ClassLoad || c == ClassStore
}

// IsControl returns true for branches and jumps.
func (op Op) IsControl() bool {
	c := op.Class()
	return c == ClassBranch || c == ClassJump
}

// Stage is a pipeline stage an instruction can occupy.
type Stage uint8

// Pipeline stages, in program flow order.
const (
	StageNone Stage = iota
	StageIF
	StageID
	StageEX
	StageMEM
	StageWB
)

// NumStages is the depth of the pipeline.
const NumStages = 5

// String returns the short stage name.
func (s Stage) String() string {
	switch s {
	case StageIF:
		return "IF"
	case StageID:
		return "ID"
	case StageEX:
		return "EX"
	case StageMEM:
		return "MEM"
	case StageWB:
		return "WB"
	default:
		return "-"
	}
}
