package insts

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sarchlab/pipesim/log"
)

// BaseAddress is the PC of the first instruction of every program.
const BaseAddress uint32 = 0x400000

// InstructionSize is the distance between consecutive PCs.
const InstructionSize = 4

// maxLineLength bounds a single source line. Longer lines fail the parse.
const maxLineLength = 64 * 1024

var (
	// ErrUnknownOpcode is reported for a line whose first token is not an
	// opcode. It only ever drops that line.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrLineTooLong fails the whole parse.
	ErrLineTooLong = errors.New("source line too long")
)

var memOperand = regexp.MustCompile(`^(.*)\((.+)\)$`)

// Diagnostic records a source line that was skipped.
type Diagnostic struct {
	Line int
	Text string
	Err  error
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %v: %s", d.Line, d.Err, d.Text)
}

// Program is the result of parsing a source text.
type Program struct {
	Instructions []*Instruction
	Diagnostics  []Diagnostic
}

// ParseAssembly parses a whole program. Blank lines, comments and lines that
// fail to parse are skipped; only a failure to read the text itself returns
// an error. Instructions get consecutive PCs starting at BaseAddress.
func ParseAssembly(text string) (*Program, error) {
	prog := &Program{}
	pc := BaseAddress

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := StripComment(scanner.Text())
		if line == "" {
			continue
		}

		inst, err := ParseLine(line, pc)
		if err != nil {
			prog.Diagnostics = append(prog.Diagnostics,
				Diagnostic{Line: lineNo, Text: line, Err: err})
			log.Warn(log.ParserModule, "skipping line",
				"line", lineNo, "text", line, "err", err)
			continue
		}

		inst.ID = len(prog.Instructions)
		inst.Line = lineNo
		prog.Instructions = append(prog.Instructions, inst)
		pc += InstructionSize
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: after line %d", ErrLineTooLong, lineNo)
		}
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return prog, nil
}

// StripComment removes a trailing // or # comment and surrounding space.
func StripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// ParseLine parses one comment-free, trimmed line into an instruction at pc.
func ParseLine(line string, pc uint32) (*Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty line")
	}

	op := LookupOp(fields[0])
	if op == OpUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOpcode, fields[0])
	}

	var operands []string
	if len(fields) > 1 {
		operands = parseOperands(strings.Join(fields[1:], " "), op)
	}

	return &Instruction{
		PC:       pc,
		Op:       op,
		Operands: operands,
		Format:   op.Format(),
		Raw:      line,
	}, nil
}

func parseOperands(text string, op Op) []string {
	parts := strings.Split(text, ",")
	operands := make([]string, 0, len(parts)+1)

	for _, part := range parts {
		part = strings.TrimSpace(part)

		if op.IsMemory() {
			if m := memOperand.FindStringSubmatch(part); m != nil {
				offset := strings.TrimSpace(m[1])
				if offset == "" {
					offset = "0"
				}
				operands = append(operands, offset, normalizeRegister(strings.TrimSpace(m[2])))
				continue
			}
		}

		operands = append(operands, normalizeRegister(part))
	}

	return operands
}

// normalizeRegister rewrites register operands to their canonical name so
// that "r01" and "R1" compare equal.
func normalizeRegister(operand string) string {
	if idx, ok := RegisterIndex(operand); ok {
		return fmt.Sprintf("R%d", idx)
	}
	return operand
}
