// Package loader reads program files from disk.
//
// A program file is assembly text plus optional directives that seed the
// initial machine state:
//
//	.reg R2 0x10000000   // set R2 before the run
//	.mem 0x10000004 42   // set a data word before the run
//
// Directive lines are blanked out before the text reaches the parser, so
// diagnostics keep their original line numbers.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
)

// ErrBadDirective is returned for a directive line that cannot be applied.
var ErrBadDirective = errors.New("bad directive")

// RegisterInit sets a register before the run.
type RegisterInit struct {
	// Index is the register number.
	Index int
	// Value is the initial contents.
	Value uint32
}

// MemoryInit sets a data word before the run.
type MemoryInit struct {
	// Addr is the word address. It must be a mapped data address.
	Addr uint32
	// Value is the initial contents.
	Value uint32
}

// Program represents a loaded program file.
type Program struct {
	// Path is the file the program came from, if any.
	Path string
	// Source is the assembly text with directive lines blanked out.
	Source string
	// Instructions are the parsed instructions.
	Instructions []*insts.Instruction
	// Diagnostics list the lines the parser skipped.
	Diagnostics []insts.Diagnostic
	// Registers are the register directives in file order.
	Registers []RegisterInit
	// Memory are the memory directives in file order.
	Memory []MemoryInit
}

// Load reads and parses the program file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.Path = path

	return prog, nil
}

// Parse reads a program from r.
func Parse(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	prog := &Program{}

	var source strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 4096), len(data)+1)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if directive := insts.StripComment(line); strings.HasPrefix(directive, ".") {
			if err := prog.applyDirective(directive); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			line = ""
		}

		source.WriteString(line)
		source.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	prog.Source = source.String()

	parsed, err := insts.ParseAssembly(prog.Source)
	if err != nil {
		return nil, err
	}
	prog.Instructions = parsed.Instructions
	prog.Diagnostics = parsed.Diagnostics

	return prog, nil
}

func (p *Program) applyDirective(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return fmt.Errorf("%w: %q: want 2 arguments", ErrBadDirective, line)
	}

	value, err := parseWord(fields[2])
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrBadDirective, line, err)
	}

	switch strings.ToLower(fields[0]) {
	case ".reg":
		idx, ok := insts.RegisterIndex(fields[1])
		if !ok {
			return fmt.Errorf("%w: %q: not a register", ErrBadDirective, line)
		}
		p.Registers = append(p.Registers, RegisterInit{Index: idx, Value: value})
	case ".mem":
		addr, err := parseWord(fields[1])
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrBadDirective, line, err)
		}
		probe := emu.NewMemory()
		if probe.Find(addr) == nil {
			return fmt.Errorf("%w: %q: address 0x%x is not mapped", ErrBadDirective, line, addr)
		}
		p.Memory = append(p.Memory, MemoryInit{Addr: addr, Value: value})
	default:
		return fmt.Errorf("%w: %q: unknown directive", ErrBadDirective, line)
	}

	return nil
}

// parseWord accepts decimal, 0x hex and negative values that fit 32 bits.
func parseWord(s string) (uint32, error) {
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(v), nil
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// HasInit returns true if the program carries any directives.
func (p *Program) HasInit() bool {
	return len(p.Registers) > 0 || len(p.Memory) > 0
}

// ApplyInit writes the directive values into regs and mem at cycle 0,
// without marking them modified.
func (p *Program) ApplyInit(regs *emu.RegFile, mem *emu.Memory) {
	for _, r := range p.Registers {
		if r.Index > 0 && r.Index < len(regs.Regs) {
			regs.Regs[r.Index].Value = r.Value
		}
	}

	for _, m := range p.Memory {
		if loc := mem.Find(m.Addr); loc != nil {
			loc.Value = m.Value
		}
	}
}
