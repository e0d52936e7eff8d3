package pipeline

import (
	"math/rand"
	"time"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/log"
	"github.com/sarchlab/pipesim/timing/config"
)

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithSeed fixes the seed of the initial register and memory contents.
func WithSeed(seed int64) Option {
	return func(p *Pipeline) {
		p.seed = seed
	}
}

// WithForwarding sets whether forwarding is enabled after construction and
// after every Reset.
func WithForwarding(enabled bool) Option {
	return func(p *Pipeline) {
		p.forwarding = enabled
	}
}

// WithBranchPrediction sets whether branch prediction is enabled after
// construction and after every Reset.
func WithBranchPrediction(enabled bool) Option {
	return func(p *Pipeline) {
		p.branchPrediction = enabled
	}
}

// WithSettings applies the engine-relevant fields of settings.
func WithSettings(settings *config.Settings) Option {
	return func(p *Pipeline) {
		p.forwarding = settings.ForwardingEnabled
		p.branchPrediction = settings.BranchPredictionEnabled
		if settings.Seed != 0 {
			p.seed = settings.Seed
		}
	}
}

// Pipeline implements a 5-stage pipelined CPU model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
//
// The Pipeline is not safe for concurrent use. Step is the only operation
// that advances time; callers drive it manually or from a timer.
type Pipeline struct {
	state          SimulationState
	hazardDetector *HazardDetector

	seed             int64
	forwarding       bool
	branchPrediction bool
}

// NewPipeline creates a pipeline with random register and memory contents.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		hazardDetector: NewHazardDetector(),
		forwarding:     true,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.seed == 0 {
		p.seed = time.Now().UnixNano()
	}

	p.Reset()

	return p
}

// NewState returns a fresh simulation state whose registers and memory are
// filled from seed.
func NewState(seed int64, forwarding, branchPrediction bool) SimulationState {
	rng := rand.New(rand.NewSource(seed))

	s := SimulationState{
		PC:                      insts.BaseAddress,
		Registers:               emu.NewRegFile(),
		Memory:                  emu.NewMemory(),
		ForwardingEnabled:       forwarding,
		BranchPredictionEnabled: branchPrediction,
	}
	s.Registers.Randomize(rng)
	s.Memory.Randomize(rng)

	return s
}

// Seed returns the seed of the initial contents.
func (p *Pipeline) Seed() int64 {
	return p.seed
}

// HazardDetector returns the detector used by the pipeline.
func (p *Pipeline) HazardDetector() *HazardDetector {
	return p.hazardDetector
}

// Load parses text and installs it as the current program. The cycle
// counter, PC, counters, hazard log and pipeline slots are reset; register
// and memory contents are kept. On error the state is left untouched.
func (p *Pipeline) Load(text string) (*insts.Program, error) {
	prog, err := insts.ParseAssembly(text)
	if err != nil {
		log.Error(log.PipelineModule, "failed to load program", "err", err)
		return nil, err
	}

	p.LoadInstructions(prog.Instructions)

	return prog, nil
}

// LoadProgram is Load reduced to a success flag.
func (p *Pipeline) LoadProgram(text string) bool {
	_, err := p.Load(text)
	return err == nil
}

// LoadInstructions installs an already parsed program.
func (p *Pipeline) LoadInstructions(instructions []*insts.Instruction) {
	program := make([]*insts.Instruction, len(instructions))
	for i, inst := range instructions {
		program[i] = inst.Clone()
		program[i].ID = i
		program[i].Cycle = 0
		program[i].Stage = insts.StageNone
		program[i].Completed = false
	}

	p.state.reload(program)
}

// Step advances the pipeline by one cycle and returns a copy of the new
// state.
func (p *Pipeline) Step() SimulationState {
	p.state.advance(p.hazardDetector)
	return p.state.Clone()
}

// Run steps until the program completes or the pipeline stops making
// progress, and returns the final state.
func (p *Pipeline) Run() SimulationState {
	for !p.state.IsComplete() {
		before := p.state.Cycle
		p.state.advance(p.hazardDetector)
		if p.state.Cycle == before && p.state.Slots.IsEmpty() {
			break
		}
	}
	return p.state.Clone()
}

// State returns a copy of the current state.
func (p *Pipeline) State() SimulationState {
	return p.state.Clone()
}

// StateUpdate lists the fields SetState may change. Nil fields are left
// alone.
type StateUpdate struct {
	Running                 *bool
	Paused                  *bool
	ForwardingEnabled       *bool
	BranchPredictionEnabled *bool
	Registers               *emu.RegFile
	Memory                  *emu.Memory
}

// Bool returns a pointer to v, for building a StateUpdate.
func Bool(v bool) *bool {
	return &v
}

// SetState merges update into the current state. Feature flags take
// effect on the next Step.
func (p *Pipeline) SetState(update StateUpdate) {
	if update.Running != nil {
		p.state.Running = *update.Running
	}
	if update.Paused != nil {
		p.state.Paused = *update.Paused
	}
	if update.ForwardingEnabled != nil {
		p.state.ForwardingEnabled = *update.ForwardingEnabled
	}
	if update.BranchPredictionEnabled != nil {
		p.state.BranchPredictionEnabled = *update.BranchPredictionEnabled
	}
	if update.Registers != nil {
		p.state.Registers = *update.Registers
	}
	if update.Memory != nil {
		p.state.Memory = update.Memory.Clone()
	}
}

// Restore replaces the whole state with a copy of s.
func (p *Pipeline) Restore(s SimulationState) {
	p.state = s.Clone()
}

// Reset restores the pipeline to its freshly constructed state.
func (p *Pipeline) Reset() {
	p.state = NewState(p.seed, p.forwarding, p.branchPrediction)
}

// IsComplete returns true once every instruction has retired and all five
// slots are empty.
func (p *Pipeline) IsComplete() bool {
	return p.state.IsComplete()
}

// Step advances a copy of s by one cycle and returns it; s is not modified.
func Step(s SimulationState) SimulationState {
	next := s.Clone()
	next.advance(NewHazardDetector())
	return next
}
