package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

var _ = Describe("Core", func() {
	var c *core.Core

	BeforeEach(func() {
		c = core.NewCore(pipeline.NewPipeline(pipeline.WithSeed(1)))
	})

	It("should create a core with pipeline", func() {
		Expect(c).NotTo(BeNil())
		Expect(c.Pipeline).NotTo(BeNil())
	})

	It("should be halted with no program", func() {
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Tick()).To(BeFalse())
		Expect(c.Ticks()).To(BeZero())
	})

	It("should not be halted once a program is loaded", func() {
		Expect(c.Pipeline.LoadProgram("ADD R1, R2, R3")).To(BeTrue())
		Expect(c.Halted()).To(BeFalse())
	})

	It("should execute instructions through tick", func() {
		regs := c.Pipeline.State().Registers
		regs.Write("R2", 40, 0)
		regs.Write("R3", 2, 0)
		c.Pipeline.SetState(pipeline.StateUpdate{Registers: &regs})
		c.Pipeline.LoadProgram("ADD R1, R2, R3")

		for i := 0; i < 10; i++ {
			c.Tick()
		}

		state := c.Pipeline.State()
		Expect(state.Registers.Read("R1")).To(Equal(uint32(42)))
		Expect(c.Halted()).To(BeTrue())
	})

	It("should return stats", func() {
		c.Pipeline.LoadProgram("ADD R1, R2, R3\nNOP")
		c.Tick()
		c.Tick()

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(1)))
		Expect(c.Ticks()).To(Equal(uint64(2)))
	})

	It("should run until halt", func() {
		c.Pipeline.SetState(pipeline.StateUpdate{ForwardingEnabled: pipeline.Bool(false)})
		c.Pipeline.LoadProgram("ADD R1, R2, R3\nSUB R4, R1, R5")

		stats := c.Run()

		Expect(c.Halted()).To(BeTrue())
		Expect(stats).To(Equal(core.Stats{
			Cycles:       7,
			Instructions: 2,
			Stalls:       1,
			Hazards:      1,
		}))
		Expect(c.Ticks()).To(Equal(stats.Cycles + 1))
	})

	It("should run a bounded number of cycles", func() {
		c.Pipeline.LoadProgram("ADD R1, R2, R3\nSUB R4, R5, R6")

		Expect(c.RunCycles(3)).To(BeTrue())
		Expect(c.Stats().Cycles).To(Equal(uint64(2)))

		Expect(c.RunCycles(100)).To(BeFalse())
		Expect(c.Stats().Cycles).To(Equal(uint64(6)))
	})

	It("should reset", func() {
		c.Pipeline.LoadProgram("ADD R1, R2, R3")
		c.Run()
		c.Reset()

		Expect(c.Ticks()).To(BeZero())
		Expect(c.Stats()).To(Equal(core.Stats{}))
	})
})
