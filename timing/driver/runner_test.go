package driver_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/driver"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

const program = "ADD R1, R2, R3\nSUB R4, R1, R5\nLW R6, 0(R4)\nOR R7, R6, R1"

func newCore() *core.Core {
	p := pipeline.NewPipeline(pipeline.WithSeed(9))
	Expect(p.LoadProgram(program)).To(BeTrue())
	return core.NewCore(p)
}

var _ = Describe("Runner", func() {
	It("should run a program to completion on virtual time", func() {
		var (
			mu     sync.Mutex
			cycles []uint64
			final  pipeline.SimulationState
		)

		r := driver.NewRunner(newCore(), driver.NewSimTicker(1*sim.GHz),
			driver.WithOnStep(func(s pipeline.SimulationState) {
				mu.Lock()
				defer mu.Unlock()
				cycles = append(cycles, s.Cycle)
			}),
			driver.WithOnComplete(func(s pipeline.SimulationState) {
				mu.Lock()
				defer mu.Unlock()
				final = s
			}))

		Expect(r.Start()).To(Succeed())
		Expect(r.Wait(context.Background())).To(Succeed())

		Expect(r.Running()).To(BeFalse())
		s := r.State()
		Expect(s.IsComplete()).To(BeTrue())
		Expect(s.Running).To(BeFalse())
		Expect(s.Paused).To(BeFalse())

		mu.Lock()
		defer mu.Unlock()
		Expect(final.Cycle).To(Equal(s.Cycle))
		Expect(cycles).To(HaveLen(int(s.Cycle) + 1))
		Expect(cycles[0]).To(BeZero())
		Expect(cycles[len(cycles)-1]).To(Equal(s.Cycle))
	})

	It("should match a manually stepped engine", func() {
		r := driver.NewRunner(newCore(), driver.NewSimTicker(1*sim.GHz))
		Expect(r.Start()).To(Succeed())
		Expect(r.Wait(context.Background())).To(Succeed())

		ref := newCore()
		ref.Run()

		got := r.State()
		want := ref.Pipeline.State()
		Expect(got.Cycle).To(Equal(want.Cycle))
		Expect(got.Hazards).To(Equal(want.Hazards))
		Expect(got.Registers).To(Equal(want.Registers))
	})

	It("should mark the engine running and then paused", func() {
		r := driver.NewRunner(newCore(), driver.NewWallTicker(time.Hour))

		Expect(r.Start()).To(Succeed())
		Expect(r.Running()).To(BeTrue())
		Expect(r.State().Running).To(BeTrue())
		Expect(r.Start()).To(MatchError(driver.ErrAlreadyRunning))

		r.Pause()
		Expect(r.Running()).To(BeFalse())
		Expect(r.State().Running).To(BeFalse())
		Expect(r.State().Paused).To(BeTrue())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(r.Wait(ctx)).To(Succeed())
	})

	It("should resume after a pause", func() {
		r := driver.NewRunner(newCore(), driver.NewWallTicker(time.Millisecond))

		Expect(r.Start()).To(Succeed())
		Eventually(func() uint64 { return r.State().Cycle }).Should(BeNumerically(">=", 1))
		r.Pause()

		Expect(r.Start()).To(Succeed())
		Expect(r.Wait(context.Background())).To(Succeed())
		state := r.State()
		Expect(state.IsComplete()).To(BeTrue())
		Expect(r.State().Paused).To(BeFalse())
	})

	It("should clear both flags on stop", func() {
		r := driver.NewRunner(newCore(), driver.NewWallTicker(time.Hour))
		Expect(r.Start()).To(Succeed())

		r.Stop()
		Expect(r.State().Running).To(BeFalse())
		Expect(r.State().Paused).To(BeFalse())
	})

	It("should step by hand only while idle", func() {
		var steps int
		r := driver.NewRunner(newCore(), driver.NewWallTicker(time.Hour),
			driver.WithOnStep(func(pipeline.SimulationState) { steps++ }))

		s, err := r.Step()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Slots.IF).ToNot(BeNil())
		Expect(steps).To(Equal(1))

		Expect(r.Start()).To(Succeed())
		_, err = r.Step()
		Expect(err).To(MatchError(driver.ErrAlreadyRunning))
		r.Stop()
	})

	It("should give up waiting when the context ends", func() {
		r := driver.NewRunner(newCore(), driver.NewWallTicker(time.Hour))
		Expect(r.Start()).To(Succeed())
		defer r.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		Expect(r.Wait(ctx)).To(MatchError(context.DeadlineExceeded))
	})
})
