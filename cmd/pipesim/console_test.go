package main

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/config"
)

var _ = Describe("console session", func() {
	var (
		out  *bytes.Buffer
		sess *session
	)

	BeforeEach(func() {
		flags := &engineFlags{sample: "data_hazard"}
		src, err := flags.source(nil)
		Expect(err).NotTo(HaveOccurred())

		settings := config.DefaultSettings()
		settings.Seed = 1
		out = &bytes.Buffer{}
		sess = newSession(settings, src, out)
	})

	It("steps one cycle at a time", func() {
		Expect(sess.exec("step")).To(BeFalse())
		Expect(out.String()).To(ContainSubstring("cycle 0 "))
		Expect(out.String()).To(ContainSubstring("IF: ADD R1, R2, R3"))

		sess.exec("step")
		Expect(out.String()).To(ContainSubstring("cycle 1 "))
		Expect(out.String()).To(ContainSubstring("ID: ADD R1, R2, R3"))
	})

	It("steps several cycles and stops at completion", func() {
		sess.exec("step 20")

		Expect(strings.Count(out.String(), "cycle ")).To(Equal(8))
		Expect(out.String()).To(ContainSubstring("Program complete."))
		Expect(sess.pipe.IsComplete()).To(BeTrue())
	})

	It("runs to the end", func() {
		sess.exec("run")

		Expect(out.String()).To(ContainSubstring("Program complete after 7 cycles."))
	})

	It("toggles forwarding", func() {
		sess.exec("set forwarding off")
		Expect(sess.pipe.State().ForwardingEnabled).To(BeFalse())

		sess.exec("run")
		Expect(out.String()).To(ContainSubstring("after 9 cycles"))
	})

	It("resets to the loaded program", func() {
		sess.exec("run")
		sess.exec("reset")

		s := sess.pipe.State()
		Expect(s.Cycle).To(BeZero())
		Expect(s.Instructions).To(HaveLen(3))
	})

	It("prints the hazard log and the summary", func() {
		sess.exec("run")
		out.Reset()

		sess.exec("hazards")
		Expect(out.String()).To(ContainSubstring("RAW"))
		Expect(out.String()).To(ContainSubstring("resolved"))

		out.Reset()
		sess.exec("metrics")
		Expect(out.String()).To(ContainSubstring("cycles: 7"))
	})

	It("clears the tick count on reset", func() {
		sess.exec("step 3")
		Expect(sess.core.Ticks()).To(Equal(uint64(3)))

		sess.exec("reset")
		Expect(sess.core.Ticks()).To(BeZero())
	})

	It("prints registers and memory", func() {
		sess.exec("regs")
		Expect(out.String()).To(ContainSubstring("R31"))

		out.Reset()
		sess.exec("mem")
		Expect(out.String()).To(ContainSubstring("0x10000000"))
	})

	It("rejects bad input", func() {
		sess.exec("step zero")
		sess.exec("set forwarding maybe")
		sess.exec("fly")

		Expect(out.String()).To(ContainSubstring("bad step count"))
		Expect(out.String()).To(ContainSubstring("usage: set"))
		Expect(out.String()).To(ContainSubstring(`unknown command "fly"`))
	})

	It("quits on exit", func() {
		Expect(sess.exec("")).To(BeFalse())
		Expect(sess.exec("exit")).To(BeTrue())
	})
})

var _ = Describe("hazard listing", func() {
	listing := func(sample string) string {
		flags := &engineFlags{sample: sample}
		src, err := flags.source(nil)
		Expect(err).NotTo(HaveOccurred())

		settings := config.DefaultSettings()
		settings.Seed = 1
		out := &bytes.Buffer{}
		sess := newSession(settings, src, out)
		sess.exec("run")
		out.Reset()
		sess.exec("hazards")
		return out.String()
	}

	It("marks an unresolved load-use as a stall", func() {
		Expect(listing("load_use")).To(MatchRegexp(`data\s+RAW\s+stall`))
	})

	It("does not mark a control hazard as a stall", func() {
		out := listing("control_hazard")
		Expect(out).To(MatchRegexp(`control\s+\S+\s+unresolved`))
		Expect(out).NotTo(ContainSubstring("stall"))
	})
})
