package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/config"
)

var _ = Describe("Settings", func() {
	It("should default to forwarding on and prediction off", func() {
		s := config.DefaultSettings()
		Expect(s.ForwardingEnabled).To(BeTrue())
		Expect(s.BranchPredictionEnabled).To(BeFalse())
		Expect(s.Speed).To(Equal(config.DefaultSpeed))
		Expect(s.StepMode).To(BeFalse())
		Expect(s.Validate()).To(Succeed())
	})

	DescribeTable("step interval",
		func(speed int, want time.Duration) {
			s := config.DefaultSettings()
			s.Speed = speed
			Expect(s.StepInterval()).To(Equal(want))
		},
		Entry("slowest", 1, 1000*time.Millisecond),
		Entry("default", 5, 600*time.Millisecond),
		Entry("fastest", 10, 100*time.Millisecond),
		Entry("clamped below", 0, 1000*time.Millisecond),
		Entry("clamped above", 20, 100*time.Millisecond),
	)

	It("should reject speeds outside 1..10", func() {
		s := config.DefaultSettings()
		s.Speed = 11
		Expect(s.Validate()).To(MatchError(config.ErrInvalidSpeed))
	})

	It("should round-trip through a file and keep defaults for missing fields", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "settings.json")

		Expect(os.WriteFile(path, []byte(`{"branch_prediction_enabled": true, "seed": 9}`), 0644)).To(Succeed())

		s, err := config.LoadConfig(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.BranchPredictionEnabled).To(BeTrue())
		Expect(s.ForwardingEnabled).To(BeTrue())
		Expect(s.Seed).To(Equal(int64(9)))
		Expect(s.Speed).To(Equal(config.DefaultSpeed))

		out := filepath.Join(dir, "out.json")
		Expect(s.SaveConfig(out)).To(Succeed())

		again, err := config.LoadConfig(out)
		Expect(err).ToNot(HaveOccurred())
		Expect(again).To(Equal(s))
	})

	It("should fail on a missing or malformed file", func() {
		_, err := config.LoadConfig("/does/not/exist.json")
		Expect(err).To(HaveOccurred())

		path := filepath.Join(GinkgoT().TempDir(), "bad.json")
		Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())
		_, err = config.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse settings")))
	})

	It("should clone independently", func() {
		s := config.DefaultSettings()
		c := s.Clone()
		c.Speed = 9
		Expect(s.Speed).To(Equal(config.DefaultSpeed))
	})
})
