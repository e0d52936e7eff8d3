package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/loader"
)

const loadStore = `# load-store demo
.reg R2 0x10000000
.mem 0x10000004 42

LW R1, 4(R2)
ADD R3, R1, R1   // use the loaded value
SW R3, 8(R2)
`

var _ = Describe("Program Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "program-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	write := func(name, text string) string {
		path := filepath.Join(tempDir, name)
		Expect(os.WriteFile(path, []byte(text), 0644)).To(Succeed())
		return path
	}

	Describe("Load", func() {
		Context("with a valid program file", func() {
			var prog *loader.Program

			BeforeEach(func() {
				var err error
				prog, err = loader.Load(write("demo.s", loadStore))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should record the path", func() {
				Expect(prog.Path).To(HaveSuffix("demo.s"))
			})

			It("should parse the instructions", func() {
				Expect(prog.Instructions).To(HaveLen(3))
				Expect(prog.Instructions[0].Op).To(Equal(insts.OpLW))
				Expect(prog.Instructions[0].PC).To(Equal(insts.BaseAddress))
				Expect(prog.Instructions[2].PC).To(Equal(insts.BaseAddress + 8))
				Expect(prog.Diagnostics).To(BeEmpty())
			})

			It("should keep source line numbers", func() {
				Expect(prog.Instructions[0].Line).To(Equal(5))
				Expect(prog.Instructions[1].Line).To(Equal(6))
			})

			It("should collect the directives", func() {
				Expect(prog.HasInit()).To(BeTrue())
				Expect(prog.Registers).To(Equal([]loader.RegisterInit{{Index: 2, Value: emu.DataBase}}))
				Expect(prog.Memory).To(Equal([]loader.MemoryInit{{Addr: emu.DataBase + 4, Value: 42}}))
				Expect(prog.Source).NotTo(ContainSubstring(".reg"))
			})

			It("should apply the directives to machine state", func() {
				regs := emu.NewRegFile()
				mem := emu.NewMemory()
				prog.ApplyInit(&regs, &mem)

				Expect(regs.Read("R2")).To(Equal(emu.DataBase))
				Expect(regs.Regs[2].Modified).To(BeFalse())
				Expect(mem.Read(emu.DataBase + 4)).To(Equal(uint32(42)))

				ref := emu.NewEmulator(&regs, &mem)
				ref.Run(prog.Instructions)
				Expect(regs.Read("R3")).To(Equal(uint32(84)))
				Expect(mem.Read(emu.DataBase + 8)).To(Equal(uint32(84)))
			})
		})

		It("should record skipped lines", func() {
			prog, err := loader.Load(write("bad-op.s", "ADD R1, R2, R3\nMUL R1, R2, R3\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions).To(HaveLen(1))
			Expect(prog.Diagnostics).To(HaveLen(1))
			Expect(prog.Diagnostics[0].Line).To(Equal(2))
		})

		It("should accept negative directive values", func() {
			prog, err := loader.Parse(strings.NewReader(".reg R5 -1\nNOP"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Registers[0].Value).To(Equal(uint32(0xFFFFFFFF)))
			Expect(prog.HasInit()).To(BeTrue())
		})

		It("should return error for non-existent file", func() {
			_, err := loader.Load("/nonexistent/path/to/file.s")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to open"))
		})

		DescribeTable("bad directives",
			func(line string) {
				_, err := loader.Load(write("bad.s", "NOP\n"+line+"\n"))
				Expect(err).To(MatchError(loader.ErrBadDirective))
				Expect(err.Error()).To(ContainSubstring("line 2"))
			},
			Entry("unknown directive", ".data 1 2"),
			Entry("missing argument", ".reg R1"),
			Entry("not a register", ".reg X1 5"),
			Entry("bad value", ".reg R1 lots"),
			Entry("unmapped address", ".mem 0x20000000 1"),
		)

		It("should fail on an oversized line", func() {
			_, err := loader.Load(write("huge.s", strings.Repeat("x", 70*1024)))
			Expect(err).To(MatchError(insts.ErrLineTooLong))
		})

		It("should load an empty file as an empty program", func() {
			prog, err := loader.Load(write("empty.s", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions).To(BeEmpty())
			Expect(prog.HasInit()).To(BeFalse())
		})
	})
})
