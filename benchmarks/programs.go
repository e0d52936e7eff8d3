package benchmarks

import "github.com/sarchlab/pipesim/emu"

// Samples returns the tutorial programs, each built around one kind of
// hazard, plus a hazard-free baseline.
func Samples() []Benchmark {
	return []Benchmark{
		dataHazard(),
		controlHazard(),
		loadUse(),
		mixedHazards(),
		complexPipeline(),
		hazardFree(),
	}
}

// Lookup returns the sample with the given name.
func Lookup(name string) (Benchmark, bool) {
	for _, b := range Samples() {
		if b.Name == name {
			return b, true
		}
	}
	return Benchmark{}, false
}

// pointAtData sets R2 to the start of data memory so that loads and stores
// through R2 hit mapped words.
func pointAtData(regFile *emu.RegFile, _ *emu.Memory) {
	regFile.Regs[2].Value = emu.DataBase
}

func dataHazard() Benchmark {
	return Benchmark{
		Name:        "data_hazard",
		Description: "RAW dependencies between consecutive ALU instructions",
		Source: `ADD R1, R2, R3    # R1 = R2 + R3
SUB R4, R1, R5    # RAW on R1
ADD R6, R4, R7    # RAW on R4`,
	}
}

func controlHazard() Benchmark {
	return Benchmark{
		Name:        "control_hazard",
		Description: "a conditional branch behind the instruction it compares",
		Source: `ADD R1, R2, R3
BEQ R1, R4, 8     # branch on the new R1
ADD R5, R6, R7
SUB R8, R9, R10`,
	}
}

func loadUse() Benchmark {
	return Benchmark{
		Name:        "load_use",
		Description: "a load followed by an immediate use of its result",
		Setup:       pointAtData,
		Source: `LW R1, 0(R2)      # load from memory
ADD R3, R1, R4    # use the loaded value
SUB R5, R3, R6`,
	}
}

func mixedHazards() Benchmark {
	return Benchmark{
		Name:        "mixed",
		Description: "load-use, branch and store in one sequence",
		Setup:       pointAtData,
		Source: `LW R1, 0(R2)
ADD R3, R1, R4    # load-use
BEQ R3, R5, 8     # branch on the sum
SW R3, 4(R2)
ADD R6, R3, R7`,
	}
}

func complexPipeline() Benchmark {
	return Benchmark{
		Name:        "complex",
		Description: "a longer program mixing every instruction class",
		Setup: func(regFile *emu.RegFile, _ *emu.Memory) {
			regFile.Regs[2].Value = emu.DataBase
			regFile.Regs[3].Value = 8
		},
		Source: `ADD R1, R2, R3
LW R4, 0(R1)
SUB R5, R4, R2
SW R5, 4(R1)
BEQ R5, R6, 8
ADD R7, R8, R9
OR R10, R7, R4
AND R11, R10, R1`,
	}
}

func hazardFree() Benchmark {
	return Benchmark{
		Name:        "hazard_free",
		Description: "independent ALU instructions; the CPI floor",
		Source: `ADD R1, R2, R3
SUB R4, R5, R6
AND R7, R8, R9
OR R10, R11, R12
ADD R13, R14, R15`,
	}
}
