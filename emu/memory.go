package emu

import "math/rand"

// Data memory layout.
const (
	// DataBase is the address of the first data word.
	DataBase uint32 = 0x10000000
	// DataWords is the number of addressable words.
	DataWords = 16
	// WordSize is the size of a word in bytes.
	WordSize = 4
)

// Location is one addressable word of data memory.
type Location struct {
	Address           uint32
	Value             uint32
	Modified          bool
	LastModifiedCycle uint64
}

// Memory is a sparse word-addressed data memory. Only the pre-populated
// locations exist; reads elsewhere return 0 and writes elsewhere are dropped.
type Memory struct {
	Locations []Location
}

// NewMemory creates DataWords zeroed words starting at DataBase.
func NewMemory() Memory {
	m := Memory{Locations: make([]Location, DataWords)}
	for i := range m.Locations {
		m.Locations[i].Address = DataBase + uint32(i*WordSize)
	}
	return m
}

// Randomize fills every location with a value drawn from rng and clears the
// modification flags.
func (m *Memory) Randomize(rng *rand.Rand) {
	for i := range m.Locations {
		m.Locations[i].Value = rng.Uint32()
		m.Locations[i].Modified = false
		m.Locations[i].LastModifiedCycle = 0
	}
}

// Find returns the location at addr, or nil if addr is not mapped.
func (m *Memory) Find(addr uint32) *Location {
	for i := range m.Locations {
		if m.Locations[i].Address == addr {
			return &m.Locations[i]
		}
	}
	return nil
}

// Read returns the word at addr, or 0 if addr is not mapped.
func (m *Memory) Read(addr uint32) uint32 {
	if loc := m.Find(addr); loc != nil {
		return loc.Value
	}
	return 0
}

// Write stores value at addr and marks it modified at cycle. It returns
// false if addr is not mapped.
func (m *Memory) Write(addr, value uint32, cycle uint64) bool {
	loc := m.Find(addr)
	if loc == nil {
		return false
	}
	loc.Value = value
	loc.Modified = true
	loc.LastModifiedCycle = cycle
	return true
}

// ClearStale clears the Modified flag of words written more than window
// cycles before cycle.
func (m *Memory) ClearStale(cycle, window uint64) {
	for i := range m.Locations {
		loc := &m.Locations[i]
		if loc.Modified && cycle-loc.LastModifiedCycle > window {
			loc.Modified = false
		}
	}
}

// Clone returns a copy that shares no storage with m.
func (m Memory) Clone() Memory {
	return Memory{Locations: append([]Location(nil), m.Locations...)}
}
