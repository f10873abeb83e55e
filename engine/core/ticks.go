package core

import "math"

// Musical time is counted in clock ticks at 24 ticks per quarter note (the
// MIDI clock rate). A sequencer step is one 16th note, i.e. 6 ticks.
//
// The per-block tick increment is a Q32.32 fixed-point value computed once
// per tempo change. Block-to-block advancement is then pure integer addition,
// so the tick position cannot drift from its own schedule no matter how long
// the engine runs.
const (
	TicksPerQuarter = 24
	TicksPerStep    = TicksPerQuarter / 4

	// TickFracBits is the number of fractional bits in a Q32.32 tick value.
	TickFracBits = 32
)

// TicksPerBlockQ32 returns the Q32.32 tick increment for one block at the
// given tempo. The result is 0 for non-positive or non-finite inputs.
func TicksPerBlockQ32(bpm, sampleRate float64, blockSize int) uint64 {
	if bpm <= 0 || sampleRate <= 0 || blockSize <= 0 || !IsFinite(bpm) {
		return 0
	}

	ticksPerBlock := bpm * TicksPerQuarter * float64(blockSize) / (60 * sampleRate)
	return uint64(math.Round(ticksPerBlock * (1 << TickFracBits)))
}

// WholeTicks extracts the integer tick count from a Q32.32 value.
func WholeTicks(q uint64) uint64 {
	return q >> TickFracBits
}

// StepQ32 returns the Q32.32 representation of one sequencer step.
func StepQ32() uint64 {
	return uint64(TicksPerStep) << TickFracBits
}
