package seq

import (
	"fmt"

	"github.com/cwbudde/algo-synth/engine/core"
)

// MaxStepLocks bounds the parameter locks one step may carry.
const MaxStepLocks = 4

// ParamLock pins a parameter to a value for the duration of a step.
type ParamLock struct {
	Param int     `json:"param"`
	Value float64 `json:"value"`
}

// Step is one timeline slot of a track.
type Step struct {
	On       bool        `json:"on"`
	Note     uint8       `json:"note"`
	Velocity uint8       `json:"velocity"`
	Locks    []ParamLock `json:"locks,omitempty"`
}

// Track is one fixed-length row of steps driving one voice lane.
type Track struct {
	Steps []Step `json:"steps"`
}

// Pattern is the sequencer's stored musical data: a bounded set of tracks,
// a playable length, and the pattern to chain into when the end is reached.
// Next of -1 means the pattern loops onto itself.
//
// Patterns are edited by the control context only; during playback the
// clock reads them without mutating.
type Pattern struct {
	Tracks []Track `json:"tracks"`
	Length int     `json:"length"`
	Next   int     `json:"next"`
}

// NewPattern returns an empty pattern sized to the configured limits,
// looping onto itself.
func NewPattern(cfg core.Config) *Pattern {
	tracks := make([]Track, cfg.MaxTracks)
	for t := range tracks {
		tracks[t].Steps = make([]Step, cfg.PatternSteps)
	}
	return &Pattern{
		Tracks: tracks,
		Length: cfg.PatternSteps,
		Next:   -1,
	}
}

// SetStep writes one step. Out-of-range indices or over-long lock lists are
// rejected; the range is fixed by the construction-time config.
func (p *Pattern) SetStep(track, index int, step Step) error {
	if track < 0 || track >= len(p.Tracks) {
		return fmt.Errorf("pattern: track %d out of range [0, %d)", track, len(p.Tracks))
	}
	if index < 0 || index >= len(p.Tracks[track].Steps) {
		return fmt.Errorf("pattern: step %d out of range [0, %d)", index, len(p.Tracks[track].Steps))
	}
	if len(step.Locks) > MaxStepLocks {
		return fmt.Errorf("pattern: %d locks exceed max %d", len(step.Locks), MaxStepLocks)
	}
	p.Tracks[track].Steps[index] = step
	return nil
}

// StepAt returns one step by position. Out-of-range positions read as an
// empty step so the clock's hot path needs no error handling.
func (p *Pattern) StepAt(track, index int) Step {
	if track < 0 || track >= len(p.Tracks) {
		return Step{}
	}
	if index < 0 || index >= len(p.Tracks[track].Steps) {
		return Step{}
	}
	return p.Tracks[track].Steps[index]
}

// SetLength limits playback to the first n steps.
func (p *Pattern) SetLength(n int) error {
	max := 0
	if len(p.Tracks) > 0 {
		max = len(p.Tracks[0].Steps)
	}
	if n <= 0 || n > max {
		return fmt.Errorf("pattern: length %d out of range [1, %d]", n, max)
	}
	p.Length = n
	return nil
}

// Clear removes every trigger and lock.
func (p *Pattern) Clear() {
	for t := range p.Tracks {
		for i := range p.Tracks[t].Steps {
			p.Tracks[t].Steps[i] = Step{}
		}
	}
}
