package seq

import (
	"fmt"

	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-synth/engine/event"
)

// Tempo bounds accepted by SetTempo.
const (
	MinTempoBPM = 20
	MaxTempoBPM = 999
)

// gate tracks the note a track is currently holding open.
type gate struct {
	on   bool
	note uint8
}

// Sequencer advances musical time in whole render blocks and emits note and
// parameter events aligned to block boundaries.
//
// Time is accumulated in Q32.32 ticks (24 per quarter note). The per-block
// increment is recomputed only when the tempo changes, so advancement is
// pure integer addition and the step schedule cannot drift.
type Sequencer struct {
	cfg core.Config

	patterns []*Pattern
	active   int

	tempo float64
	incQ  uint64
	tickQ uint64

	running      bool
	pendingFirst bool
	step         int

	gates []gate
}

// New returns a stopped sequencer at 120 bpm with empty patterns.
func New(cfg core.Config) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Sequencer{
		cfg:      cfg,
		patterns: make([]*Pattern, cfg.MaxPatterns),
		gates:    make([]gate, cfg.MaxTracks),
	}
	for i := range s.patterns {
		s.patterns[i] = NewPattern(cfg)
	}
	if err := s.SetTempo(120); err != nil {
		return nil, err
	}
	return s, nil
}

// SetTempo changes the tempo and recomputes the fixed-point block
// increment once.
func (s *Sequencer) SetTempo(bpm float64) error {
	if bpm < MinTempoBPM || bpm > MaxTempoBPM || !core.IsFinite(bpm) {
		return fmt.Errorf("seq: tempo must be in [%d, %d] bpm: %f", MinTempoBPM, MaxTempoBPM, bpm)
	}
	s.tempo = bpm
	s.incQ = core.TicksPerBlockQ32(bpm, s.cfg.SampleRate, s.cfg.BlockSize)
	return nil
}

// Tempo returns the current tempo in bpm.
func (s *Sequencer) Tempo() float64 {
	return s.tempo
}

// Start rewinds to step 0 of the active pattern and begins playback. The
// first Advance call fires step 0.
func (s *Sequencer) Start() {
	s.tickQ = 0
	s.step = 0
	s.pendingFirst = true
	s.running = true
}

// Stop halts playback. Before halting it appends a NoteOff for every note
// still gated by a step, so no voice is left stuck; the caller must deliver
// these flush events exactly like regular sequencer output.
func (s *Sequencer) Stop(out []event.Event) []event.Event {
	for t := range s.gates {
		if s.gates[t].on {
			out = append(out, event.NoteOff(uint8(t), s.gates[t].note))
			s.gates[t].on = false
		}
	}
	s.running = false
	s.pendingFirst = false
	return out
}

// Running reports whether the transport is started.
func (s *Sequencer) Running() bool {
	return s.running
}

// Position returns the active pattern index and the current step.
func (s *Sequencer) Position() (pattern, step int) {
	return s.active, s.step
}

// TickCount returns the whole ticks elapsed since Start.
func (s *Sequencer) TickCount() uint64 {
	return core.WholeTicks(s.tickQ)
}

// Pattern returns pattern i for editing, or nil when out of range. Editing
// is a control-context operation.
func (s *Sequencer) Pattern(i int) *Pattern {
	if i < 0 || i >= len(s.patterns) {
		return nil
	}
	return s.patterns[i]
}

// SetActivePattern switches playback to pattern i immediately. The current
// step position carries over; positions past the new pattern's length read
// as empty steps and wrap at the next boundary. During playback call this
// on the render context only — the engine routes live switches through its
// event queue so they land on a block boundary.
func (s *Sequencer) SetActivePattern(i int) error {
	if i < 0 || i >= len(s.patterns) {
		return fmt.Errorf("seq: pattern %d out of range [0, %d)", i, len(s.patterns))
	}
	s.active = i
	return nil
}

// Advance moves the clock forward by exactly one block and appends the
// events for every step boundary crossed inside that block. Events are
// deterministic and stably ordered: steps in time order, tracks in
// ascending order, and per step NoteOff before NoteOn before locks.
//
// out must have capacity for the caller's worst case; Advance appends and
// never allocates when capacity suffices.
func (s *Sequencer) Advance(out []event.Event) []event.Event {
	if !s.running {
		return out
	}

	if s.pendingFirst {
		s.pendingFirst = false
		out = s.fireStep(out)
	}

	stepQ := core.StepQ32()
	before := s.tickQ
	s.tickQ += s.incQ

	crossings := s.tickQ/stepQ - before/stepQ
	for n := uint64(0); n < crossings; n++ {
		s.advanceStep()
		out = s.fireStep(out)
	}
	return out
}

// advanceStep moves to the next step, wrapping at the pattern end and
// following the pattern chain.
func (s *Sequencer) advanceStep() {
	p := s.patterns[s.active]
	s.step++
	if s.step < p.Length {
		return
	}

	s.step = 0
	if p.Next >= 0 && p.Next < len(s.patterns) {
		s.active = p.Next
	}
}

// fireStep appends the events for the current step position.
func (s *Sequencer) fireStep(out []event.Event) []event.Event {
	p := s.patterns[s.active]
	for t := range p.Tracks {
		step := p.StepAt(t, s.step)
		if !step.On {
			continue
		}

		if t < len(s.gates) && s.gates[t].on {
			out = append(out, event.NoteOff(uint8(t), s.gates[t].note))
		}

		out = append(out, event.NoteOn(uint8(t), step.Note, step.Velocity))
		if t < len(s.gates) {
			s.gates[t] = gate{on: true, note: step.Note}
		}

		for _, lock := range step.Locks {
			out = append(out, event.ParamChange(lock.Param, lock.Value))
		}
	}
	return out
}
