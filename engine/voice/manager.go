package voice

import (
	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-synth/engine/node"
)

// Manager maps note events onto a fixed pool of voices. All methods run on
// the render context; the pool is sized once at construction and never
// grows.
//
// Stealing policy (user-observable, so fixed and tested): a note-on with no
// free voice steals the oldest Releasing voice if any exist, otherwise the
// oldest Active voice. "Oldest" means earliest trigger sequence number, so
// the audibly newest notes survive.
type Manager struct {
	voices []*Voice
	seq    uint64
}

// NewManager builds a pool of cfg.MaxVoices identical voices.
func NewManager(cfg core.Config, profile Profile) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{voices: make([]*Voice, cfg.MaxVoices)}
	for i := range m.voices {
		v, err := newVoice(cfg, profile)
		if err != nil {
			return nil, err
		}
		m.voices[i] = v
	}
	return m, nil
}

// NoteOn assigns a voice to the note, stealing one if the pool is
// exhausted. Resource exhaustion is handled by policy, never reported as an
// error.
func (m *Manager) NoteOn(note, velocity uint8) {
	m.seq++

	if v := m.findFree(); v != nil {
		v.trigger(note, velocity, m.seq)
		return
	}
	if v := m.oldestInState(StateReleasing); v != nil {
		v.trigger(note, velocity, m.seq)
		return
	}
	if v := m.oldestInState(StateActive); v != nil {
		v.trigger(note, velocity, m.seq)
	}
}

// NoteOff releases the matching Active voice. With repeated same-pitch
// triggers the most recently triggered match releases first. Releasing an
// unknown note is a no-op.
func (m *Manager) NoteOff(note uint8) {
	var match *Voice
	for _, v := range m.voices {
		if v.state != StateActive || v.note != note {
			continue
		}
		if match == nil || v.seq > match.seq {
			match = v
		}
	}
	if match != nil {
		match.release()
	}
}

// ReleaseAll moves every Active voice into Releasing. Used by the transport
// stop flush.
func (m *Manager) ReleaseAll() {
	for _, v := range m.voices {
		if v.state == StateActive {
			v.release()
		}
	}
}

// TickRelease returns fully decayed Releasing voices to the pool. Call once
// per block, after rendering.
func (m *Manager) TickRelease() {
	for _, v := range m.voices {
		if v.state == StateReleasing && v.env.Done() {
			v.reset()
		}
	}
}

// RenderBlock sums every sounding voice into dst. dst is not cleared first,
// so callers can layer the voice mix over other material.
func (m *Manager) RenderBlock(dst []float64, params node.ParamReader) {
	for _, v := range m.voices {
		if v.state == StateFree {
			continue
		}
		v.renderAdd(dst, params)
	}
}

// CountInState returns how many voices are currently in the given state.
func (m *Manager) CountInState(state State) int {
	n := 0
	for _, v := range m.voices {
		if v.state == state {
			n++
		}
	}
	return n
}

// Voices exposes the pool for inspection in tests and metering.
func (m *Manager) Voices() []*Voice {
	return m.voices
}

func (m *Manager) findFree() *Voice {
	for _, v := range m.voices {
		if v.state == StateFree {
			return v
		}
	}
	return nil
}

func (m *Manager) oldestInState(state State) *Voice {
	var oldest *Voice
	for _, v := range m.voices {
		if v.state != state {
			continue
		}
		if oldest == nil || v.seq < oldest.seq {
			oldest = v
		}
	}
	return oldest
}
