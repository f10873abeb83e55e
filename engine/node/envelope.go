package node

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/engine/core"
)

// Stage identifies the envelope segment currently running.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// idleThreshold is the release level below which the envelope counts as
// fully decayed.
const idleThreshold = 1e-4

// attackOvershoot makes the exponential attack actually reach 1.0 instead
// of approaching it asymptotically.
const attackOvershoot = 1.05

// Envelope is a gate-driven ADSR with one-pole exponential segments.
// Each segment moves the level toward a target with a per-sample
// coefficient precomputed from the segment time, so the per-sample cost is
// one multiply-add regardless of settings.
type Envelope struct {
	sampleRate float64

	attackD0  float64
	decayD0   float64
	releaseD0 float64
	sustain   float64

	stage Stage
	gate  bool
	level float64
}

// NewEnvelope creates an envelope with 5 ms attack, 50 ms decay, 0.7
// sustain and 100 ms release.
func NewEnvelope(sampleRate float64) (*Envelope, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("envelope sample rate must be > 0: %f", sampleRate)
	}
	e := &Envelope{sampleRate: sampleRate, sustain: 0.7}
	e.SetAttack(0.005)
	e.SetDecay(0.05)
	e.SetRelease(0.1)
	return e, nil
}

// segmentCoeff converts a segment time to the one-pole coefficient that
// covers ~98% of the distance to the target within that time. Zero or
// negative times give an instant segment.
func (e *Envelope) segmentCoeff(seconds float64) float64 {
	if seconds <= 0 || !core.IsFinite(seconds) {
		return 1
	}
	return 1 - math.Exp(-4/(seconds*e.sampleRate))
}

// SetAttack sets the attack time in seconds. Zero means instant.
func (e *Envelope) SetAttack(seconds float64) {
	e.attackD0 = e.segmentCoeff(seconds)
}

// SetDecay sets the decay time in seconds. Zero means instant.
func (e *Envelope) SetDecay(seconds float64) {
	e.decayD0 = e.segmentCoeff(seconds)
}

// SetRelease sets the release time in seconds. Zero means instant; the
// envelope still passes through the release stage for exactly one sample so
// the voice lifecycle stays uniform.
func (e *Envelope) SetRelease(seconds float64) {
	e.releaseD0 = e.segmentCoeff(seconds)
}

// SetSustain sets the sustain level in [0, 1].
func (e *Envelope) SetSustain(level float64) error {
	if level < 0 || level > 1 || !core.IsFinite(level) {
		return fmt.Errorf("envelope sustain must be in [0, 1]: %f", level)
	}
	e.sustain = level
	return nil
}

// Gate opens or closes the envelope gate. Opening restarts the attack from
// the current level; closing moves any sounding stage into release.
func (e *Envelope) Gate(on bool) {
	if on == e.gate {
		return
	}
	e.gate = on
	if on {
		e.stage = StageAttack
	} else if e.stage != StageIdle {
		e.stage = StageRelease
	}
}

// Stage returns the current envelope stage.
func (e *Envelope) Stage() Stage {
	return e.stage
}

// Done reports whether a released envelope has fully decayed.
func (e *Envelope) Done() bool {
	return e.stage == StageIdle
}

// next advances the envelope by one sample and returns the new level.
func (e *Envelope) next() float64 {
	switch e.stage {
	case StageAttack:
		e.level += e.attackD0 * (attackOvershoot - e.level)
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level += e.decayD0 * (e.sustain - e.level)
		if math.Abs(e.level-e.sustain) < idleThreshold {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.sustain
	case StageRelease:
		e.level += e.releaseD0 * (0 - e.level)
		e.level = core.FlushDenormals(e.level)
		if e.level < idleThreshold {
			e.level = 0
			e.stage = StageIdle
		}
	default:
		e.level = 0
	}
	return e.level
}

// Render implements Node. With an input block the envelope acts as an
// amplifier, writing input*level; without inputs it writes the raw level
// curve.
func (e *Envelope) Render(dst []float64, inputs [][]float64, _ ParamReader) {
	if len(inputs) > 0 {
		in := inputs[0]
		for i := range dst {
			dst[i] = in[i] * e.next()
		}
		return
	}
	for i := range dst {
		dst[i] = e.next()
	}
}

// Reset implements Node, returning the envelope to idle with the gate
// closed.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.gate = false
	e.level = 0
}
