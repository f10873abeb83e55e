package node

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/engine/core"
)

// Gain scales its input by a fixed factor or a bound parameter.
type Gain struct {
	gain      float64
	gainParam int
}

// NewGain creates a unity gain stage.
func NewGain() *Gain {
	return &Gain{gain: 1, gainParam: -1}
}

// SetGain sets the linear gain factor in [0, 4].
func (g *Gain) SetGain(gain float64) error {
	if gain < 0 || gain > 4 || !core.IsFinite(gain) {
		return fmt.Errorf("gain must be in [0, 4]: %f", gain)
	}
	g.gain = gain
	return nil
}

// BindGain makes the stage read its gain from the given parameter id at
// each block boundary. Pass a negative id to unbind.
func (g *Gain) BindGain(paramID int) {
	g.gainParam = paramID
}

// Render implements Node, writing inputs[0]*gain into dst. With no input
// it writes silence.
func (g *Gain) Render(dst []float64, inputs [][]float64, params ParamReader) {
	if len(inputs) == 0 {
		core.Zero(dst)
		return
	}

	gain := g.gain
	if g.gainParam >= 0 && params != nil {
		if v := params.Get(g.gainParam); v >= 0 && core.IsFinite(v) {
			gain = v
		}
	}

	vecmath.ScaleBlock(dst, inputs[0], gain)
}

// Reset implements Node. Gain is stateless.
func (g *Gain) Reset() {}
