// Command synthplay runs the engine's step sequencer through the default
// audio device.
//
// Usage:
//
//	synthplay [flags]
//
// Examples:
//
//	synthplay
//	synthplay -tempo 140 -seconds 8
//	synthplay -cutoff 800 -resonance 4
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/engine/buffer"
	"github.com/cwbudde/algo-synth/engine/seq"
)

// stream adapts the engine's block renderer to the byte reader the audio
// context pulls from, converting float64 blocks to float32 little-endian.
type stream struct {
	eng     *engine.Engine
	block   *buffer.Block
	buf     []byte
	pending []byte
}

func newStream(eng *engine.Engine) *stream {
	size := eng.Config().BlockSize
	return &stream{
		eng:   eng,
		block: buffer.New(size),
		buf:   make([]byte, 0, size*4),
	}
}

func (s *stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 {
			s.eng.RenderBlock(s.block.Samples())
			s.buf = s.buf[:0]
			for _, v := range s.block.Samples() {
				s.buf = binary.LittleEndian.AppendUint32(s.buf, math.Float32bits(float32(v)))
			}
			s.pending = s.buf
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

func main() {
	tempo := flag.Float64("tempo", 120, "tempo in beats per minute")
	seconds := flag.Float64("seconds", 0, "playback duration; 0 plays until interrupted")
	cutoff := flag.Float64("cutoff", 2000, "voice filter cutoff in Hz")
	resonance := flag.Float64("resonance", 0.7, "voice filter resonance")
	flag.Parse()

	eng, err := engine.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := eng.SetTempo(*tempo); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	eng.SetParam(engine.ParamCutoff, *cutoff)
	eng.SetParam(engine.ParamResonance, *resonance)

	if err := programDemo(eng); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	op := &oto.NewContextOptions{
		SampleRate:   int(eng.Config().SampleRate),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: audio context: %v\n", err)
		os.Exit(1)
	}
	<-ready

	eng.Start()
	player := ctx.NewPlayer(newStream(eng))
	player.Play()
	defer func() { _ = player.Close() }()

	if *seconds > 0 {
		time.Sleep(time.Duration(*seconds * float64(time.Second)))
	} else {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
	}

	eng.Stop()
	// Let the release tails ring out before tearing the device down.
	time.Sleep(300 * time.Millisecond)

	if dropped := eng.Dropped(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d control events dropped\n", dropped)
	}
}

// programDemo fills pattern 0 with a bass line and an arpeggiated lead with
// cutoff locks sweeping across the bar.
func programDemo(eng *engine.Engine) error {
	p := eng.Pattern(0)

	bass := []struct {
		step int
		note uint8
	}{
		{0, 36}, {4, 36}, {8, 43}, {12, 36}, {14, 41},
	}
	for _, b := range bass {
		if err := p.SetStep(0, b.step, seq.Step{On: true, Note: b.note, Velocity: 110}); err != nil {
			return err
		}
	}

	lead := []uint8{60, 63, 67, 70}
	for i := 0; i < 16; i += 2 {
		step := seq.Step{
			On:       true,
			Note:     lead[(i/2)%len(lead)] + 12,
			Velocity: 90,
			Locks: []seq.ParamLock{
				{Param: engine.ParamCutoff, Value: 600 + 400*float64(i)},
			},
		}
		if err := p.SetStep(1, i, step); err != nil {
			return err
		}
	}
	return nil
}
