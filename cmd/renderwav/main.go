// Command renderwav renders the engine's step sequencer offline to a mono
// 16-bit PCM WAV file.
//
// Usage:
//
//	renderwav [flags]
//
// Examples:
//
//	renderwav -out groove.wav
//	renderwav -out slow.wav -tempo 90 -seconds 16
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/engine/analyze"
	"github.com/cwbudde/algo-synth/engine/buffer"
	"github.com/cwbudde/algo-synth/engine/seq"
)

func main() {
	out := flag.String("out", "out.wav", "output WAV path")
	tempo := flag.Float64("tempo", 120, "tempo in beats per minute")
	seconds := flag.Float64("seconds", 8, "render duration in seconds")
	flag.Parse()

	if *seconds <= 0 {
		fmt.Fprintf(os.Stderr, "error: seconds must be > 0\n")
		os.Exit(1)
	}

	eng, err := engine.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := eng.SetTempo(*tempo); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := programDemo(eng); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := eng.Config()
	meter, err := analyze.NewMeter(cfg.SampleRate, cfg.BlockSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	blocks := int(*seconds * cfg.SampleRate / float64(cfg.BlockSize))
	samples := make([]int16, 0, blocks*cfg.BlockSize)
	block := buffer.New(cfg.BlockSize)

	eng.Start()
	for i := 0; i < blocks; i++ {
		eng.RenderBlock(block.Samples())
		meter.Push(block.Samples())
		for _, v := range block.Samples() {
			switch {
			case v > 1:
				v = 1
			case v < -1:
				v = -1
			}
			samples = append(samples, int16(v*32767))
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	w := bufio.NewWriter(f)
	if err := writeWAV(w, int(cfg.SampleRate), samples); err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: write %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s: %.1f s at %g bpm, peak %.1f dBFS, rms %.1f dBFS\n",
		*out, *seconds, *tempo, meter.PeakDB(), meter.RMSDB())
}

// writeWAV emits a minimal mono 16-bit PCM RIFF/WAVE stream.
func writeWAV(w io.Writer, sampleRate int, samples []int16) error {
	dataSize := uint32(len(samples) * 2)

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, 36+dataSize); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVEfmt ")); err != nil {
		return err
	}

	type fmtChunk struct {
		Size          uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}
	chunk := fmtChunk{
		Size:          16,
		AudioFormat:   1,
		Channels:      1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * 2),
		BlockAlign:    2,
		BitsPerSample: 16,
	}
	if err := binary.Write(w, binary.LittleEndian, chunk); err != nil {
		return err
	}

	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, samples)
}

// programDemo fills pattern 0 with the same groove synthplay uses.
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

	lead := []uint8{72, 75, 79, 82}
	for i := 0; i < 16; i += 2 {
		step := seq.Step{
			On:       true,
			Note:     lead[(i/2)%len(lead)],
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
