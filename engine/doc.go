// Package engine assembles the audio engine: a lock-free parameter store,
// a bounded cross-context event queue, a fixed-point step sequencer, a
// polyphonic voice pool and a master processing graph, coordinated so the
// render context meets a hard per-block deadline with zero allocation and
// zero blocking while the control context edits patterns and parameters
// freely.
//
// The engine targets both microcontroller-class builds and desktop
// prototyping: every capacity (polyphony, block size, pattern storage,
// queue depth) is fixed by core.Config at construction.
package engine
