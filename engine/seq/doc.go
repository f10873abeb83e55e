// Package seq implements the step sequencer and its clock: fixed-capacity
// pattern storage, Q32.32 fixed-point tick accumulation aligned to render
// block boundaries, deterministic event emission, and the note-off flush
// that keeps transport stop free of stuck notes.
package seq
