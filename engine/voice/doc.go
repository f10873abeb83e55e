// Package voice implements the polyphonic voice pool: allocation of note
// events onto a fixed set of oscillator/filter/envelope voices, the
// Free -> Active -> Releasing -> Free lifecycle, and the steal-oldest
// policy applied when the pool is exhausted.
package voice
