// Package node defines the signal node contract and the built-in node
// variants: oscillator, ADSR envelope, state-variable filter, gain stage,
// and external-feed source. All nodes render exactly one block per call in
// time bounded by the block length, never allocate, and own their internal
// state exclusively.
package node
