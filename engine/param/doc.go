// Package param implements the lock-free parameter store shared between the
// control and render contexts. Every parameter lives in a fixed-capacity
// table indexed by a construction-time id; writes clamp to the declared
// range and publish through a single atomic word, so reads on the render
// side are wait-free and infallible.
package param
