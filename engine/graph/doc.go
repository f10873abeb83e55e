// Package graph implements the audio processing graph: a statically sized,
// acyclic set of signal nodes whose topological render order is computed
// once at build time. All topology failures surface from Build; RenderBlock
// is infallible and allocation-free by contract.
package graph
