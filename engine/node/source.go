package node

import "github.com/cwbudde/algo-synth/engine/core"

// Source injects externally produced audio into a graph. The engine feeds
// it the summed voice block before rendering the master chain; Feed and
// Render both run on the render context, so no synchronization is needed.
type Source struct {
	feed []float64
}

// NewSource creates a source with an owned feed buffer of blockSize samples.
func NewSource(blockSize int) *Source {
	if blockSize < 0 {
		blockSize = 0
	}
	return &Source{feed: make([]float64, blockSize)}
}

// Feed copies one block into the source. Samples beyond the feed buffer
// length are ignored.
func (s *Source) Feed(block []float64) {
	core.CopyInto(s.feed, block)
}

// Buffer returns the feed buffer for callers that want to write in place
// and skip the copy.
func (s *Source) Buffer() []float64 {
	return s.feed
}

// Render implements Node, copying the fed block into dst.
func (s *Source) Render(dst []float64, _ [][]float64, _ ParamReader) {
	core.CopyInto(dst, s.feed)
}

// Reset implements Node, zeroing the feed buffer.
func (s *Source) Reset() {
	core.Zero(s.feed)
}
