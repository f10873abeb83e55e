package buffer

// Block wraps a fixed-length float64 slice holding one render quantum.
// Render-path code works on raw []float64 slices; Block is the
// control-context convenience for handing rendered audio around without
// re-allocating.
type Block struct {
	samples []float64
}

// New returns a zero-filled Block of the given length.
func New(length int) *Block {
	if length < 0 {
		length = 0
	}
	return &Block{samples: make([]float64, length)}
}

// FromSlice wraps an existing slice without copying.
// Mutations to the slice are visible through the Block and vice versa.
func FromSlice(s []float64) *Block {
	return &Block{samples: s}
}

// Samples returns the underlying slice.
func (b *Block) Samples() []float64 {
	return b.samples
}

// Len returns the number of samples.
func (b *Block) Len() int {
	return len(b.samples)
}

// Resize sets the length to n, reusing existing capacity when possible.
// New elements beyond the previous length are zeroed.
func (b *Block) Resize(n int) {
	if n < 0 {
		n = 0
	}
	oldLen := len(b.samples)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]float64, n)
		copy(s, b.samples)
		b.samples = s
	}
	if n > oldLen {
		for i := oldLen; i < n; i++ {
			b.samples[i] = 0
		}
	}
}

// Zero sets all samples to 0.
func (b *Block) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}

// CopyFrom copies src into the block, up to the shorter length, and
// returns the number of copied samples.
func (b *Block) CopyFrom(src []float64) int {
	n := len(b.samples)
	if len(src) < n {
		n = len(src)
	}
	copy(b.samples[:n], src[:n])
	return n
}

// Clone returns an independent copy of the block.
func (b *Block) Clone() *Block {
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return &Block{samples: out}
}
