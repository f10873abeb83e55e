package buffer

import "testing"

func TestNewZeroFilled(t *testing.T) {
	t.Parallel()

	b := New(16)
	if b.Len() != 16 {
		t.Fatalf("Len = %d, want 16", b.Len())
	}
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestNewNegativeLength(t *testing.T) {
	t.Parallel()

	b := New(-4)
	if b.Len() != 0 {
		t.Fatalf("Len = %d, want 0", b.Len())
	}
}

func TestFromSliceShares(t *testing.T) {
	t.Parallel()

	s := []float64{1, 2, 3}
	b := FromSlice(s)

	s[0] = 9
	if b.Samples()[0] != 9 {
		t.Error("FromSlice should share backing storage")
	}
}

func TestResizeZeroesNewTail(t *testing.T) {
	t.Parallel()

	b := New(4)
	copy(b.Samples(), []float64{1, 2, 3, 4})

	b.Resize(2)
	b.Resize(4)

	s := b.Samples()
	if s[0] != 1 || s[1] != 2 {
		t.Errorf("head changed: %v", s)
	}
	if s[2] != 0 || s[3] != 0 {
		t.Errorf("re-exposed tail not zeroed: %v", s)
	}
}

func TestCopyFromAndClone(t *testing.T) {
	t.Parallel()

	b := New(3)
	n := b.CopyFrom([]float64{5, 6, 7, 8})
	if n != 3 {
		t.Fatalf("CopyFrom copied %d, want 3", n)
	}

	c := b.Clone()
	b.Samples()[0] = 0
	if c.Samples()[0] != 5 {
		t.Error("Clone should be independent")
	}
}

func TestPoolReuse(t *testing.T) {
	t.Parallel()

	p := NewPool()
	b := p.Get(8)
	b.Samples()[0] = 1
	p.Put(b)

	c := p.Get(8)
	if c.Len() != 8 {
		t.Fatalf("Len = %d, want 8", c.Len())
	}
	for i, v := range c.Samples() {
		if v != 0 {
			t.Fatalf("pooled block not zeroed at %d: %v", i, v)
		}
	}

	p.Put(nil) // must not panic
}
