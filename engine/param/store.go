package param

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/engine/core"
)

// Def declares one controllable parameter. IDs are the index into the slice
// handed to New, fixed for the lifetime of the store.
type Def struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

var (
	errEmptyName     = errors.New("param: empty name")
	errDuplicateName = errors.New("param: duplicate name")
)

// Store holds the current value of every declared parameter in a fixed
// table. Writes come from the control context through Set; the render
// context reads through Get. Each cell is a single atomic word, so neither
// side ever blocks the other.
type Store struct {
	defs  []Def
	cells []atomic.Uint64
}

// New validates the definitions and returns a store with every parameter at
// its default value.
func New(defs []Def) (*Store, error) {
	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: id %d", errEmptyName, i)
		}
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("%w: %q", errDuplicateName, d.Name)
		}
		seen[d.Name] = struct{}{}

		if !core.IsFinite(d.Min) || !core.IsFinite(d.Max) || d.Min > d.Max {
			return nil, fmt.Errorf("param %q: invalid range [%f, %f]", d.Name, d.Min, d.Max)
		}
		if d.Default < d.Min || d.Default > d.Max {
			return nil, fmt.Errorf("param %q: default %f outside [%f, %f]",
				d.Name, d.Default, d.Min, d.Max)
		}
	}

	s := &Store{
		defs:  append([]Def(nil), defs...),
		cells: make([]atomic.Uint64, len(defs)),
	}
	for i, d := range s.defs {
		s.cells[i].Store(math.Float64bits(d.Default))
	}
	return s, nil
}

// Len returns the number of declared parameters.
func (s *Store) Len() int {
	return len(s.defs)
}

// Def returns the definition for id. It panics for unknown ids; parameter
// ids are fixed at construction, so an out-of-range id is a programming
// error, not a runtime condition.
func (s *Store) Def(id int) Def {
	s.mustValidID(id)
	return s.defs[id]
}

// Set clamps value to the parameter's declared range and publishes it.
// The new value is visible to the render context on or before the next
// block boundary. Non-finite values fall back to the parameter default.
// Set panics for unknown ids.
func (s *Store) Set(id int, value float64) {
	s.mustValidID(id)

	d := s.defs[id]
	if !core.IsFinite(value) {
		value = d.Default
	}
	value = core.Clamp(value, d.Min, d.Max)
	s.cells[id].Store(math.Float64bits(value))
}

// Get returns the current value of id. It never blocks and never fails:
// unknown ids read as 0 so the render path stays infallible.
func (s *Store) Get(id int) float64 {
	if id < 0 || id >= len(s.cells) {
		return 0
	}
	return math.Float64frombits(s.cells[id].Load())
}

// Reset restores every parameter to its default.
func (s *Store) Reset() {
	for i, d := range s.defs {
		s.cells[i].Store(math.Float64bits(d.Default))
	}
}

func (s *Store) mustValidID(id int) {
	if id < 0 || id >= len(s.defs) {
		panic(fmt.Sprintf("param: id %d out of range [0, %d)", id, len(s.defs)))
	}
}
