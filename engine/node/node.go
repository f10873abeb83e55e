package node

// ParamReader is the render-side view of the parameter store. Reads are
// wait-free and infallible; unknown ids read as 0.
type ParamReader interface {
	Get(id int) float64
}

// Node is one DSP processing unit. Render transforms the input blocks into
// dst, advancing internal state by exactly one block of time. The work done
// by Render must be bounded by the block length alone; nothing in an
// implementation may loop over data-dependent counts, block, or allocate.
//
// inputs carries the already-rendered upstream blocks. Nodes with a single
// signal path read inputs[0]; the graph pre-mixes multiple upstream edges
// additively before the call, so len(inputs) is at most 1 for the built-in
// variants. inputs is nil for pure sources.
//
// Reset returns the node to its initial state. It is called when a voice is
// stolen or returned to the pool.
type Node interface {
	Render(dst []float64, inputs [][]float64, params ParamReader)
	Reset()
}

// NoParams is a ParamReader for nodes rendered outside a graph (tests,
// standalone use). Every id reads as 0.
type NoParams struct{}

// Get implements ParamReader.
func (NoParams) Get(int) float64 { return 0 }
