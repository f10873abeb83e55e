package graph

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-synth/engine/node"
)

var (
	// ErrCycle is returned when the connection set is not acyclic.
	ErrCycle = errors.New("graph: contains cycle")
	// ErrCapacity is returned when node or connection counts exceed the
	// configured maxima.
	ErrCapacity = errors.New("graph: capacity exceeded")
	// ErrDangling is returned when a connection references an unknown node.
	ErrDangling = errors.New("graph: dangling connection")
	// ErrDuplicate is returned for repeated node ids or connections.
	ErrDuplicate = errors.New("graph: duplicate")
	// ErrNoOutput is returned when the output id names no node.
	ErrNoOutput = errors.New("graph: unknown output node")
	// ErrNilNode is returned when a spec carries no node instance.
	ErrNilNode = errors.New("graph: nil node")
)

// Spec declares one node of the graph under a caller-chosen id.
type Spec struct {
	ID   string
	Node node.Node
}

// Connection is a directed edge between two node ids.
type Connection struct {
	From string
	To   string
}

// Graph owns a fixed set of signal nodes and their connections. Topology is
// validated and topologically sorted once at build time; rendering then
// walks the stored order with preallocated buffers and cannot fail.
type Graph struct {
	blockSize int

	nodes    []node.Node
	order    []int
	upstream [][]int
	outBufs  [][]float64

	// inViews[i] is the inputs slice passed to node i's Render; it is
	// wired at build time to either nothing, the single upstream buffer,
	// or the node's private mix buffer.
	inViews [][][]float64
	mixBufs [][]float64
	output  int
}

// Build validates the topology against cfg and compiles the render order.
// All failures are construction-time; a successfully built graph renders
// infallibly.
func Build(cfg core.Config, specs []Spec, conns []Connection, outputID string) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrNoOutput)
	}
	if len(specs) > cfg.MaxNodes {
		return nil, fmt.Errorf("%w: %d nodes > max %d", ErrCapacity, len(specs), cfg.MaxNodes)
	}
	if len(conns) > cfg.MaxConnections {
		return nil, fmt.Errorf("%w: %d connections > max %d", ErrCapacity, len(conns), cfg.MaxConnections)
	}

	index := make(map[string]int, len(specs))
	nodes := make([]node.Node, len(specs))
	for i, s := range specs {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: empty node id", ErrDangling)
		}
		if s.Node == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilNode, s.ID)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("%w node id: %q", ErrDuplicate, s.ID)
		}
		index[s.ID] = i
		nodes[i] = s.Node
	}

	output, ok := index[outputID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoOutput, outputID)
	}

	upstream := make([][]int, len(specs))
	downstream := make([][]int, len(specs))
	indegree := make([]int, len(specs))
	seenEdge := make(map[Connection]struct{}, len(conns))

	for _, c := range conns {
		from, ok := index[c.From]
		if !ok {
			return nil, fmt.Errorf("%w: from %q", ErrDangling, c.From)
		}
		to, ok := index[c.To]
		if !ok {
			return nil, fmt.Errorf("%w: to %q", ErrDangling, c.To)
		}
		if from == to {
			return nil, fmt.Errorf("%w: self-loop on %q", ErrCycle, c.From)
		}
		if _, dup := seenEdge[c]; dup {
			return nil, fmt.Errorf("%w connection: %q -> %q", ErrDuplicate, c.From, c.To)
		}
		seenEdge[c] = struct{}{}

		upstream[to] = append(upstream[to], from)
		downstream[from] = append(downstream[from], to)
		indegree[to]++
	}

	// Kahn's algorithm; spec order breaks ties so the render order is
	// deterministic for a given build call.
	queue := make([]int, 0, len(specs))
	for i := range specs {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, len(specs))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, j := range downstream[i] {
			indegree[j]--
			if indegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(order) != len(specs) {
		return nil, ErrCycle
	}

	g := &Graph{
		blockSize: cfg.BlockSize,
		nodes:     nodes,
		order:     order,
		upstream:  upstream,
		outBufs:   make([][]float64, len(specs)),
		inViews:   make([][][]float64, len(specs)),
		mixBufs:   make([][]float64, len(specs)),
		output:    output,
	}

	for i := range specs {
		g.outBufs[i] = make([]float64, cfg.BlockSize)
		switch len(upstream[i]) {
		case 0:
			g.inViews[i] = nil
		case 1:
			g.inViews[i] = [][]float64{g.outBufs[upstream[i][0]]}
		default:
			g.mixBufs[i] = make([]float64, cfg.BlockSize)
			g.inViews[i] = [][]float64{g.mixBufs[i]}
		}
	}

	return g, nil
}

// BlockSize returns the block length the graph renders.
func (g *Graph) BlockSize() int {
	return g.blockSize
}

// RenderBlock renders one block and returns the output node's buffer. The
// returned slice is owned by the graph and valid until the next call. By
// contract this cannot fail: topology errors were rejected at build time
// and no allocation or data-dependent work happens here.
//
// Nodes with multiple upstream edges receive the additive mix of their
// inputs; there is no implicit clipping.
func (g *Graph) RenderBlock(params node.ParamReader) []float64 {
	for _, i := range g.order {
		if mix := g.mixBufs[i]; mix != nil {
			core.Zero(mix)
			for _, up := range g.upstream[i] {
				vecmath.AddBlockInPlace(mix, g.outBufs[up])
			}
		}
		g.nodes[i].Render(g.outBufs[i], g.inViews[i], params)
	}
	return g.outBufs[g.output]
}

// Reset resets every node in the graph.
func (g *Graph) Reset() {
	for _, n := range g.nodes {
		n.Reset()
	}
}
