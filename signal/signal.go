// Package signal implements the pull-based dataflow graph that re-evaluates
// pose expressions once per control cycle.
//
// Nodes are registered bottom-up, so the registration order of a graph is
// already a topological order of its dependencies. Graph.Step advances the
// cycle counter and evaluates every node exactly once, in order; node values
// are memoized per tick, so a selector and its branches always observe the
// same cycle and never mix values from two cycles.
package signal

import (
	"fmt"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"
)

// PoseNode is a single pose-valued unit of the dataflow graph. Pose must
// never block; it is invoked once per control cycle.
type PoseNode interface {
	Name() string
	Pose(tick uint64) spatialmath.Pose
}

// BoolNode is a boolean-valued node, used as a selector condition.
type BoolNode interface {
	Name() string
	Value(tick uint64) bool
}

// Graph owns a set of nodes and drives their per-cycle evaluation.
type Graph struct {
	logger logging.Logger
	names  map[string]struct{}
	nodes  []PoseNode
	tick   uint64
}

func NewGraph(logger logging.Logger) *Graph {
	return &Graph{
		logger: logger,
		names:  make(map[string]struct{}),
	}
}

// Step runs one control cycle: every registered node is evaluated exactly
// once, in registration (dependency) order. Returns the new tick number.
func (g *Graph) Step() uint64 {
	g.tick++
	for _, n := range g.nodes {
		n.Pose(g.tick)
	}
	return g.tick
}

// Tick returns the current cycle number. Zero means Step has never run.
func (g *Graph) Tick() uint64 {
	return g.tick
}

// Len returns the number of registered pose nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) register(name string, n PoseNode) error {
	if err := g.reserve(name); err != nil {
		return err
	}
	g.nodes = append(g.nodes, n)
	return nil
}

// reserve claims a node name without scheduling evaluation. Used by boolean
// nodes, which are evaluated on demand by their consumers.
func (g *Graph) reserve(name string) error {
	if name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if _, exists := g.names[name]; exists {
		return fmt.Errorf("node %q: %w", name, ErrDuplicateName)
	}
	g.names[name] = struct{}{}
	return nil
}

// memo caches one pose per tick. Tick numbers start at 1, so the zero value
// is always stale.
type memo struct {
	tick uint64
	pose spatialmath.Pose
}

func (m *memo) get(tick uint64) (spatialmath.Pose, bool) {
	if m.tick == tick && m.pose != nil {
		return m.pose, true
	}
	return nil, false
}

func (m *memo) put(tick uint64, pose spatialmath.Pose) spatialmath.Pose {
	m.tick = tick
	m.pose = pose
	return pose
}
