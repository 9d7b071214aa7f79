package signal

import (
	"go.viam.com/rdk/spatialmath"
)

// Const is a fixed pose, typically a frame's local offset.
type Const struct {
	name string
	pose spatialmath.Pose
}

func NewConst(g *Graph, name string, pose spatialmath.Pose) (*Const, error) {
	if pose == nil {
		pose = spatialmath.NewZeroPose()
	}
	n := &Const{name: name, pose: pose}
	if err := g.register(name, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (c *Const) Name() string { return c.name }

func (c *Const) Pose(uint64) spatialmath.Pose { return c.pose }

// Func adapts a pull function to a pose node. The function is invoked at
// most once per tick; external sources (kinematics, trackers, planner
// topics) enter the graph through Func nodes.
type Func struct {
	name string
	fn   func() spatialmath.Pose
	m    memo
}

func NewFunc(g *Graph, name string, fn func() spatialmath.Pose) (*Func, error) {
	n := &Func{name: name, fn: fn}
	if err := g.register(name, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (f *Func) Name() string { return f.name }

func (f *Func) Pose(tick uint64) spatialmath.Pose {
	if p, ok := f.m.get(tick); ok {
		return p
	}
	return f.m.put(tick, f.fn())
}

// BoolFunc adapts a pull function to a boolean node, evaluated at most once
// per tick. A selector condition backed by a BoolFunc therefore cannot flip
// mid-cycle.
type BoolFunc struct {
	name string
	fn   func() bool
	tick uint64
	val  bool
}

func NewBoolFunc(g *Graph, name string, fn func() bool) (*BoolFunc, error) {
	n := &BoolFunc{name: name, fn: fn}
	if err := g.reserve(name); err != nil {
		return nil, err
	}
	return n, nil
}

func (b *BoolFunc) Name() string { return b.name }

func (b *BoolFunc) Value(tick uint64) bool {
	if b.tick != tick {
		b.val = b.fn()
		b.tick = tick
	}
	return b.val
}

// Product is the ordered composition of its factors. Composition of rigid
// transforms is not commutative; factors are applied strictly left to right.
type Product struct {
	name    string
	factors []PoseNode
	m       memo
}

func NewProduct(g *Graph, name string, factors ...PoseNode) (*Product, error) {
	if len(factors) == 0 {
		return nil, ErrNoFactors
	}
	n := &Product{name: name, factors: factors}
	if err := g.register(name, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Product) Name() string { return p.name }

func (p *Product) Pose(tick uint64) spatialmath.Pose {
	if v, ok := p.m.get(tick); ok {
		return v
	}
	out := p.factors[0].Pose(tick)
	for _, f := range p.factors[1:] {
		out = spatialmath.Compose(out, f.Pose(tick))
	}
	return p.m.put(tick, out)
}

// Inverse is the SE(3) inverse of its source node.
type Inverse struct {
	name string
	src  PoseNode
	m    memo
}

func NewInverse(g *Graph, name string, src PoseNode) (*Inverse, error) {
	n := &Inverse{name: name, src: src}
	if err := g.register(name, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (i *Inverse) Name() string { return i.name }

func (i *Inverse) Pose(tick uint64) spatialmath.Pose {
	if v, ok := i.m.get(tick); ok {
		return v
	}
	return i.m.put(tick, spatialmath.PoseInverse(i.src.Pose(tick)))
}

// Select picks between two pose nodes on a per-tick boolean condition. The
// condition and both branches are memoized on the same tick, so the output
// is always entirely the then-branch or entirely the else-branch for any
// one cycle.
type Select struct {
	name     string
	cond     BoolNode
	then, el PoseNode
	m        memo
}

func NewSelect(g *Graph, name string, cond BoolNode, then, els PoseNode) (*Select, error) {
	n := &Select{name: name, cond: cond, then: then, el: els}
	if err := g.register(name, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Select) Name() string { return s.name }

func (s *Select) Pose(tick uint64) spatialmath.Pose {
	if v, ok := s.m.get(tick); ok {
		return v
	}
	if s.cond.Value(tick) {
		return s.m.put(tick, s.then.Pose(tick))
	}
	return s.m.put(tick, s.el.Pose(tick))
}
