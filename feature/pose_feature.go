package feature

import (
	"math"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"

	"github.com/longhathuc/agimus-sot/signal"
)

// JacobianFn supplies the 6xN Jacobian of a frame with respect to the
// controlled robot's configuration. A nil JacobianFn marks an
// uncontrollable frame, which contributes a zero block.
type JacobianFn func() (*mat.Dense, error)

// PoseFeature compares a current and a desired relative pose, both live
// signal nodes, and exposes their 6-dimensional local displacement as a
// control error. Nothing is cached across cycles: Error always reflects the
// graph's current tick.
type PoseFeature struct {
	name    string
	graph   *signal.Graph
	current signal.PoseNode
	desired signal.PoseNode
	jacA    JacobianFn
	jacB    JacobianFn
	dim     int
}

// New builds a pose feature over two composite pose nodes of g. dim is the
// configuration dimension of the controlled robot; jacA and jacB may be nil
// for frames outside the actuated chain.
func New(g *signal.Graph, name string, current, desired signal.PoseNode, jacA, jacB JacobianFn, dim int) *PoseFeature {
	return &PoseFeature{
		name:    name,
		graph:   g,
		current: current,
		desired: desired,
		jacA:    jacA,
		jacB:    jacB,
		dim:     dim,
	}
}

func (f *PoseFeature) Name() string { return f.name }

// Current returns the live relative pose between frame A and frame B.
func (f *PoseFeature) Current() spatialmath.Pose {
	return f.current.Pose(f.graph.Tick())
}

// Desired returns the planner-referenced relative pose.
func (f *PoseFeature) Desired() spatialmath.Pose {
	return f.desired.Pose(f.graph.Tick())
}

// Error returns the 6-vector local displacement between the current and
// desired relative poses: translation delta followed by the rotation's
// axis-angle vector, both taken from desired⁻¹·current.
func (f *PoseFeature) Error() []float64 {
	delta := spatialmath.PoseBetween(f.Desired(), f.Current())
	t := delta.Point()
	w := axisAngleVector(delta)
	return []float64{t.X, t.Y, t.Z, w.X, w.Y, w.Z}
}

// ErrorNorm returns the Euclidean norm of the 6-vector error.
func (f *PoseFeature) ErrorNorm() float64 {
	e := f.Error()
	var sum float64
	for _, v := range e {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Jacobian assembles the feature Jacobian from the frame Jacobians:
// Jb - Ja, with zero blocks substituted for uncontrollable frames.
func (f *PoseFeature) Jacobian() (*mat.Dense, error) {
	out := mat.NewDense(6, f.dim, nil)
	if f.jacB != nil {
		jb, err := f.jacB()
		if err != nil {
			return nil, err
		}
		out.Add(out, jb)
	}
	if f.jacA != nil {
		ja, err := f.jacA()
		if err != nil {
			return nil, err
		}
		out.Sub(out, ja)
	}
	return out, nil
}

// Dim returns the configuration dimension the Jacobian is expressed in.
func (f *PoseFeature) Dim() int { return f.dim }

// axisAngleVector returns the rotation of p as an R3 axis-angle vector
// (unit axis scaled by the rotation angle).
func axisAngleVector(p spatialmath.Pose) r3.Vector {
	aa := p.Orientation().AxisAngles()
	return r3.Vector{
		X: aa.RX * aa.Theta,
		Y: aa.RY * aa.Theta,
		Z: aa.RZ * aa.Theta,
	}
}
