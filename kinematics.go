package agimussot

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/referenceframe"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"
)

// jacobianStep is the joint perturbation used for numeric differentiation.
const jacobianStep = 1e-6

// ModelKinematics implements Kinematics on top of referenceframe models. One
// frame is registered per controllable body link, together with a function
// returning the live joint inputs of its chain; the full configuration is
// the concatenation of all registered chains, in registration order.
type ModelKinematics struct {
	logger logging.Logger
	bodies map[string]*modelBody
	dim    int
}

type modelBody struct {
	frame  referenceframe.Frame
	inputs func() []referenceframe.Input
	offset int
}

func NewModelKinematics(logger logging.Logger) *ModelKinematics {
	return &ModelKinematics{
		logger: logger,
		bodies: make(map[string]*modelBody),
	}
}

// AddBody registers the kinematic chain whose tip is the named body link.
// inputs must return the chain's current joint values without blocking.
func (mk *ModelKinematics) AddBody(link string, frame referenceframe.Frame, inputs func() []referenceframe.Input) error {
	if _, exists := mk.bodies[link]; exists {
		return fmt.Errorf("body %q already registered", link)
	}
	mk.bodies[link] = &modelBody{
		frame:  frame,
		inputs: inputs,
		offset: mk.dim,
	}
	mk.dim += len(frame.DoF())
	return nil
}

func (mk *ModelKinematics) Dim() int { return mk.dim }

func (mk *ModelKinematics) HasBody(link string) bool {
	_, ok := mk.bodies[link]
	return ok
}

func (mk *ModelKinematics) BodyPose(link string) (spatialmath.Pose, error) {
	body, ok := mk.bodies[link]
	if !ok {
		return nil, fmt.Errorf("body %q: %w", link, ErrUnboundFrame)
	}
	pose, err := body.frame.Transform(body.inputs())
	if err != nil {
		return nil, errors.Wrapf(err, "forward kinematics of %q", link)
	}
	return pose, nil
}

// BodyJacobian computes the body's 6xDim velocity Jacobian by perturbing
// each joint of its chain in turn. Joints of other chains contribute zero
// columns.
func (mk *ModelKinematics) BodyJacobian(link string) (*mat.Dense, error) {
	body, ok := mk.bodies[link]
	if !ok {
		return nil, fmt.Errorf("body %q: %w", link, ErrUnboundFrame)
	}

	inputs := body.inputs()
	base, err := body.frame.Transform(inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "forward kinematics of %q", link)
	}

	jac := mat.NewDense(6, mk.dim, nil)
	perturbed := make([]referenceframe.Input, len(inputs))
	for j := range inputs {
		copy(perturbed, inputs)
		perturbed[j] = inputs[j] + jacobianStep

		moved, err := body.frame.Transform(perturbed)
		if err != nil {
			return nil, errors.Wrapf(err, "perturbed kinematics of %q joint %d", link, j)
		}

		col := body.offset + j
		dt := moved.Point().Sub(base.Point())
		jac.Set(0, col, dt.X/jacobianStep)
		jac.Set(1, col, dt.Y/jacobianStep)
		jac.Set(2, col, dt.Z/jacobianStep)

		aa := spatialmath.PoseBetween(base, moved).Orientation().AxisAngles()
		jac.Set(3, col, aa.RX*aa.Theta/jacobianStep)
		jac.Set(4, col, aa.RY*aa.Theta/jacobianStep)
		jac.Set(5, col, aa.RZ*aa.Theta/jacobianStep)
	}
	return jac, nil
}
