package agimussot

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"

	"github.com/longhathuc/agimus-sot/feature"
	"github.com/longhathuc/agimus-sot/signal"
)

const (
	namePrefix = "pregrasp"

	// measSuffix marks the tracker-side alias of a link frame.
	measSuffix = "_measured"

	// worldFrame is the reference frame tracker observations are taken in.
	worldFrame = "world"
)

// Strategy is the composition strategy chosen from the controllability of
// the two gripper/handle pairs.
type Strategy int

const (
	// StrategyNone: both sides uncontrollable, nothing to build.
	StrategyNone Strategy = iota
	// StrategyAbsolute aligns the gripper directly onto the handle.
	StrategyAbsolute
	// StrategyRelative aligns the gripper onto the handle expressed relative
	// to the other gripper's grasp of the same body.
	StrategyRelative
	// StrategyAbsoluteBasedOnOther moves the other, actuated gripper so its
	// handle lands on the first (fixed) gripper's handle. The placement case.
	StrategyAbsoluteBasedOnOther
)

func (s Strategy) String() string {
	switch s {
	case StrategyAbsolute:
		return "absolute"
	case StrategyRelative:
		return "relative"
	case StrategyAbsoluteBasedOnOther:
		return "absolute_based_on_other"
	default:
		return "none"
	}
}

// PreGrasp describes one pregrasp (or preplace) alignment: the gripper frame
// to drive and the handle frame to reach. When the handle's body is already
// held by another grasp, that pair is given as OtherGripper/OtherHandle.
//
// For a preplace task the gripper frame sits on the environment surface and
// the handle frame on the object surface.
type PreGrasp struct {
	Gripper FrameSpec
	Handle  FrameSpec

	OtherGripper *FrameSpec
	OtherHandle  *FrameSpec
}

// Deps are the external collaborators task construction consumes. Planner
// and Kinematics are required; Measurements is needed only when a
// measurement option or the measured estimation policy asks for it;
// Registry, when set, enforces unique task names across the session.
type Deps struct {
	Kinematics   Kinematics
	Measurements Measurements
	Planner      Planner
	Registry     *TaskRegistry
}

// Result is the outcome of MakeTasks. An empty task list with
// Strategy == StrategyNone is the structured no-op case: both grippers
// uncontrollable, reported rather than raised. Callers must check Empty.
type Result struct {
	Tasks    []*Task
	Strategy Strategy

	// Swapped reports that the gripper and handle roles were exchanged to
	// keep the kinematic chain well-formed (placement across robots).
	Swapped bool

	// Diagnostic carries the human-readable reason for a no-op or swap.
	Diagnostic string
}

// Empty reports whether no task was built.
func (r *Result) Empty() bool { return len(r.Tasks) == 0 }

// SelectStrategy is a pure function of the controllability flags, matching
// the decision table of the pregrasp design. No other flags affect it.
func SelectStrategy(gripper FrameSpec, other *FrameSpec) Strategy {
	otherControllable := other != nil && other.Controllable
	switch {
	case gripper.Controllable && !otherControllable:
		return StrategyAbsolute
	case gripper.Controllable:
		return StrategyRelative
	case otherControllable:
		return StrategyAbsoluteBasedOnOther
	default:
		return StrategyNone
	}
}

// resolveRoles returns new gripper/handle bindings for the placement case.
// When the nominal handle and gripper belong to different robots but the
// gripper shares a robot with the other handle, the roles are exchanged so
// the controlled chain stays consistent. Pure: inputs are never mutated.
func resolveRoles(gripper, handle, otherHandle FrameSpec) (FrameSpec, FrameSpec, bool) {
	if handle.Robot != otherHandle.Robot && gripper.Robot == otherHandle.Robot {
		return handle, gripper, true
	}
	return gripper, handle, false
}

// MakeTasks builds the alignment task for this pregrasp. Single-shot: the
// receiver is not reused afterward. Configuration problems (disabled
// gripper, mismatched grasp bodies, unbound frames, duplicate names) fail
// here, before the control loop starts; transient data problems at run time
// are absorbed by the fallback wiring and never surface as errors.
func (pg *PreGrasp) MakeTasks(deps Deps, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	if err := pg.validate(deps); err != nil {
		return nil, err
	}

	strategy := SelectStrategy(pg.Gripper, pg.OtherGripper)
	b := &taskBuilder{
		deps:   deps,
		opts:   opts,
		logger: logger,
		graph:  signal.NewGraph(logger),
	}

	var (
		task    *Task
		swapped bool
		diag    string
		err     error
	)
	switch strategy {
	case StrategyAbsolute:
		task, err = b.makeAbsolute(pg.Gripper, pg.Handle)

	case StrategyRelative:
		if err := sameGraspBody(pg.Handle, *pg.OtherHandle); err != nil {
			return nil, err
		}
		task, err = b.makeRelative(pg.Gripper, pg.Handle, *pg.OtherGripper, *pg.OtherHandle)

	case StrategyAbsoluteBasedOnOther:
		var gripper, handle FrameSpec
		gripper, handle, swapped = resolveRoles(pg.Gripper, pg.Handle, *pg.OtherHandle)
		if swapped {
			diag = fmt.Sprintf("swapped gripper %s and handle %s", pg.Gripper.FullName(), pg.Handle.FullName())
			logger.Infof("%s", diag)
		}
		if err := sameGraspBody(handle, *pg.OtherHandle); err != nil {
			return nil, err
		}
		task, err = b.makeAbsoluteBasedOnOther(gripper, handle, *pg.OtherGripper, *pg.OtherHandle)

	default:
		diag = "both grippers are uncontrollable so nothing can be done"
		logger.Warnf("%s", diag)
		return &Result{Strategy: StrategyNone, Diagnostic: diag}, nil
	}
	if err != nil {
		return nil, err
	}

	if deps.Registry != nil {
		if err := deps.Registry.Add(task); err != nil {
			return nil, err
		}
	}
	return &Result{
		Tasks:      []*Task{task},
		Strategy:   strategy,
		Swapped:    swapped,
		Diagnostic: diag,
	}, nil
}

func (pg *PreGrasp) validate(deps Deps) error {
	if err := pg.Gripper.validate(); err != nil {
		return err
	}
	if err := pg.Handle.validate(); err != nil {
		return err
	}
	if (pg.OtherGripper == nil) != (pg.OtherHandle == nil) {
		return fmt.Errorf("grasp %s: %w", pg.Gripper.FullName(), ErrMissingOtherHandle)
	}
	if !pg.Gripper.Enabled {
		return fmt.Errorf("gripper %s: %w", pg.Gripper.FullName(), ErrGripperDisabled)
	}
	if pg.OtherGripper != nil && !pg.OtherGripper.Enabled {
		return fmt.Errorf("other gripper %s: %w", pg.OtherGripper.FullName(), ErrGripperDisabled)
	}
	if deps.Kinematics == nil {
		return fmt.Errorf("kinematic model required: %w", ErrUnboundFrame)
	}
	if deps.Planner == nil {
		return fmt.Errorf("planner topics required for the desired pose: %w", ErrUnboundFrame)
	}
	return nil
}

// sameGraspBody enforces the relative-strategy precondition: both handles
// sit on the same body of the same robot, differing only by local offset.
func sameGraspBody(handle, otherHandle FrameSpec) error {
	if handle.Robot != otherHandle.Robot || handle.Link != otherHandle.Link {
		return fmt.Errorf("handle %s vs %s: %w", handle.FullName(), otherHandle.FullName(), ErrGraspMismatch)
	}
	return nil
}

// taskBuilder wires one task's dataflow graph. One builder per MakeTasks
// call; the graph it builds is owned by the emitted task.
type taskBuilder struct {
	deps   Deps
	opts   *Options
	logger logging.Logger
	graph  *signal.Graph
}

// makeAbsolute aligns the gripper frame directly onto the handle frame.
func (b *taskBuilder) makeAbsolute(gripper, handle FrameSpec) (*Task, error) {
	name := taskName(gripper.Name, handle.FullName())

	// Joint A is the gripper link; frame A is the gripper frame.
	oMja, err := b.robotLinkNode(name+"_oMja", gripper.Link, b.opts.MeasureGripperPose)
	if err != nil {
		return nil, err
	}
	// Joint B is the handle's body, placed by the planner; frame B is the
	// handle frame. The object is not actuated, so frame B has a zero
	// Jacobian block.
	oMjb, err := b.objectLinkNode(name+"_oMjb", handle.FullLink(), b.opts.MeasureObjectPose)
	if err != nil {
		return nil, err
	}
	jbMfb, err := signal.NewConst(b.graph, name+"_jbMfb", handle.Offset())
	if err != nil {
		return nil, err
	}

	current, err := b.currentRelativeNode(name, gripper, oMja, oMjb, jbMfb)
	if err != nil {
		return nil, err
	}
	desired, err := b.desiredRelativeNode(name, gripper, handle)
	if err != nil {
		return nil, err
	}
	return b.finish(name, current, desired, b.bodyJacobian(gripper.Link), nil)
}

// makeRelative aligns the gripper onto the handle expressed relative to the
// other gripper's grasp of the same body. Both grippers are actuated.
func (b *taskBuilder) makeRelative(gripper, handle, otherGripper, otherHandle FrameSpec) (*Task, error) {
	name := taskName(gripper.Name, handle.FullName(), "relative", otherGripper.Name, otherHandle.FullName())

	// Joint A is the gripper link.
	oMja, err := b.robotLinkNode(name+"_oMja", gripper.Link, b.opts.MeasureGripperPose)
	if err != nil {
		return nil, err
	}
	// Joint B is the other gripper link.
	oMjb, err := b.robotLinkNode(name+"_oMjb", otherGripper.Link, b.opts.MeasureOtherGripperPose)
	if err != nil {
		return nil, err
	}
	// Frame B is the handle frame, reached through the estimated grasp
	// offset jbMfb.
	jbMfb, err := b.graspOffsetNode(name, otherGripper, otherHandle, handle)
	if err != nil {
		return nil, err
	}

	current, err := b.currentRelativeNode(name, gripper, oMja, oMjb, jbMfb)
	if err != nil {
		return nil, err
	}
	desired, err := b.desiredRelativeNode(name, gripper, handle)
	if err != nil {
		return nil, err
	}
	return b.finish(name, current, desired, b.bodyJacobian(gripper.Link), b.bodyJacobian(otherGripper.Link))
}

// makeAbsoluteBasedOnOther handles the placement case: the gripper frame is
// a fixed feature (environment surface), so the other, actuated gripper is
// moved until its handle reaches the gripper's handle.
func (b *taskBuilder) makeAbsoluteBasedOnOther(gripper, handle, otherGripper, otherHandle FrameSpec) (*Task, error) {
	name := taskName(gripper.FullName(), handle.FullName(), "based", otherGripper.Name, otherHandle.FullName())

	// Joint A is the gripper's body, known only through the planner (and
	// optionally the tracker); it is outside the actuated chain.
	oMja, err := b.objectLinkNode(name+"_oMja", gripper.FullLink(), b.opts.MeasureGripperPose)
	if err != nil {
		return nil, err
	}
	// Joint B is the other gripper link, the actuated side.
	oMjb, err := b.robotLinkNode(name+"_oMjb", otherGripper.Link, b.opts.MeasureOtherGripperPose)
	if err != nil {
		return nil, err
	}
	jbMfb, err := b.graspOffsetNode(name, otherGripper, otherHandle, handle)
	if err != nil {
		return nil, err
	}

	current, err := b.currentRelativeNode(name, gripper, oMja, oMjb, jbMfb)
	if err != nil {
		return nil, err
	}
	desired, err := b.desiredRelativeNode(name, gripper, handle)
	if err != nil {
		return nil, err
	}
	return b.finish(name, current, desired, nil, b.bodyJacobian(otherGripper.Link))
}

// currentRelativeNode composes the live relative pose
// faMfb = (oMja · jaMfa)⁻¹ · oMjb · jbMfb.
func (b *taskBuilder) currentRelativeNode(name string, gripper FrameSpec, oMja, oMjb, jbMfb signal.PoseNode) (signal.PoseNode, error) {
	jaMfa, err := signal.NewConst(b.graph, name+"_jaMfa", gripper.Offset())
	if err != nil {
		return nil, err
	}
	oMfa, err := signal.NewProduct(b.graph, name+"_oMfa", oMja, jaMfa)
	if err != nil {
		return nil, err
	}
	oMfaInv, err := signal.NewInverse(b.graph, name+"_oMfa_inv", oMfa)
	if err != nil {
		return nil, err
	}
	return signal.NewProduct(b.graph, name+"_faMfb", oMfaInv, oMjb, jbMfb)
}

// desiredRelativeNode composes the planner-referenced relative pose
// faMfbDes = jaMfa⁻¹ · oMjaDes⁻¹ · oMjbDes · jbMfb, with both body
// placements supplied by the planner. The factor order is fixed; swapping
// any two factors yields a different, incorrect transform.
func (b *taskBuilder) desiredRelativeNode(name string, gripper, handle FrameSpec) (signal.PoseNode, error) {
	jaMfaInv, err := signal.NewConst(b.graph, name+"_jaMfaDes_inv", spatialmath.PoseInverse(gripper.Offset()))
	if err != nil {
		return nil, err
	}
	// The gripper body reference comes from the live kinematic chain when
	// the gripper is actuated; a gripper outside the model (placement case)
	// is referenced through its planner placement instead.
	var oMjaDes signal.PoseNode
	if b.deps.Kinematics.HasBody(gripper.Link) {
		oMjaDes, err = b.kinematicNode(name+"_oMjaDes", gripper.Link)
	} else {
		oMjaDes, err = b.plannerNode(name+"_oMjaDes", gripper.FullLink())
	}
	if err != nil {
		return nil, err
	}
	oMjaDesInv, err := signal.NewInverse(b.graph, name+"_oMjaDes_inv", oMjaDes)
	if err != nil {
		return nil, err
	}
	oMjbDes, err := b.plannerNode(name+"_oMjbDes", handle.FullLink())
	if err != nil {
		return nil, err
	}
	jbMfbDes, err := signal.NewConst(b.graph, name+"_jbMfbDes", handle.Offset())
	if err != nil {
		return nil, err
	}
	return signal.NewProduct(b.graph, name+"_faMfbDes", jaMfaInv, oMjaDesInv, oMjbDes, jbMfbDes)
}

// finish builds the feature, the adaptive gain and the task over the wired
// graph. The task's error feeds the gain and the gain feeds the task's
// control input, re-evaluated every cycle.
func (b *taskBuilder) finish(name string, current, desired signal.PoseNode, jacA, jacB feature.JacobianFn) (*Task, error) {
	feat := feature.New(b.graph, name+"_feature", current, desired, jacA, jacB, b.deps.Kinematics.Dim())
	gain, err := feature.NewAdaptiveGain(b.opts.NearGain, b.opts.FarGain, b.opts.NearError, b.opts.FarError)
	if err != nil {
		return nil, err
	}

	if b.opts.WithDerivative {
		b.logger.Warnf("pose tracking with derivative is not implemented; building %s without it", name)
	}

	return newTask(name+"_task", b.graph, feat, gain, b.logger), nil
}

// robotLinkNode returns the pose node of a robot body link: forward
// kinematics, optionally guarded by a fresh tracker measurement with the
// kinematic value as fallback.
func (b *taskBuilder) robotLinkNode(prefix, link string, withMeasurement bool) (signal.PoseNode, error) {
	kin, err := b.kinematicNode(prefix+"_kin", link)
	if err != nil {
		return nil, err
	}
	if !withMeasurement {
		return kin, nil
	}
	if b.deps.Measurements == nil {
		b.logger.Warnf("no tracker available, using kinematics only for %s", link)
		return kin, nil
	}
	return b.measuredNode(prefix, link+measSuffix, kin)
}

// objectLinkNode returns the pose node of a body outside the kinematic
// model: the planner placement, optionally guarded by a fresh tracker
// measurement with the planner value as fallback.
func (b *taskBuilder) objectLinkNode(prefix, fullLink string, withMeasurement bool) (signal.PoseNode, error) {
	planned, err := b.plannerNode(prefix+"_planned", fullLink)
	if err != nil {
		return nil, err
	}
	if !withMeasurement {
		return planned, nil
	}
	if b.deps.Measurements == nil {
		b.logger.Warnf("no tracker available, using planner placement only for %s", fullLink)
		return planned, nil
	}
	return b.measuredNode(prefix, fullLink+measSuffix, planned)
}

func (b *taskBuilder) kinematicNode(name, link string) (signal.PoseNode, error) {
	if !b.deps.Kinematics.HasBody(link) {
		return nil, fmt.Errorf("link %q: %w", link, ErrUnboundFrame)
	}
	last := spatialmath.NewZeroPose()
	return signal.NewFunc(b.graph, name, func() spatialmath.Pose {
		pose, err := b.deps.Kinematics.BodyPose(link)
		if err != nil {
			b.logger.Debugf("kinematic pose of %s unavailable, holding last value: %v", link, err)
			return last
		}
		last = pose
		return pose
	})
}

func (b *taskBuilder) plannerNode(name, fullLink string) (signal.PoseNode, error) {
	placement, err := b.deps.Planner.Placement(fullLink)
	if err != nil {
		return nil, errors.Wrapf(ErrUnboundFrame, "planner placement of %q: %v", fullLink, err)
	}
	return signal.NewFunc(b.graph, name, placement.Pose)
}

// measuredNode wraps a default node with a tracker observation in the world
// frame: when the measurement is fresh the composite uses it, otherwise the
// default. The selection is atomic per cycle.
func (b *taskBuilder) measuredNode(prefix, measFrame string, def signal.PoseNode) (signal.PoseNode, error) {
	obs, err := b.deps.Measurements.Observe(worldFrame, measFrame)
	if err != nil {
		return nil, err
	}
	fresh, err := signal.NewBoolFunc(b.graph, prefix+"_fresh", obs.Fresh)
	if err != nil {
		return nil, err
	}
	meas, err := signal.NewFunc(b.graph, prefix+"_meas", obs.Pose)
	if err != nil {
		return nil, err
	}
	return signal.NewSelect(b.graph, prefix+"_safe", fresh, meas, def)
}

func (b *taskBuilder) bodyJacobian(link string) feature.JacobianFn {
	return func() (*mat.Dense, error) {
		return b.deps.Kinematics.BodyJacobian(link)
	}
}

func taskName(parts ...string) string {
	return namePrefix + "_" + strings.Join(parts, "_")
}
