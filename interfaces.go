package agimussot

import (
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"
)

// Kinematics is the live kinematic model of the controlled robot: pose and
// Jacobian of a named body, computed from the current configuration. Always
// available, always fresh. Implementations must not block.
type Kinematics interface {
	// BodyPose returns the world pose of a named body link.
	BodyPose(link string) (spatialmath.Pose, error)

	// BodyJacobian returns the 6xDim velocity Jacobian of a named body link.
	BodyJacobian(link string) (*mat.Dense, error)

	// Dim returns the configuration dimension of the controlled robot.
	Dim() int

	// HasBody reports whether the link is part of the kinematic model.
	HasBody(link string) bool
}

// Observation is a live external-tracker estimate of the relative pose
// between two frames. Pose and Fresh are sampled once per control cycle
// through the signal graph, so a cycle never mixes a stale measurement with
// a fresh one.
type Observation interface {
	// Pose returns the latest tracked relative pose.
	Pose() spatialmath.Pose

	// Fresh reports whether the latest measurement is recent and valid.
	Fresh() bool
}

// Measurements registers interest in tracked relative poses between named
// frames. Registration happens at build time; a frame that cannot be
// observed is a build-time error, not a per-cycle one.
type Measurements interface {
	Observe(frame0, frame1 string) (Observation, error)
}

// Placement is a planner-predicted placement of a body. Updates arrive
// asynchronously and may lag the control cycle; Pose holds the last value.
type Placement interface {
	Pose() spatialmath.Pose
}

// Planner registers interest in a named body's planned placement.
type Planner interface {
	Placement(fullLink string) (Placement, error)
}

// Tracer receives named pose series for external logging. Samples are pulled
// by the tracer at its own rate; the sample functions never block.
type Tracer interface {
	Add(series string, sample func() spatialmath.Pose)
}
