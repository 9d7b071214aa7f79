// Package agimussot synthesizes closed-loop pose-alignment tasks for a
// robotic manipulator: given a gripper frame and a target handle frame, it
// wires the transform algebra and adaptive-gain feedback law that drives the
// gripper onto the handle during the pregrasp (or preplace) phase.
//
// The package builds a pull-based dataflow of pose signals (see the signal
// subpackage), re-evaluated once per control cycle by an external scheduler.
// Pose inputs come from three kinds of sources: the robot's kinematic model,
// an external tracking stream with a kinematic fallback, and planner-provided
// joint placements for the desired side. The composition strategy is chosen
// from the controllability of the two gripper/handle pairs involved; the
// resulting task exposes a 6-dimensional operational-space pose error, its
// Jacobian, and a gain that varies smoothly with the error magnitude.
package agimussot
