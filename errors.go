package agimussot

import "errors"

var (
	// ErrGripperDisabled is returned when the primary gripper does not
	// participate in the task; nothing can be aligned without it.
	ErrGripperDisabled = errors.New("gripper is not enabled for this task")

	// ErrGraspMismatch is returned when the handle and the other handle are
	// not attached to the same body of the same robot, which the relative
	// strategies require.
	ErrGraspMismatch = errors.New("handle and other handle are attached to different bodies")

	// ErrUnboundFrame is returned at build time when a frame has neither a
	// kinematic chain nor a measurement or planner topic bound to it.
	ErrUnboundFrame = errors.New("frame has no bound pose source")

	// ErrDuplicateTask is returned when a task is registered under a name
	// that already exists.
	ErrDuplicateTask = errors.New("task name already registered")

	// ErrMissingOtherHandle is returned when a pregrasp names another
	// gripper without the handle it holds.
	ErrMissingOtherHandle = errors.New("other gripper given without its handle")

	// ErrUnknownEstimation is returned for an unrecognized grasp estimation
	// policy name.
	ErrUnknownEstimation = errors.New("unknown grasp estimation policy")
)
