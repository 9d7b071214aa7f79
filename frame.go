package agimussot

import (
	"fmt"

	"go.viam.com/rdk/spatialmath"
)

// FrameSpec names a rigid reference frame for a grasp: the body link it is
// attached to, its constant local offset from that link, and the robot that
// owns the link. A FrameSpec is created once at task-construction time and
// never mutated afterward.
type FrameSpec struct {
	// Name identifies the frame in task names and diagnostics.
	Name string `json:"name"`

	// Link is the body the frame is rigidly attached to.
	Link string `json:"link"`

	// LocalOffset is the constant transform from the link to the frame.
	LocalOffset spatialmath.Pose `json:"-"`

	// Robot owns the link. Links of different robots may share short names.
	Robot string `json:"robot,omitempty"`

	// Enabled marks the frame as participating in this task.
	Enabled bool `json:"enabled"`

	// Controllable is true when the link belongs to the controlled robot's
	// actuated kinematic chain.
	Controllable bool `json:"controllable"`
}

// FullLink returns the link path scoped by the owning robot, used as the key
// into measurement and planner lookup tables.
func (f FrameSpec) FullLink() string {
	if f.Robot == "" {
		return f.Link
	}
	return f.Robot + "/" + f.Link
}

// FullName returns the robot-scoped frame name.
func (f FrameSpec) FullName() string {
	if f.Robot == "" {
		return f.Name
	}
	return f.Robot + "/" + f.Name
}

// Offset returns the local offset, substituting identity when unset.
func (f FrameSpec) Offset() spatialmath.Pose {
	if f.LocalOffset == nil {
		return spatialmath.NewZeroPose()
	}
	return f.LocalOffset
}

func (f FrameSpec) validate() error {
	if f.Name == "" {
		return fmt.Errorf("frame must have a name")
	}
	if f.Link == "" {
		return fmt.Errorf("frame %q must name the link it is attached to", f.Name)
	}
	return nil
}
