package agimussot

import (
	"fmt"

	"go.viam.com/rdk/logging"

	"github.com/longhathuc/agimus-sot/feature"
)

// Options configures task construction for one pregrasp.
type Options struct {
	// Measurement flags: when set, the corresponding link pose is taken from
	// the external tracker whenever the measurement is fresh, falling back
	// to the kinematic (or planner) value otherwise.
	MeasureObjectPose       bool `json:"measure_object_pose,omitempty"`
	MeasureGripperPose      bool `json:"measure_gripper_pose,omitempty"`
	MeasureOtherGripperPose bool `json:"measure_other_gripper_pose,omitempty"`

	// WithDerivative requests velocity tracking. Not implemented: the task
	// is built without the derivative term and a warning is logged.
	WithDerivative bool `json:"with_derivative,omitempty"`

	// Estimation selects how the other-gripper-to-handle offset is
	// estimated for the relative strategies. Defaults to EstimationStatic.
	Estimation EstimationPolicy `json:"grasp_estimation,omitempty"`

	// Adaptive gain parameters. Zero values take the package defaults.
	NearGain  float64 `json:"near_gain,omitempty"`
	FarGain   float64 `json:"far_gain,omitempty"`
	NearError float64 `json:"near_error,omitempty"`
	FarError  float64 `json:"far_error,omitempty"`

	// Not serialized
	Logger logging.Logger `json:"-"`
}

// Validate fills defaults and checks ranges.
func (o *Options) Validate() error {
	if o.NearGain == 0 {
		o.NearGain = feature.DefaultNearGain
	}
	if o.FarGain == 0 {
		o.FarGain = feature.DefaultFarGain
	}
	if o.NearError == 0 {
		o.NearError = feature.DefaultNearError
	}
	if o.FarError == 0 {
		o.FarError = feature.DefaultFarError
	}
	if o.NearError < 0 || o.FarError <= o.NearError {
		return fmt.Errorf("gain thresholds must satisfy 0 <= near_error (%f) < far_error (%f)", o.NearError, o.FarError)
	}
	if o.Estimation == "" {
		o.Estimation = EstimationStatic
	}
	switch o.Estimation {
	case EstimationStatic, EstimationWorldFrame, EstimationMeasured:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEstimation, o.Estimation)
	}
	if o.Logger == nil {
		o.Logger = logging.NewLogger("pregrasp")
	}
	return nil
}
