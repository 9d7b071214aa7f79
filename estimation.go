package agimussot

import (
	"go.viam.com/rdk/spatialmath"

	"github.com/longhathuc/agimus-sot/signal"
)

// EstimationPolicy selects how the relative strategies estimate jbMfb, the
// pose of the handle frame relative to the other gripper's body. The
// handle's live pose is not directly observable from kinematics alone, so
// three interchangeable estimators exist; which one is correct is an open
// question inherited from the controller this package grew out of, and the
// choice is left to configuration.
type EstimationPolicy string

const (
	// EstimationStatic assumes the other gripper holds the object exactly at
	// the nominal planned grasp, so the offset is constant for the task's
	// lifetime. The default, and the only policy validated in practice.
	EstimationStatic EstimationPolicy = "static"

	// EstimationWorldFrame estimates the offset as
	// (world→otherGripper)⁻¹ · (world→handle) from live world poses. Known
	// incorrect: it assumes the other-gripper-to-other-handle transform is
	// identity at measurement time. Kept selectable for experimentation.
	EstimationWorldFrame EstimationPolicy = "world_frame"

	// EstimationMeasured uses an external tracker observing the other handle
	// directly relative to the other gripper's body, falling back to the
	// static assumption when the measurement is not fresh.
	EstimationMeasured EstimationPolicy = "measured"
)

// staticGraspOffset is the nominal other-gripper-to-handle transform:
// ogMfb = ogMog' · (ohMoh')⁻¹ · oMh, built purely from the constant local
// offsets of the three frames.
func staticGraspOffset(otherGripper, otherHandle, handle FrameSpec) spatialmath.Pose {
	return spatialmath.Compose(
		spatialmath.Compose(otherGripper.Offset(), spatialmath.PoseInverse(otherHandle.Offset())),
		handle.Offset(),
	)
}

// graspOffsetNode builds the jbMfb node for the configured estimation
// policy.
func (b *taskBuilder) graspOffsetNode(prefix string, otherGripper, otherHandle, handle FrameSpec) (signal.PoseNode, error) {
	nominal := staticGraspOffset(otherGripper, otherHandle, handle)

	switch b.opts.Estimation {
	case EstimationWorldFrame:
		return b.worldFrameGraspNode(prefix, otherGripper, handle)
	case EstimationMeasured:
		return b.measuredGraspNode(prefix, otherGripper, otherHandle, handle, nominal)
	default:
		return signal.NewConst(b.graph, prefix+"_jbMfb", nominal)
	}
}

func (b *taskBuilder) worldFrameGraspNode(prefix string, otherGripper, handle FrameSpec) (signal.PoseNode, error) {
	b.logger.Warnf("world-frame grasp estimation assumes an identity grasp at measurement time and is known to drift; prefer %q", EstimationStatic)

	wMog, err := b.robotLinkNode(prefix+"_wMog", otherGripper.Link, b.opts.MeasureOtherGripperPose)
	if err != nil {
		return nil, err
	}
	wMogInv, err := signal.NewInverse(b.graph, prefix+"_wMog_inv", wMog)
	if err != nil {
		return nil, err
	}
	wMo, err := b.objectLinkNode(prefix+"_wMo", handle.FullLink(), b.opts.MeasureObjectPose)
	if err != nil {
		return nil, err
	}
	oMh, err := signal.NewConst(b.graph, prefix+"_oMh", handle.Offset())
	if err != nil {
		return nil, err
	}
	return signal.NewProduct(b.graph, prefix+"_jbMfb", wMogInv, wMo, oMh)
}

func (b *taskBuilder) measuredGraspNode(prefix string, otherGripper, otherHandle, handle FrameSpec, nominal spatialmath.Pose) (signal.PoseNode, error) {
	fallback, err := signal.NewConst(b.graph, prefix+"_jbMfb_nominal", nominal)
	if err != nil {
		return nil, err
	}
	if b.deps.Measurements == nil {
		b.logger.Warnf("no tracker available for measured grasp estimation of %s; using the static assumption", otherHandle.FullName())
		return fallback, nil
	}

	obs, err := b.deps.Measurements.Observe(
		otherGripper.Link+measSuffix,
		otherHandle.FullLink()+measSuffix,
	)
	if err != nil {
		return nil, err
	}
	fresh, err := signal.NewBoolFunc(b.graph, prefix+"_jbMfb_fresh", obs.Fresh)
	if err != nil {
		return nil, err
	}
	ogMoh, err := signal.NewFunc(b.graph, prefix+"_ogMoh_meas", obs.Pose)
	if err != nil {
		return nil, err
	}
	// ogMfb = ogMoh (measured) · ohMo · oMh
	ohMo, err := signal.NewConst(b.graph, prefix+"_ohMo", spatialmath.PoseInverse(otherHandle.Offset()))
	if err != nil {
		return nil, err
	}
	oMh, err := signal.NewConst(b.graph, prefix+"_oMh", handle.Offset())
	if err != nil {
		return nil, err
	}
	measured, err := signal.NewProduct(b.graph, prefix+"_jbMfb_meas", ogMoh, ohMo, oMh)
	if err != nil {
		return nil, err
	}
	return signal.NewSelect(b.graph, prefix+"_jbMfb", fresh, measured, fallback)
}
