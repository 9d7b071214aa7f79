// Demo of pregrasp task synthesis: builds an absolute alignment task for a
// one-axis arm, feeds it a planner placement and a (disagreeing) tracker
// measurement, and steps the control loop while the measurement freshness
// flips.
package main

import (
	"github.com/golang/geo/r3"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/referenceframe"
	"go.viam.com/rdk/spatialmath"

	agimussot "github.com/longhathuc/agimus-sot"
)

func main() {
	if err := realMain(); err != nil {
		panic(err)
	}
}

func realMain() error {
	logger := logging.NewLogger("pregrasp-demo")

	// A single prismatic joint standing in for the arm: the wrist slides
	// along X.
	slider, err := referenceframe.NewTranslationalFrame(
		"slider", r3.Vector{X: 1}, referenceframe.Limit{Min: -1000, Max: 1000},
	)
	if err != nil {
		return err
	}

	jointValue := 0.0
	kin := agimussot.NewModelKinematics(logger)
	if err := kin.AddBody("wrist", slider, func() []referenceframe.Input {
		return []referenceframe.Input{jointValue}
	}); err != nil {
		return err
	}

	// The planner believes the box sits at x=500; the tracker sees it a bit
	// further out.
	planner := agimussot.NewInMemoryPlanner()
	planner.SetPlacement("box/base_link", spatialmath.NewPoseFromPoint(r3.Vector{X: 500}))

	tracker := agimussot.NewInMemoryTracker()
	observed := spatialmath.NewPoseFromPoint(r3.Vector{X: 650, Y: 30})

	pg := agimussot.PreGrasp{
		Gripper: agimussot.FrameSpec{
			Name: "gripper", Link: "wrist",
			LocalOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 40}),
			Robot:       "arm", Enabled: true, Controllable: true,
		},
		Handle: agimussot.FrameSpec{
			Name: "handle", Link: "base_link",
			LocalOffset: spatialmath.NewPoseFromPoint(r3.Vector{X: 10}),
			Robot:       "box", Enabled: true,
		},
	}

	opts := &agimussot.Options{
		MeasureObjectPose: true,
		Logger:            logger,
	}
	deps := agimussot.Deps{
		Kinematics:   kin,
		Measurements: tracker,
		Planner:      planner,
		Registry:     agimussot.NewTaskRegistry(),
	}

	res, err := pg.MakeTasks(deps, opts)
	if err != nil {
		return err
	}
	logger.Infof("built %d task(s) with strategy %s", len(res.Tasks), res.Strategy)
	if res.Empty() {
		return nil
	}
	task := res.Tasks[0]

	tracer := agimussot.NewTraceRecorder(logger)
	task.Trace(tracer)

	// Run the control loop with the measurement dropping out every few
	// cycles: the composite falls back to the planner value, never a blend.
	for cycle := 0; cycle < 20; cycle++ {
		fresh := cycle%5 != 4
		tracker.Publish("world", "box/base_link_measured", observed, fresh)

		state, err := task.Update()
		if err != nil {
			return err
		}
		logger.Infof("cycle %2d fresh=%-5v |e|=%8.3f gain=%.3f", cycle, fresh, state.ErrorNorm, state.Gain)
		tracer.Sample()

		// Crude joint update along the slider axis.
		jointValue -= state.Gain * state.Error[0]
	}
	return nil
}
