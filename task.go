package agimussot

import (
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"

	"github.com/longhathuc/agimus-sot/feature"
	"github.com/longhathuc/agimus-sot/signal"
)

// Task is one emitted pose-alignment control task: a pose feature whose
// error drives an adaptive gain, over a dataflow graph re-evaluated once per
// control cycle. Construction is single-shot; after that the task is
// read-only and only Update advances it.
type Task struct {
	name    string
	graph   *signal.Graph
	feature *feature.PoseFeature
	gain    *feature.AdaptiveGain
	logger  logging.Logger
}

// TaskState is one cycle's evaluation of a task: the operational-space
// error, its Jacobian, and the gain the error magnitude maps to.
type TaskState struct {
	Error     []float64
	ErrorNorm float64
	Gain      float64
	Jacobian  *mat.Dense
}

func newTask(name string, graph *signal.Graph, feat *feature.PoseFeature, gain *feature.AdaptiveGain, logger logging.Logger) *Task {
	return &Task{
		name:    name,
		graph:   graph,
		feature: feat,
		gain:    gain,
		logger:  logger,
	}
}

func (t *Task) Name() string { return t.name }

// Feature returns the task's pose feature.
func (t *Task) Feature() *feature.PoseFeature { return t.feature }

// Update runs one control cycle: the dataflow graph is stepped once, in
// dependency order, and the resulting error, Jacobian and gain are returned.
func (t *Task) Update() (TaskState, error) {
	t.graph.Step()

	errVec := t.feature.Error()
	norm := t.feature.ErrorNorm()
	jac, err := t.feature.Jacobian()
	if err != nil {
		return TaskState{}, err
	}
	return TaskState{
		Error:     errVec,
		ErrorNorm: norm,
		Gain:      t.gain.Gain(norm),
		Jacobian:  jac,
	}, nil
}

// Trace exposes the desired and actual relative poses as named series for
// external logging.
func (t *Task) Trace(tracer Tracer) {
	tracer.Add(t.name+".desired", func() spatialmath.Pose { return t.feature.Desired() })
	tracer.Add(t.name+".actual", func() spatialmath.Pose { return t.feature.Current() })
}
