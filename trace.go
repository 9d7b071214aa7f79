package agimussot

import (
	"sync"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"
)

// TraceRecorder is a Tracer that logs its registered pose series on demand.
// Intended for visual-servoing debugging: register a task's desired and
// actual series, then call Sample once per cycle (or less often).
type TraceRecorder struct {
	logger logging.Logger

	mu     sync.Mutex
	series []traceSeries
}

type traceSeries struct {
	name   string
	sample func() spatialmath.Pose
}

func NewTraceRecorder(logger logging.Logger) *TraceRecorder {
	return &TraceRecorder{logger: logger}
}

func (tr *TraceRecorder) Add(series string, sample func() spatialmath.Pose) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.series = append(tr.series, traceSeries{name: series, sample: sample})
}

// Sample logs the current value of every registered series.
func (tr *TraceRecorder) Sample() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, s := range tr.series {
		pose := s.sample()
		pt := pose.Point()
		ov := pose.Orientation().OrientationVectorDegrees()
		tr.logger.Debugf("%s: t=(%.3f, %.3f, %.3f) o=(%.3f, %.3f, %.3f, %.1f°)",
			s.name, pt.X, pt.Y, pt.Z, ov.OX, ov.OY, ov.OZ, ov.Theta)
	}
}

// Len returns the number of registered series.
func (tr *TraceRecorder) Len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.series)
}
