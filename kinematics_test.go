package agimussot

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/referenceframe"
)

func sliderFrame(t *testing.T, name string, axis r3.Vector) referenceframe.Frame {
	t.Helper()
	frame, err := referenceframe.NewTranslationalFrame(name, axis, referenceframe.Limit{Min: -1000, Max: 1000})
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

func TestModelKinematicsBodyPose(t *testing.T) {
	mk := NewModelKinematics(logging.NewTestLogger(t))

	value := 0.0
	frame := sliderFrame(t, "slider", r3.Vector{X: 1})
	if err := mk.AddBody("wrist", frame, func() []referenceframe.Input {
		return []referenceframe.Input{value}
	}); err != nil {
		t.Fatal(err)
	}

	if mk.Dim() != 1 {
		t.Fatalf("dim = %d, want 1", mk.Dim())
	}
	if !mk.HasBody("wrist") {
		t.Fatal("registered body not found")
	}

	value = 42.5
	pose, err := mk.BodyPose("wrist")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pose.Point().X-42.5) > 1e-9 {
		t.Fatalf("pose.X = %f, want 42.5", pose.Point().X)
	}
}

func TestModelKinematicsJacobian(t *testing.T) {
	mk := NewModelKinematics(logging.NewTestLogger(t))

	if err := mk.AddBody("x_slider", sliderFrame(t, "sx", r3.Vector{X: 1}), func() []referenceframe.Input {
		return []referenceframe.Input{10}
	}); err != nil {
		t.Fatal(err)
	}
	if err := mk.AddBody("y_slider", sliderFrame(t, "sy", r3.Vector{Y: 1}), func() []referenceframe.Input {
		return []referenceframe.Input{-3}
	}); err != nil {
		t.Fatal(err)
	}

	if mk.Dim() != 2 {
		t.Fatalf("dim = %d, want 2", mk.Dim())
	}

	jac, err := mk.BodyJacobian("y_slider")
	if err != nil {
		t.Fatal(err)
	}
	r, c := jac.Dims()
	if r != 6 || c != 2 {
		t.Fatalf("jacobian dims = %dx%d, want 6x2", r, c)
	}

	// The y slider occupies column 1: unit translation along Y, no
	// rotation, and a zero column for the other chain.
	if math.Abs(jac.At(1, 1)-1) > 1e-3 {
		t.Fatalf("jac[1,1] = %f, want ~1", jac.At(1, 1))
	}
	for i := 0; i < 6; i++ {
		if jac.At(i, 0) != 0 {
			t.Fatalf("other chain must contribute a zero column, jac[%d,0] = %f", i, jac.At(i, 0))
		}
		if i != 1 && math.Abs(jac.At(i, 1)) > 1e-3 {
			t.Fatalf("jac[%d,1] = %f, want ~0", i, jac.At(i, 1))
		}
	}
}

func TestModelKinematicsUnknownBody(t *testing.T) {
	mk := NewModelKinematics(logging.NewTestLogger(t))

	if _, err := mk.BodyPose("nope"); !errors.Is(err, ErrUnboundFrame) {
		t.Fatalf("expected ErrUnboundFrame, got %v", err)
	}
	if _, err := mk.BodyJacobian("nope"); !errors.Is(err, ErrUnboundFrame) {
		t.Fatalf("expected ErrUnboundFrame, got %v", err)
	}
}

func TestModelKinematicsDuplicateBody(t *testing.T) {
	mk := NewModelKinematics(logging.NewTestLogger(t))
	frame := sliderFrame(t, "s", r3.Vector{X: 1})
	inputs := func() []referenceframe.Input { return []referenceframe.Input{0} }

	if err := mk.AddBody("wrist", frame, inputs); err != nil {
		t.Fatal(err)
	}
	if err := mk.AddBody("wrist", frame, inputs); err == nil {
		t.Fatal("expected error on duplicate body registration")
	}
}
