package signal

import (
	"errors"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"
)

func testPose(x, y, z, roll, pitch, yaw float64) spatialmath.Pose {
	return spatialmath.NewPose(
		r3.Vector{X: x, Y: y, Z: z},
		&spatialmath.EulerAngles{Roll: roll, Pitch: pitch, Yaw: yaw},
	)
}

// posesClose compares two poses within a numeric tolerance on translation
// norm and rotation angle.
func posesClose(a, b spatialmath.Pose, tol float64) bool {
	delta := spatialmath.PoseBetween(a, b)
	if delta.Point().Norm() > tol {
		return false
	}
	theta := delta.Orientation().AxisAngles().Theta
	if theta < 0 {
		theta = -theta
	}
	return theta <= tol
}

func TestGraphDuplicateName(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))

	if _, err := NewConst(g, "offset", testPose(1, 0, 0, 0, 0, 0)); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	_, err := NewConst(g, "offset", testPose(2, 0, 0, 0, 0, 0))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	// Boolean nodes share the same namespace.
	_, err = NewBoolFunc(g, "offset", func() bool { return true })
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName for bool node, got %v", err)
	}
}

func TestGraphEmptyName(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))
	if _, err := NewConst(g, "", nil); err == nil {
		t.Fatal("expected error for empty node name")
	}
}

func TestProductOrderExact(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))

	pa := testPose(100, 0, 0, 0.3, 0, 0)
	pb := testPose(0, 50, 0, 0, 0.7, 0)
	pc := testPose(0, 0, 25, 0, 0, 1.1)

	a, err := NewConst(g, "a", pa)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewConst(g, "b", pb)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewConst(g, "c", pc)
	if err != nil {
		t.Fatal(err)
	}

	abc, err := NewProduct(g, "abc", a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	acb, err := NewProduct(g, "acb", a, c, b)
	if err != nil {
		t.Fatal(err)
	}

	tick := g.Step()
	want := spatialmath.Compose(spatialmath.Compose(pa, pb), pc)
	if !posesClose(abc.Pose(tick), want, 1e-9) {
		t.Fatal("product does not match left-to-right composition")
	}
	if posesClose(abc.Pose(tick), acb.Pose(tick), 1e-9) {
		t.Fatal("swapping factors should change the result for generic poses")
	}
}

func TestProductNeedsFactors(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))
	if _, err := NewProduct(g, "empty"); !errors.Is(err, ErrNoFactors) {
		t.Fatalf("expected ErrNoFactors, got %v", err)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))

	poses := []spatialmath.Pose{
		testPose(10, -20, 30, 0.1, 0.2, 0.3),
		testPose(-5, 0, 400, 1.5, -0.4, 2.8),
		testPose(0, 0, 0, 0, 0, 0),
	}
	for i, p := range poses {
		name := string(rune('a' + i))
		src, err := NewConst(g, name, p)
		if err != nil {
			t.Fatal(err)
		}
		inv, err := NewInverse(g, name+"_inv", src)
		if err != nil {
			t.Fatal(err)
		}
		prod, err := NewProduct(g, name+"_ident", src, inv)
		if err != nil {
			t.Fatal(err)
		}

		tick := g.Step()
		if !posesClose(prod.Pose(tick), spatialmath.NewZeroPose(), 1e-9) {
			t.Fatalf("pose %d: P·P⁻¹ is not identity", i)
		}
	}
}

func TestFuncMemoizedPerTick(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))

	calls := 0
	fn, err := NewFunc(g, "source", func() spatialmath.Pose {
		calls++
		return testPose(float64(calls), 0, 0, 0, 0, 0)
	})
	if err != nil {
		t.Fatal(err)
	}

	tick := g.Step()
	first := fn.Pose(tick)
	second := fn.Pose(tick)
	if calls != 1 {
		t.Fatalf("expected one evaluation per tick, got %d", calls)
	}
	if !posesClose(first, second, 0) {
		t.Fatal("repeated reads within a tick must return the same value")
	}

	g.Step()
	if calls != 2 {
		t.Fatalf("expected re-evaluation on new tick, got %d calls", calls)
	}
}

func TestSelectAtomicPerCycle(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))

	measured := testPose(111, 0, 0, 0, 0, 0)
	fallback := testPose(-222, 0, 0, 0, 0, 0)

	fresh := false
	condCalls := 0
	cond, err := NewBoolFunc(g, "fresh", func() bool {
		condCalls++
		return fresh
	})
	if err != nil {
		t.Fatal(err)
	}
	meas, err := NewFunc(g, "meas", func() spatialmath.Pose { return measured })
	if err != nil {
		t.Fatal(err)
	}
	def, err := NewConst(g, "default", fallback)
	if err != nil {
		t.Fatal(err)
	}
	sel, err := NewSelect(g, "safe", cond, meas, def)
	if err != nil {
		t.Fatal(err)
	}

	// Flip validity between cycles: the output is fully one branch or fully
	// the other, never a blend, and the condition is read once per cycle.
	for cycle := 0; cycle < 6; cycle++ {
		fresh = cycle%2 == 0
		tick := g.Step()

		got := sel.Pose(tick)
		want := fallback
		if fresh {
			want = measured
		}
		if !posesClose(got, want, 0) {
			t.Fatalf("cycle %d: selector output does not match the chosen branch", cycle)
		}

		// Even if the flag flips mid-cycle, the memoized value holds.
		fresh = !fresh
		if !posesClose(sel.Pose(tick), want, 0) {
			t.Fatalf("cycle %d: selector re-read changed within one cycle", cycle)
		}
	}
	if condCalls != 6 {
		t.Fatalf("condition should be read once per cycle, got %d reads over 6 cycles", condCalls)
	}
}

func TestStepEvaluatesInOrder(t *testing.T) {
	g := NewGraph(logging.NewTestLogger(t))

	var order []string
	mk := func(name string) PoseNode {
		n, err := NewFunc(g, name, func() spatialmath.Pose {
			order = append(order, name)
			return spatialmath.NewZeroPose()
		})
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	a := mk("a")
	b := mk("b")
	if _, err := NewProduct(g, "ab", a, b); err != nil {
		t.Fatal(err)
	}

	g.Step()
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected dependency-ordered single evaluation, got %v", order)
	}
}
