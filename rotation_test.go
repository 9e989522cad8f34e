package gizmo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func TestWrapAngleDelta(t *testing.T) {
	cases := []struct {
		delta, want float64
	}{
		{1.0, 1.0},
		{-1.0, -1.0},
		// Crossing the branch cut: from 3.0 to -3.0 is a small step
		// forward, not a near-full turn backwards.
		{-3.0 - 3.0, 2*math.Pi - 6.0},
		{3.0 - -3.0, 6.0 - 2*math.Pi},
		{math.Pi, math.Pi},
	}
	for _, c := range cases {
		got := wrapAngleDelta(c.delta)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("wrapAngleDelta(%v) = %v, want %v", c.delta, got, c.want)
		}
	}
}

func TestArcAngleFullCircleHeadOn(t *testing.T) {
	config := testPreparedConfig()

	// The camera looks straight down the Z axis, so the Z arc is seen
	// head-on and becomes a full circle.
	if got := arcAngle(&config, DirectionZ); got != math.Pi {
		t.Errorf("head-on arc angle = %v, want pi", got)
	}

	// The X and Y arcs are seen edge-on and stay semicircles.
	if got := arcAngle(&config, DirectionX); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("edge-on arc angle = %v, want pi/2", got)
	}
}

func TestCursorRotationAngle(t *testing.T) {
	config := testPreparedConfig()

	// The gizmo center projects to the viewport center (400, 300).
	angle, ok := cursorRotationAngle(&config, DirectionZ, mgl32.Vec2{500, 300})
	if !ok {
		t.Fatal("angle computation failed")
	}
	if math.Abs(angle) > 1e-6 {
		t.Errorf("cursor right of center: angle = %v, want 0", angle)
	}

	angle, ok = cursorRotationAngle(&config, DirectionZ, mgl32.Vec2{400, 400})
	if !ok {
		t.Fatal("angle computation failed")
	}
	if math.Abs(angle-math.Pi/2) > 1e-6 {
		t.Errorf("cursor below center: angle = %v, want pi/2", angle)
	}
}

func TestCursorRotationAngleAtCenter(t *testing.T) {
	config := testPreparedConfig()
	if _, ok := cursorRotationAngle(&config, DirectionZ, mgl32.Vec2{400, 300}); ok {
		t.Error("degenerate cursor at the gizmo center should not produce an angle")
	}
}

// cursorAt returns a cursor position at the given angle around the
// projected gizmo center.
func cursorAt(angle float64) mgl32.Vec2 {
	const r = 150
	return mgl32.Vec2{
		400 + float32(math.Cos(angle)*r),
		300 + float32(math.Sin(angle)*r),
	}
}

func TestRotationUpdateAccumulatesWrappedDeltas(t *testing.T) {
	config := testPreparedConfig()
	s := newRotationSubGizmo(config, DirectionZ)

	s.state = rotationState{
		startRotationAngle: 3.0,
		lastRotationAngle:  3.0,
	}

	result, ok := s.update(ray{screenPos: cursorAt(-3.0)})
	if !ok {
		t.Fatal("update failed")
	}

	wantDelta := 2*math.Pi - 6.0
	if math.Abs(result.RotationTotal-wantDelta) > 1e-6 {
		t.Errorf("total = %v, want %v", result.RotationTotal, wantDelta)
	}
	if math.Abs(result.RotationDelta+wantDelta) > 1e-6 {
		t.Errorf("delta = %v, want %v (the result delta is inverted)", result.RotationDelta, -wantDelta)
	}
	if result.Kind != ResultRotation {
		t.Errorf("kind = %v, want rotation", result.Kind)
	}
	if result.IsViewAxis {
		t.Error("Z axis rotation should not be flagged as view axis")
	}
}

func TestRotationSnappingAppliesToCumulativeAngle(t *testing.T) {
	config := testPreparedConfig()
	config.Snapping = true
	config.SnapAngle = math.Pi / 4

	s := newRotationSubGizmo(config, DirectionZ)
	s.state = rotationState{}

	result, ok := s.update(ray{screenPos: cursorAt(math.Pi/4 + 0.05)})
	if !ok {
		t.Fatal("update failed")
	}
	if math.Abs(result.RotationTotal-math.Pi/4) > 1e-6 {
		t.Errorf("snapped total = %v, want pi/4", result.RotationTotal)
	}
}

func TestRotationPickOnArc(t *testing.T) {
	config := testPreparedConfig()
	s := newRotationSubGizmo(config, DirectionZ)

	// A point on the Z rotation circle, which lies in the XY plane.
	radius := arcRadius(&config, DirectionZ)
	r := testRayThrough(mgl64.Vec3{radius, 0, 0}, &config)

	_, picked := s.pick(r)
	if !picked {
		t.Error("ray through the arc rim should pick the rotation handle")
	}

	// A ray through the gizmo center misses the rim.
	_, picked = s.pick(testRayThrough(mgl64.Vec3{}, &config))
	if picked {
		t.Error("ray through the center should not pick the rotation handle")
	}
}

func TestRotationDrawNonEmpty(t *testing.T) {
	config := testPreparedConfig()
	s := newRotationSubGizmo(config, DirectionZ)

	dd := s.draw()
	if len(dd.Vertices) == 0 || len(dd.Indices) == 0 {
		t.Fatal("inactive rotation handle should still draw its arc")
	}
	assertValidDrawData(t, dd)

	s.setActive(true)
	s.state.currentDelta = 1.0
	active := s.draw()
	if len(active.Vertices) == 0 {
		t.Fatal("active rotation handle should draw the swept sector")
	}
	assertValidDrawData(t, active)
}
