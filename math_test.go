package gizmo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRoundToInterval(t *testing.T) {
	cases := []struct {
		val, interval, want float64
	}{
		{0.34, 0.1, 0.3},
		{2.4, 1.0, 2.0},
		{1.6, 1.0, 2.0},
		{-0.34, 0.1, -0.3},
		{0.0, 0.1, 0.0},
	}
	for _, c := range cases {
		got := roundToInterval(c.val, c.interval)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("roundToInterval(%v, %v) = %v, want %v", c.val, c.interval, got, c.want)
		}
	}
}

func TestWorldToScreenCenter(t *testing.T) {
	cfg := testCameraConfig()
	vp := cfg.ProjectionMatrix.Mul4(cfg.ViewMatrix)

	screen, ok := worldToScreen(cfg.Viewport, vp, mgl64.Vec3{})
	if !ok {
		t.Fatal("projection of the origin failed")
	}
	if math.Abs(float64(screen.X()-400)) > 1e-3 || math.Abs(float64(screen.Y()-300)) > 1e-3 {
		t.Errorf("origin projected to %v, want viewport center (400, 300)", screen)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cfg := testCameraConfig()
	vp := cfg.ProjectionMatrix.Mul4(cfg.ViewMatrix)

	world := mgl64.Vec3{1, 2, -3}
	screen, ok := worldToScreen(cfg.Viewport, vp, world)
	if !ok {
		t.Fatal("projection failed")
	}

	// Cast a ray through the projected position and verify it passes
	// through the original point.
	inv := vp.Inv()
	near := screenToWorld(cfg.Viewport, inv, screen, -1)
	far := screenToWorld(cfg.Viewport, inv, screen, 1)

	dir := far.Sub(near).Normalize()
	toWorld := world.Sub(near)
	dist := toWorld.Sub(dir.Mul(toWorld.Dot(dir))).Len()
	if dist > 1e-6 {
		t.Errorf("unprojected ray misses the original point by %v", dist)
	}
}

func TestWorldToScreenBehindCamera(t *testing.T) {
	cfg := testCameraConfig()
	vp := cfg.ProjectionMatrix.Mul4(cfg.ViewMatrix)

	// The camera sits at z=10 looking towards -z.
	if _, ok := worldToScreen(cfg.Viewport, vp, mgl64.Vec3{0, 0, 100}); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestRotationAlign(t *testing.T) {
	cases := []struct {
		from, to mgl64.Vec3
	}{
		{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}},
		{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}},
		{mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}},
		{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}},
	}
	for _, c := range cases {
		m := rotationAlign(c.from, c.to)
		got := m.Mul3x1(c.from)
		if got.Sub(c.to).Len() > 1e-9 {
			t.Errorf("rotationAlign(%v, %v) maps from to %v", c.from, c.to, got)
		}
	}
}

func TestRayToRay(t *testing.T) {
	ta, tb := rayToRay(
		mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{2, -1, 0}, mgl64.Vec3{0, 1, 0},
	)
	if math.Abs(ta-2) > 1e-9 || math.Abs(tb-1) > 1e-9 {
		t.Errorf("closest points at ta=%v tb=%v, want 2 and 1", ta, tb)
	}
}

func TestRayToRayParallel(t *testing.T) {
	ta, _ := rayToRay(
		mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0},
	)
	if ta != 0 {
		t.Errorf("parallel rays should return ta=0, got %v", ta)
	}
}

func TestSegmentToSegment(t *testing.T) {
	ta, tb := segmentToSegment(
		mgl64.Vec3{0, 0, 0}, mgl64.Vec3{4, 0, 0},
		mgl64.Vec3{1, -1, 1}, mgl64.Vec3{1, 1, 1},
	)
	a := mgl64.Vec3{4, 0, 0}.Mul(ta)
	b := mgl64.Vec3{1, -1, 1}.Add(mgl64.Vec3{0, 2, 0}.Mul(tb))
	if a.Sub(b).Len() > 1+1e-9 {
		t.Errorf("closest segment points %v and %v too far apart", a, b)
	}
	if math.Abs(ta-0.25) > 1e-9 {
		t.Errorf("ta = %v, want 0.25", ta)
	}
}

func TestIntersectPlane(t *testing.T) {
	var dist float64
	ok := intersectPlane(
		mgl64.Vec3{0, 0, 1}, mgl64.Vec3{},
		mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1},
		&dist,
	)
	if !ok || math.Abs(dist-5) > 1e-9 {
		t.Errorf("ok=%v dist=%v, want hit at distance 5", ok, dist)
	}

	// Ray pointing away from the plane.
	if intersectPlane(
		mgl64.Vec3{0, 0, 1}, mgl64.Vec3{},
		mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 1},
		&dist,
	) {
		t.Error("ray pointing away should not intersect")
	}

	// Ray parallel to the plane.
	if intersectPlane(
		mgl64.Vec3{0, 0, 1}, mgl64.Vec3{},
		mgl64.Vec3{0, 0, 5}, mgl64.Vec3{1, 0, 0},
		&dist,
	) {
		t.Error("parallel ray should not intersect")
	}
}

func TestRayToPlaneOriginMiss(t *testing.T) {
	_, dist := rayToPlaneOrigin(
		mgl64.Vec3{0, 0, 1}, mgl64.Vec3{},
		mgl64.Vec3{0, 0, 5}, mgl64.Vec3{1, 0, 0},
	)
	if dist != math.MaxFloat64 {
		t.Errorf("miss should report max distance, got %v", dist)
	}
}

func TestRectIsFinite(t *testing.T) {
	if !NewRect(0, 0, 800, 600).IsFinite() {
		t.Error("regular rect should be finite")
	}
	if NewRect(0, 0, 0, 0).IsFinite() {
		t.Error("zero area rect should not be usable")
	}
	nan := float32(math.NaN())
	if NewRect(0, 0, nan, 600).IsFinite() {
		t.Error("NaN rect should not be finite")
	}
	inf := float32(math.Inf(1))
	if NewRect(0, 0, inf, 600).IsFinite() {
		t.Error("infinite rect should not be finite")
	}
}
