package gizmo

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Tessellation density of arcs, steps per radian of angular span.
const strokeStepsPerRadian = 20.0

// shapeBuilder tessellates world-space primitives into 2D triangle meshes.
// All operations silently produce empty output when the required points do
// not project onto the viewport (e.g. behind the camera).
type shapeBuilder struct {
	mvp            mgl64.Mat4
	viewport       Rect
	pixelsPerPoint float32
}

func newShapeBuilder(mvp mgl64.Mat4, viewport Rect, pixelsPerPoint float32) shapeBuilder {
	return shapeBuilder{mvp: mvp, viewport: viewport, pixelsPerPoint: pixelsPerPoint}
}

// feather is the antialiasing band width, one physical pixel in points.
func (b shapeBuilder) feather() float32 {
	if b.pixelsPerPoint <= 0 {
		return 1
	}
	return 1 / b.pixelsPerPoint
}

func (b shapeBuilder) project(pos mgl64.Vec3) (mgl32.Vec2, bool) {
	return worldToScreen(b.viewport, b.mvp, pos)
}

func (b shapeBuilder) projectAll(points []mgl64.Vec3) []mgl32.Vec2 {
	out := make([]mgl32.Vec2, 0, len(points))
	for _, p := range points {
		if sp, ok := b.project(p); ok {
			out = append(out, sp)
		}
	}
	return out
}

func arcStepCount(angle float64) int {
	return int(math.Max(math.Ceil(strokeStepsPerRadian*math.Abs(angle)), 1))
}

// arcPoints samples an arc on the local XZ plane.
func (b shapeBuilder) arcPoints(radius, startAngle, endAngle float64) []mgl32.Vec2 {
	angle := mgl64.Clamp(endAngle-startAngle, -2*math.Pi, 2*math.Pi)

	stepCount := arcStepCount(angle)
	if stepCount < 2 {
		stepCount = 2
	}
	stepSize := angle / float64(stepCount-1)

	points := make([]mgl64.Vec3, 0, stepCount)
	for i := 0; i < stepCount; i++ {
		a := startAngle + stepSize*float64(i)
		points = append(points, mgl64.Vec3{math.Cos(a) * radius, 0, math.Sin(a) * radius})
	}

	return b.projectAll(points)
}

// Arc builds a stroked arc of the given radius between two angles.
func (b shapeBuilder) Arc(radius, startAngle, endAngle float64, width float32, color Color) GizmoDrawData {
	points := b.arcPoints(radius, startAngle, endAngle)
	if len(points) < 2 {
		return GizmoDrawData{}
	}

	closed := points[0].Sub(points[len(points)-1]).Len() < 1e-2
	if closed {
		points = points[:len(points)-1]
	}
	return b.strokePath(points, closed, width, color)
}

// Circle builds a stroked full circle.
func (b shapeBuilder) Circle(radius float64, width float32, color Color) GizmoDrawData {
	return b.Arc(radius, 0, 2*math.Pi, width, color)
}

// FilledCircle builds a filled circle as a convex fan.
func (b shapeBuilder) FilledCircle(radius float64, fill Color) GizmoDrawData {
	points := b.arcPoints(radius, 0, 2*math.Pi)
	if len(points) > 0 {
		points = points[:len(points)-1]
	}
	if len(points) < 3 {
		return GizmoDrawData{}
	}
	return b.fillConvex(points, fill)
}

// LineSegment builds a stroked straight segment between two world points.
func (b shapeBuilder) LineSegment(from, to mgl64.Vec3, width float32, color Color) GizmoDrawData {
	a, ok := b.project(from)
	if !ok {
		return GizmoDrawData{}
	}
	c, ok := b.project(to)
	if !ok {
		return GizmoDrawData{}
	}
	return b.strokePath([]mgl32.Vec2{a, c}, false, width, color)
}

// Arrow builds a triangular arrowhead from one world point to another, with
// the base width taken from the stroke width.
func (b shapeBuilder) Arrow(from, to mgl64.Vec3, width float32, color Color) GizmoDrawData {
	start, ok := b.project(from)
	if !ok {
		return GizmoDrawData{}
	}
	end, ok := b.project(to)
	if !ok {
		return GizmoDrawData{}
	}

	dir := end.Sub(start)
	if dir.Len() < 1e-6 {
		return GizmoDrawData{}
	}
	cross := rot90(dir.Normalize()).Mul(width / 2)

	return b.fillConvex([]mgl32.Vec2{start.Sub(cross), start.Add(cross), end}, color)
}

// Polygon builds a filled convex polygon from world points.
func (b shapeBuilder) Polygon(points []mgl64.Vec3, fill Color) GizmoDrawData {
	projected := b.projectAll(points)
	if len(projected) < 3 {
		return GizmoDrawData{}
	}
	return b.fillConvex(projected, fill)
}

// Polyline builds a stroked open path through world points.
func (b shapeBuilder) Polyline(points []mgl64.Vec3, width float32, color Color) GizmoDrawData {
	projected := b.projectAll(points)
	if len(projected) < 2 {
		return GizmoDrawData{}
	}
	return b.strokePath(projected, false, width, color)
}

// Sector builds a filled circle sector between two angles. A full-turn span
// collapses into a filled circle.
func (b shapeBuilder) Sector(radius, startAngle, endAngle float64, fill Color) GizmoDrawData {
	angleDelta := endAngle - startAngle
	stepCount := arcStepCount(angleDelta)
	if stepCount < 2 {
		return GizmoDrawData{}
	}

	stepSize := angleDelta / float64(stepCount-1)
	if math.Abs(math.Abs(startAngle-endAngle)-2*math.Pi) < math.Abs(stepSize) {
		return b.FilledCircle(radius, fill)
	}

	points := make([]mgl64.Vec3, 0, stepCount+1)
	points = append(points, mgl64.Vec3{})

	sinStep, cosStep := math.Sincos(stepSize)
	sinAngle, cosAngle := math.Sincos(startAngle)

	for i := 0; i < stepCount; i++ {
		points = append(points, mgl64.Vec3{cosAngle * radius, 0, sinAngle * radius})

		sinAngle, cosAngle = sinAngle*cosStep+cosAngle*sinStep, cosAngle*cosStep-sinAngle*sinStep
	}

	projected := b.projectAll(points)
	if len(projected) < 3 {
		return GizmoDrawData{}
	}
	return b.fillConvex(projected, fill)
}

func rot90(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{v.Y(), -v.X()}
}

// pathNormals returns the averaged per-point edge normals of a path.
func pathNormals(points []mgl32.Vec2, closed bool) []mgl32.Vec2 {
	n := len(points)
	edgeNormal := func(i, j int) (mgl32.Vec2, bool) {
		d := points[j].Sub(points[i])
		if d.Len() < 1e-9 {
			return mgl32.Vec2{}, false
		}
		return rot90(d.Normalize()), true
	}

	normals := make([]mgl32.Vec2, n)
	for i := range points {
		var sum mgl32.Vec2
		if i > 0 || closed {
			if en, ok := edgeNormal((i+n-1)%n, i); ok {
				sum = sum.Add(en)
			}
		}
		if i < n-1 || closed {
			if en, ok := edgeNormal(i, (i+1)%n); ok {
				sum = sum.Add(en)
			}
		}
		if sum.Len() < 1e-9 {
			sum = mgl32.Vec2{1, 0}
		}
		normals[i] = sum.Normalize()
	}
	return normals
}

// strokePath emits a stroked path as three triangle bands: a solid core and
// a feathered edge on both sides.
func (b shapeBuilder) strokePath(points []mgl32.Vec2, closed bool, width float32, color Color) GizmoDrawData {
	if len(points) < 2 || color.A <= 0 {
		return GizmoDrawData{}
	}

	f := b.feather()
	half := width / 2
	if half < f/2 {
		// Thinner than one pixel: keep a one pixel band and fade instead.
		color = color.MulAlpha(width / f)
		half = f / 2
	}
	inner := half - f/2
	outer := half + f/2

	normals := pathNormals(points, closed)

	var dd GizmoDrawData
	outerColor := color.MulAlpha(0)
	for i, p := range points {
		n := normals[i]
		dd.Vertices = append(dd.Vertices,
			vec2Array(p.Add(n.Mul(outer))),
			vec2Array(p.Add(n.Mul(inner))),
			vec2Array(p.Sub(n.Mul(inner))),
			vec2Array(p.Sub(n.Mul(outer))),
		)
		dd.Colors = append(dd.Colors, outerColor.array(), color.array(), color.array(), outerColor.array())
	}

	segments := len(points) - 1
	if closed {
		segments = len(points)
	}
	for s := 0; s < segments; s++ {
		i := uint32(s * 4)
		j := uint32(((s + 1) % len(points)) * 4)
		for band := uint32(0); band < 3; band++ {
			dd.Indices = append(dd.Indices,
				i+band, j+band, j+band+1,
				i+band, j+band+1, i+band+1,
			)
		}
	}
	return dd
}

// fillConvex emits a convex polygon as a triangle fan plus a feathered
// outline ring.
func (b shapeBuilder) fillConvex(points []mgl32.Vec2, fill Color) GizmoDrawData {
	if len(points) < 3 || fill.A <= 0 {
		return GizmoDrawData{}
	}

	// Orientation from the signed area so the feather goes outward.
	var area float32
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].X()*points[j].Y() - points[j].X()*points[i].Y()
	}
	orient := float32(1)
	if area < 0 {
		orient = -1
	}

	f := b.feather()
	normals := pathNormals(points, true)
	transparent := fill.MulAlpha(0)

	var dd GizmoDrawData
	// Interleaved inner (filled) and outer (transparent) vertices.
	for i, p := range points {
		n := normals[i].Mul(orient)
		dd.Vertices = append(dd.Vertices, vec2Array(p), vec2Array(p.Add(n.Mul(f))))
		dd.Colors = append(dd.Colors, fill.array(), transparent.array())
	}

	// Fan over the inner vertices.
	for i := 2; i < len(points); i++ {
		dd.Indices = append(dd.Indices, 0, uint32(i-1)*2, uint32(i)*2)
	}
	// Feather ring.
	for i := range points {
		j := (i + 1) % len(points)
		in0, out0 := uint32(i)*2, uint32(i)*2+1
		in1, out1 := uint32(j)*2, uint32(j)*2+1
		dd.Indices = append(dd.Indices, in0, out0, out1, in0, out1, in1)
	}
	return dd
}

func vec2Array(v mgl32.Vec2) [2]float32 {
	return [2]float32{v.X(), v.Y()}
}
