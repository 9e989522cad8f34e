package gizmo

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// rotationSubGizmo rotates targets around a single fixed axis.
type rotationSubGizmo struct {
	subGizmoBase
	direction GizmoDirection
	state     rotationState
}

// rotationState is reset at pick time and evolved during an active drag.
type rotationState struct {
	// startAxisAngle is the angular offset of the pick point on the
	// rotation plane, relative to the tangent direction.
	startAxisAngle     float64
	startRotationAngle float64
	lastRotationAngle  float64
	currentDelta       float64
}

func newRotationSubGizmo(config PreparedGizmoConfig, direction GizmoDirection) *rotationSubGizmo {
	return &rotationSubGizmo{
		subGizmoBase: newSubGizmoBase(subGizmoID("rotation", uint64(direction)), config),
		direction:    direction,
	}
}

func (s *rotationSubGizmo) pick(r ray) (float64, bool) {
	config := &s.config
	radius := arcRadius(config, s.direction)
	origin := config.translation
	normal := gizmoNormal(config, s.direction)
	tangent := rotationTangent(config, s.direction)

	t, distFromGizmoOrigin := rayToPlaneOrigin(normal, origin, r.origin, r.direction)
	distFromGizmoEdge := math.Abs(distFromGizmoOrigin - radius)

	hitPos := r.origin.Add(r.direction.Mul(t))
	dirToOrigin := origin.Sub(hitPos).Normalize()
	nearestCirclePos := hitPos.Add(dirToOrigin.Mul(distFromGizmoOrigin - radius))

	offset := nearestCirclePos.Sub(origin).Normalize()

	var angle float64
	if s.direction == DirectionView {
		angle = math.Atan2(tangent.Cross(normal).Dot(offset), tangent.Dot(offset))
	} else {
		forward := config.viewForward()
		if config.leftHanded {
			forward = forward.Mul(-1)
		}
		angle = math.Atan2(offset.Cross(forward).Dot(normal), offset.Dot(forward))
	}

	rotationAngle, _ := cursorRotationAngle(config, s.direction, r.screenPos)
	s.state = rotationState{
		startAxisAngle:     angle,
		startRotationAngle: rotationAngle,
		lastRotationAngle:  rotationAngle,
	}

	picked := distFromGizmoEdge <= float64(config.focusDistance) &&
		math.Abs(angle) < arcAngle(config, s.direction)
	return t, picked
}

func (s *rotationSubGizmo) update(r ray) (GizmoResult, bool) {
	config := &s.config

	rotationAngle, ok := cursorRotationAngle(config, s.direction, r.screenPos)
	if !ok {
		return GizmoResult{}, false
	}
	if config.Snapping {
		// Snap the cumulative angle since drag start, not the raw delta.
		rotationAngle = roundToInterval(rotationAngle-s.state.startRotationAngle, config.SnapAngle) +
			s.state.startRotationAngle
	}

	angleDelta := wrapAngleDelta(rotationAngle - s.state.lastRotationAngle)

	s.state.lastRotationAngle = rotationAngle
	s.state.currentDelta += angleDelta

	return GizmoResult{
		Kind:          ResultRotation,
		RotationAxis:  gizmoLocalNormal(config, s.direction),
		RotationDelta: -angleDelta,
		RotationTotal: s.state.currentDelta,
		IsViewAxis:    s.direction == DirectionView,
	}, true
}

func (s *rotationSubGizmo) draw() GizmoDrawData {
	config := &s.config

	builder := newShapeBuilder(
		config.viewProjection.Mul4(rotationDrawTransform(config, s.direction)),
		config.Viewport,
		config.PixelsPerPoint,
	)

	color := gizmoColor(config, s.focused, s.direction)
	strokeWidth := config.Visuals.StrokeWidth
	radius := arcRadius(config, s.direction)

	if !s.active {
		angle := arcAngle(config, s.direction)
		return builder.Arc(radius, math.Pi/2-angle, math.Pi/2+angle, strokeWidth, color)
	}

	startAngle := s.state.startAxisAngle + math.Pi/2
	endAngle := startAngle + s.state.currentDelta

	if startAngle > endAngle {
		startAngle, endAngle = endAngle, startAngle
	}

	// The stroke does not tessellate correctly when the start and end
	// lines coincide exactly.
	endAngle += 1e-5

	totalAngle := endAngle - startAngle
	fullCircles := int(math.Abs(totalAngle / (2 * math.Pi)))
	endAngle -= 2 * math.Pi * float64(fullCircles)

	startAngle2 := endAngle
	endAngle2 := startAngle + 2*math.Pi

	if config.viewForward().Dot(gizmoNormal(config, s.direction)) < 0 {
		// Keep the filled sector on the visible side of the plane.
		startAngle, endAngle = endAngle, startAngle
		startAngle2, endAngle2 = endAngle2, startAngle2
	}

	dd := builder.Polyline([]mgl64.Vec3{
		{math.Cos(startAngle) * radius, 0, math.Sin(startAngle) * radius},
		{0, 0, 0},
		{math.Cos(endAngle) * radius, 0, math.Sin(endAngle) * radius},
	}, strokeWidth, color)

	if fullCircles > 0 {
		fillAlpha := float32(math.Min(0.25*float64(fullCircles), 1))
		dd = dd.Add(builder.Sector(radius, startAngle2, endAngle2, color.MulAlpha(fillAlpha)))
	}

	fillAlpha := float32(math.Min(0.25*float64(fullCircles+1), 1))
	dd = dd.Add(builder.Sector(radius, startAngle, endAngle, color.MulAlpha(fillAlpha)))
	dd = dd.Add(builder.Circle(radius, strokeWidth, color))

	if config.Snapping {
		// Snapping ticks around the rim.
		tickWidth := strokeWidth / 2
		for i := 0; i <= int(2*math.Pi/config.SnapAngle); i++ {
			angle := float64(i)*config.SnapAngle + endAngle
			pos := mgl64.Vec3{math.Cos(angle), 0, math.Sin(angle)}
			dd = dd.Add(builder.LineSegment(pos.Mul(radius*1.1), pos.Mul(radius*1.2), tickWidth, color))
		}
	}

	return dd
}

// wrapAngleDelta maps an angle difference into (-pi, pi], so consecutive
// per-frame angles always produce the smallest arc.
func wrapAngleDelta(delta float64) float64 {
	if delta > math.Pi {
		delta -= 2 * math.Pi
	} else if delta < -math.Pi {
		delta += 2 * math.Pi
	}
	return delta
}

// arcAngle is the half-span of the rotation arc. The arc is a semicircle
// that turns into a full circle when viewed head-on.
func arcAngle(config *PreparedGizmoConfig, direction GizmoDirection) float64 {
	dot := math.Abs(gizmoNormal(config, direction).Dot(config.viewForward()))
	const minDot = 0.990
	const maxDot = 0.995

	angle := math.Min(1, math.Max(0, dot-minDot)/(maxDot-minDot))*math.Pi/2 + math.Pi/2
	if math.Abs(angle-math.Pi) < 1e-2 {
		angle = math.Pi
	}
	return angle
}

// rotationDrawTransform orients the arc towards the camera along the
// rotation axis.
func rotationDrawTransform(config *PreparedGizmoConfig, direction GizmoDirection) mgl64.Mat4 {
	t := config.translation

	if direction == DirectionView {
		forward := config.viewForward()
		right := config.viewRight()
		up := config.viewUp()
		basis := mgl64.Mat3{
			up.X(), up.Y(), up.Z(),
			-forward.X(), -forward.Y(), -forward.Z(),
			-right.X(), -right.Y(), -right.Z(),
		}
		rotation := mgl64.Mat4ToQuat(basis.Mat4())
		return mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(rotation.Mat4())
	}

	// First rotate the arc plane towards the gizmo normal.
	localNormal := gizmoLocalNormal(config, direction)
	rotation := mgl64.Mat4ToQuat(rotationAlign(mgl64.Vec3{0, 1, 0}, localNormal).Mat4())

	if config.localSpace() {
		rotation = config.rotation.Mul(rotation)
	}

	tangent := rotationTangent(config, direction)
	normal := gizmoNormal(config, direction)
	forward := config.viewForward()
	if config.leftHanded {
		forward = forward.Mul(-1)
	}
	angle := math.Atan2(tangent.Cross(forward).Dot(normal), tangent.Dot(forward))

	// Then rotate towards the camera, around the rotation axis.
	rotation = mgl64.QuatRotate(angle, normal).Mul(rotation)

	return mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(rotation.Mat4())
}

// cursorRotationAngle is the angle of the cursor around the gizmo's
// projected center.
func cursorRotationAngle(config *PreparedGizmoConfig, direction GizmoDirection, cursorPos mgl32.Vec2) (float64, bool) {
	gizmoPos, ok := worldToScreen(config.Viewport, config.mvp, mgl64.Vec3{})
	if !ok {
		return 0, false
	}

	delta := mgl64.Vec2{
		float64(cursorPos.X() - gizmoPos.X()),
		float64(cursorPos.Y() - gizmoPos.Y()),
	}
	if delta.Len() < 1e-12 {
		return 0, false
	}
	delta = delta.Normalize()

	angle := math.Atan2(delta.Y(), delta.X())
	if config.viewForward().Dot(gizmoNormal(config, direction)) < 0 {
		angle = -angle
	}
	return angle, true
}

func rotationTangent(config *PreparedGizmoConfig, direction GizmoDirection) mgl64.Vec3 {
	var tangent mgl64.Vec3
	switch direction {
	case DirectionX, DirectionY:
		tangent = mgl64.Vec3{0, 0, 1}
	case DirectionZ:
		tangent = mgl64.Vec3{0, -1, 0}
	case DirectionView:
		tangent = config.viewRight().Mul(-1)
	}

	if config.localSpace() && direction != DirectionView {
		tangent = config.rotation.Rotate(tangent)
	}
	return tangent
}

func arcRadius(config *PreparedGizmoConfig, direction GizmoDirection) float64 {
	if direction == DirectionView {
		return outerCircleRadius(config)
	}
	return float64(config.scaleFactor * config.Visuals.GizmoSize)
}
