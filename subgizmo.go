package gizmo

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// View-angle fade windows. An axis handle disappears as it points at the
// camera; a plane handle disappears as it turns edge-on.
const (
	arrowFadeStart = 0.95
	arrowFadeEnd   = 0.99
	planeFadeStart = 0.70
	planeFadeEnd   = 0.86
)

// subGizmo is one single-purpose interaction handle. At most one subgizmo
// is active across the whole gizmo at any time.
type subGizmo interface {
	// id is a stable identity derived from the subgizmo kind and
	// parameters, surviving reconstruction across frames.
	id() uint64
	updateConfig(config PreparedGizmoConfig)
	setFocused(focused bool)
	setActive(active bool)
	isFocused() bool
	isActive() bool
	// pick tests the pointer ray against the handle geometry and resets
	// the drag state. It returns the distance along the ray on a hit.
	pick(r ray) (float64, bool)
	// update evolves the drag state from the pointer ray. It returns
	// false when the frame's geometry degenerates; state is then held.
	update(r ray) (GizmoResult, bool)
	draw() GizmoDrawData
}

// subGizmoID derives a deterministic identity from a subgizmo kind and its
// parameters.
func subGizmoID(kind string, params ...uint64) uint64 {
	h := fnv.New64a()
	_, _ = io.WriteString(h, kind)
	var buf [8]byte
	for _, p := range params {
		binary.LittleEndian.PutUint64(buf[:], p)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// subGizmoBase carries the state shared by every subgizmo kind.
type subGizmoBase struct {
	subID   uint64
	config  PreparedGizmoConfig
	focused bool
	active  bool
	// opacity is the view-dependent visibility for this frame. A fully
	// invisible subgizmo cannot be picked.
	opacity float32
}

func newSubGizmoBase(id uint64, config PreparedGizmoConfig) subGizmoBase {
	return subGizmoBase{subID: id, config: config}
}

func (b *subGizmoBase) id() uint64                              { return b.subID }
func (b *subGizmoBase) updateConfig(config PreparedGizmoConfig) { b.config = config }
func (b *subGizmoBase) setFocused(focused bool)                 { b.focused = focused }
func (b *subGizmoBase) setActive(active bool)                   { b.active = active }
func (b *subGizmoBase) isFocused() bool                         { return b.focused }
func (b *subGizmoBase) isActive() bool                          { return b.active }

// transformKind distinguishes single-axis handles from plane handles.
type transformKind int

const (
	kindAxis transformKind = iota
	kindPlane
)

// pickResult is the outcome of testing a pointer ray against a handle.
type pickResult struct {
	// subGizmoPoint is the point on the handle closest to the ray.
	subGizmoPoint mgl64.Vec3
	// visibility is the view-dependent fade, in [0, 1].
	visibility float64
	picked     bool
	// t is the distance along the pointer ray.
	t float64
}

type arrowParams struct {
	start     mgl64.Vec3
	end       mgl64.Vec3
	direction mgl64.Vec3
	length    float64
}

// arrowModesOverlapping reports whether a translate and a scale arrow would
// occupy the same axis.
func arrowModesOverlapping(mode GizmoMode, otherModes GizmoModes) bool {
	return (mode == ModeTranslateX && otherModes.Contains(ModeScaleX)) ||
		(mode == ModeTranslateY && otherModes.Contains(ModeScaleY)) ||
		(mode == ModeTranslateZ && otherModes.Contains(ModeScaleZ)) ||
		(mode == ModeScaleX && otherModes.Contains(ModeTranslateX)) ||
		(mode == ModeScaleY && otherModes.Contains(ModeTranslateY)) ||
		(mode == ModeScaleZ && otherModes.Contains(ModeTranslateZ))
}

func newArrowParams(config *PreparedGizmoConfig, direction mgl64.Vec3, mode GizmoMode) arrowParams {
	width := float64(config.scaleFactor * config.Visuals.StrokeWidth)

	var start mgl64.Vec3
	var length float64
	if mode.isTranslate() && arrowModesOverlapping(mode, config.Modes) {
		// Both translate and scale arrows are enabled on this axis. Render
		// the translate arrow shorter and further out so they do not collide.
		length = float64(config.scaleFactor * config.Visuals.GizmoSize)
		start = direction.Mul(length + width*3)
		length = length*0.2 + width
	} else {
		start = direction.Mul(width*0.5 + innerCircleRadius(config))
		length = float64(config.scaleFactor*config.Visuals.GizmoSize) - start.Len()
		if config.Modes.Count() > 1 {
			length -= width * 2
		}
	}

	return arrowParams{
		start:     start,
		end:       start.Add(direction.Mul(length)),
		direction: direction,
		length:    length,
	}
}

// pickArrow tests the ray against an axis arrow handle.
func pickArrow(config *PreparedGizmoConfig, r ray, direction GizmoDirection, mode GizmoMode) pickResult {
	const rayLength = 1e14

	dir := gizmoNormal(config, direction)

	params := newArrowParams(config, dir, mode)
	params.start = params.start.Add(config.translation)
	params.end = params.end.Add(config.translation)

	rayT, subGizmoT := segmentToSegment(
		r.origin,
		r.origin.Add(r.direction.Mul(rayLength)),
		params.start,
		params.end,
	)

	rayPoint := r.origin.Add(r.direction.Mul(rayLength * rayT))
	subGizmoPoint := params.start.Add(params.direction.Mul(params.length * subGizmoT))
	dist := rayPoint.Sub(subGizmoPoint).Len()

	dot := math.Abs(config.eyeToModelDir.Dot(params.direction))
	visibility := math.Min(1, 1-(dot-arrowFadeStart)/(arrowFadeEnd-arrowFadeStart))

	return pickResult{
		subGizmoPoint: subGizmoPoint,
		visibility:    visibility,
		picked:        visibility > 0 && dist <= float64(config.focusDistance),
		t:             rayT,
	}
}

// pickPlane tests the ray against a plane handle.
func pickPlane(config *PreparedGizmoConfig, r ray, direction GizmoDirection) pickResult {
	origin := planeGlobalOrigin(config, direction)
	normal := gizmoNormal(config, direction)

	t, distFromOrigin := rayToPlaneOrigin(normal, origin, r.origin, r.direction)
	rayPoint := r.origin.Add(r.direction.Mul(t))

	dot := math.Abs(config.eyeToModelDir.Dot(normal))
	visibility := math.Min(1, 1-((1-dot)-planeFadeStart)/(planeFadeEnd-planeFadeStart))

	return pickResult{
		subGizmoPoint: rayPoint,
		visibility:    visibility,
		picked:        visibility > 0 && distFromOrigin <= planeSize(config),
		t:             t,
	}
}

// pickCircle tests the ray against a view-facing circle centered on the
// pivot, either the filled disc or just the stroked rim.
func pickCircle(config *PreparedGizmoConfig, r ray, radius float64, filled bool) pickResult {
	origin := config.translation
	normal := config.viewForward().Mul(-1)

	t, distFromOrigin := rayToPlaneOrigin(normal, origin, r.origin, r.direction)
	hitPos := r.origin.Add(r.direction.Mul(t))

	var picked bool
	if filled {
		picked = distFromOrigin <= radius+float64(config.focusDistance)
	} else {
		picked = math.Abs(distFromOrigin-radius) <= float64(config.focusDistance)
	}

	return pickResult{
		subGizmoPoint: hitPos,
		visibility:    1,
		picked:        picked,
		t:             t,
	}
}

// gizmoModelTransform is the matrix the axis and plane handles are drawn
// through: rotation applies only in local orientation.
func gizmoModelTransform(config *PreparedGizmoConfig) mgl64.Mat4 {
	t := config.translation
	if config.localSpace() {
		return mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(config.rotation.Mat4())
	}
	return mgl64.Translate3D(t.X(), t.Y(), t.Z())
}

func drawArrow(config *PreparedGizmoConfig, opacity float32, focused bool, direction GizmoDirection, mode GizmoMode) GizmoDrawData {
	if opacity <= 1e-4 {
		return GizmoDrawData{}
	}

	color := gizmoColor(config, focused, direction).MulAlpha(opacity)

	builder := newShapeBuilder(
		config.viewProjection.Mul4(gizmoModelTransform(config)),
		config.Viewport,
		config.PixelsPerPoint,
	)

	dir := gizmoLocalNormal(config, direction)
	params := newArrowParams(config, dir, mode)

	tipStrokeWidth := 2.4 * config.Visuals.StrokeWidth
	tipLength := float64(tipStrokeWidth * config.scaleFactor)
	tipStart := params.end.Sub(params.direction.Mul(tipLength))

	dd := builder.LineSegment(params.start, tipStart, config.Visuals.StrokeWidth, color)
	if mode.isScale() {
		dd = dd.Add(builder.LineSegment(tipStart, params.end, tipStrokeWidth, color))
	} else if mode.isTranslate() {
		dd = dd.Add(builder.Arrow(tipStart, params.end, tipStrokeWidth, color))
	}
	return dd
}

func drawPlane(config *PreparedGizmoConfig, opacity float32, focused bool, direction GizmoDirection) GizmoDrawData {
	if opacity <= 1e-4 {
		return GizmoDrawData{}
	}

	color := gizmoColor(config, focused, direction).MulAlpha(opacity)

	builder := newShapeBuilder(
		config.viewProjection.Mul4(gizmoModelTransform(config)),
		config.Viewport,
		config.PixelsPerPoint,
	)

	scale := planeSize(config) * 0.5
	a := planeBitangent(direction).Mul(scale)
	bt := planeTangent(direction).Mul(scale)
	origin := planeLocalOrigin(config, direction)

	return builder.Polygon([]mgl64.Vec3{
		origin.Sub(bt).Sub(a),
		origin.Add(bt).Sub(a),
		origin.Add(bt).Add(a),
		origin.Sub(bt).Add(a),
	}, color)
}

func drawCircle(config *PreparedGizmoConfig, color Color, radius float64, filled bool) GizmoDrawData {
	if color.A <= 0 {
		return GizmoDrawData{}
	}

	// Face the circle towards the camera.
	forward := config.viewForward()
	right := config.viewRight()
	up := config.viewUp()
	basis := mgl64.Mat3{
		up.X(), up.Y(), up.Z(),
		-forward.X(), -forward.Y(), -forward.Z(),
		-right.X(), -right.Y(), -right.Z(),
	}
	rotation := mgl64.Mat4ToQuat(basis.Mat4())

	t := config.translation
	transform := mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(rotation.Mat4())

	builder := newShapeBuilder(
		config.viewProjection.Mul4(transform),
		config.Viewport,
		config.PixelsPerPoint,
	)

	if filled {
		return builder.FilledCircle(radius, color)
	}
	return builder.Circle(radius, config.Visuals.StrokeWidth, color)
}

func planeBitangent(direction GizmoDirection) mgl64.Vec3 {
	switch direction {
	case DirectionX:
		return mgl64.Vec3{0, 1, 0}
	case DirectionY:
		return mgl64.Vec3{0, 0, 1}
	case DirectionZ:
		return mgl64.Vec3{1, 0, 0}
	default:
		return mgl64.Vec3{}
	}
}

func planeTangent(direction GizmoDirection) mgl64.Vec3 {
	switch direction {
	case DirectionX:
		return mgl64.Vec3{0, 0, 1}
	case DirectionY:
		return mgl64.Vec3{1, 0, 0}
	case DirectionZ:
		return mgl64.Vec3{0, 1, 0}
	default:
		return mgl64.Vec3{}
	}
}

func planeSize(config *PreparedGizmoConfig) float64 {
	return float64(config.scaleFactor * (config.Visuals.GizmoSize*0.1 + config.Visuals.StrokeWidth*2))
}

func planeLocalOrigin(config *PreparedGizmoConfig, direction GizmoDirection) mgl64.Vec3 {
	offset := float64(config.scaleFactor * config.Visuals.GizmoSize * 0.5)
	return planeBitangent(direction).Add(planeTangent(direction)).Mul(offset)
}

func planeGlobalOrigin(config *PreparedGizmoConfig, direction GizmoDirection) mgl64.Vec3 {
	origin := planeLocalOrigin(config, direction)
	if config.localSpace() {
		origin = config.rotation.Rotate(origin)
	}
	return origin.Add(config.translation)
}

// innerCircleRadius is the radius of the inner circle subgizmos.
func innerCircleRadius(config *PreparedGizmoConfig) float64 {
	return float64(config.scaleFactor*config.Visuals.GizmoSize) * 0.2
}

// outerCircleRadius is the radius of the outer circle subgizmos.
func outerCircleRadius(config *PreparedGizmoConfig) float64 {
	return float64(config.scaleFactor * (config.Visuals.GizmoSize + config.Visuals.StrokeWidth + 5))
}

// gizmoLocalNormal is the handle direction before orientation is applied.
func gizmoLocalNormal(config *PreparedGizmoConfig, direction GizmoDirection) mgl64.Vec3 {
	switch direction {
	case DirectionX:
		return mgl64.Vec3{1, 0, 0}
	case DirectionY:
		return mgl64.Vec3{0, 1, 0}
	case DirectionZ:
		return mgl64.Vec3{0, 0, 1}
	default:
		return config.viewForward().Mul(-1)
	}
}

// gizmoNormal is the handle direction in world space.
func gizmoNormal(config *PreparedGizmoConfig, direction GizmoDirection) mgl64.Vec3 {
	normal := gizmoLocalNormal(config, direction)
	if config.localSpace() && direction != DirectionView {
		normal = config.rotation.Rotate(normal)
	}
	return normal
}

func gizmoColor(config *PreparedGizmoConfig, focused bool, direction GizmoDirection) Color {
	var color Color
	switch direction {
	case DirectionX:
		color = config.Visuals.XColor
	case DirectionY:
		color = config.Visuals.YColor
	case DirectionZ:
		color = config.Visuals.ZColor
	default:
		color = config.Visuals.SColor
	}

	alpha := config.Visuals.InactiveAlpha
	if focused {
		if config.Visuals.HighlightColor != nil {
			color = *config.Visuals.HighlightColor
		}
		alpha = config.Visuals.HighlightAlpha
	}

	return color.MulAlpha(alpha)
}
