package gizmo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// scaleSubGizmo scales targets along an axis, within a plane or uniformly.
// Scaling is driven by the cursor's screen distance from the gizmo center.
type scaleSubGizmo struct {
	subGizmoBase
	mode          GizmoMode
	direction     GizmoDirection
	transformKind transformKind
	state         scaleState
}

type scaleState struct {
	startDelta float64
}

func newScaleSubGizmo(config PreparedGizmoConfig, mode GizmoMode, direction GizmoDirection, kind transformKind) *scaleSubGizmo {
	return &scaleSubGizmo{
		subGizmoBase:  newSubGizmoBase(subGizmoID("scale", uint64(mode), uint64(direction), uint64(kind)), config),
		mode:          mode,
		direction:     direction,
		transformKind: kind,
	}
}

func (s *scaleSubGizmo) pick(r ray) (float64, bool) {
	config := &s.config

	var result pickResult
	switch {
	case s.transformKind == kindPlane && s.direction == DirectionView:
		result = pickCircle(config, r, innerCircleRadius(config), true)
		if !result.picked {
			result = pickCircle(config, r, outerCircleRadius(config), false)
		}
	case s.transformKind == kindPlane:
		result = pickPlane(config, r, s.direction)
	default:
		result = pickArrow(config, r, s.direction, s.mode)
	}

	startDelta, ok := s.distanceFromOrigin2D(r)
	if !ok {
		return 0, false
	}

	s.opacity = float32(result.visibility)
	s.state = scaleState{startDelta: startDelta}

	return result.t, result.picked
}

func (s *scaleSubGizmo) update(r ray) (GizmoResult, bool) {
	config := &s.config

	delta, ok := s.distanceFromOrigin2D(r)
	if !ok {
		return GizmoResult{}, false
	}
	delta /= s.state.startDelta

	if config.Snapping {
		delta = roundToInterval(delta, config.SnapScale)
	}
	// A scale ratio of zero would collapse the target irrecoverably.
	delta = math.Max(delta, 1e-4) - 1

	var direction mgl64.Vec3
	switch {
	case s.transformKind == kindAxis:
		direction = gizmoLocalNormal(config, s.direction)
	case s.direction == DirectionView:
		direction = mgl64.Vec3{1, 1, 1}
	default:
		direction = planeBitangent(s.direction).Add(planeTangent(s.direction)).Normalize()
	}

	total := mgl64.Vec3{1, 1, 1}.Add(direction.Mul(delta))

	return GizmoResult{
		Kind:       ResultScale,
		ScaleTotal: total,
	}, true
}

func (s *scaleSubGizmo) draw() GizmoDrawData {
	config := &s.config
	switch {
	case s.transformKind == kindAxis:
		return drawArrow(config, s.opacity, s.focused, s.direction, s.mode)
	case s.direction == DirectionView:
		color := gizmoColor(config, s.focused, s.direction)
		dd := drawCircle(config, color, innerCircleRadius(config), false)
		return dd.Add(drawCircle(config, color, outerCircleRadius(config), false))
	default:
		return drawPlane(config, s.opacity, s.focused, s.direction)
	}
}

// distanceFromOrigin2D is the screen space distance between the cursor
// and the projected gizmo center.
func (s *scaleSubGizmo) distanceFromOrigin2D(r ray) (float64, bool) {
	config := &s.config

	gizmoPos, ok := worldToScreen(config.Viewport, config.mvp, mgl64.Vec3{})
	if !ok {
		return 0, false
	}

	dx := float64(r.screenPos.X() - gizmoPos.X())
	dy := float64(r.screenPos.Y() - gizmoPos.Y())
	return math.Hypot(dx, dy), true
}
