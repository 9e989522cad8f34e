package gizmo

import (
	"github.com/go-gl/mathgl/mgl64"
)

// translationSubGizmo translates targets along an axis, within a plane or
// in the camera plane.
type translationSubGizmo struct {
	subGizmoBase
	mode          GizmoMode
	direction     GizmoDirection
	transformKind transformKind
	state         translationState
}

type translationState struct {
	startViewDir mgl64.Vec3
	startPoint   mgl64.Vec3
	lastPoint    mgl64.Vec3
	currentDelta mgl64.Vec3
}

func newTranslationSubGizmo(config PreparedGizmoConfig, mode GizmoMode, direction GizmoDirection, kind transformKind) *translationSubGizmo {
	return &translationSubGizmo{
		subGizmoBase:  newSubGizmoBase(subGizmoID("translation", uint64(mode), uint64(direction), uint64(kind)), config),
		mode:          mode,
		direction:     direction,
		transformKind: kind,
	}
}

func (s *translationSubGizmo) pick(r ray) (float64, bool) {
	config := &s.config

	var result pickResult
	switch {
	case s.transformKind == kindPlane && s.direction == DirectionView:
		result = pickCircle(config, r, innerCircleRadius(config), true)
	case s.transformKind == kindPlane:
		result = pickPlane(config, r, s.direction)
	default:
		result = pickArrow(config, r, s.direction, s.mode)
	}

	s.opacity = float32(result.visibility)

	s.state = translationState{
		startViewDir: config.viewForward(),
		startPoint:   result.subGizmoPoint,
		lastPoint:    result.subGizmoPoint,
	}

	return result.t, result.picked
}

func (s *translationSubGizmo) update(r ray) (GizmoResult, bool) {
	config := &s.config

	if config.viewForward() != s.state.startViewDir {
		// The camera has rotated since the drag started. Re-pick to refresh
		// the reference point, otherwise view plane translation drifts.
		s.pick(r)
	}

	var newPoint mgl64.Vec3
	if s.transformKind == kindAxis {
		newPoint = s.pointOnAxis(r)
	} else {
		p, ok := pointOnPlane(
			gizmoNormal(config, s.direction),
			planeGlobalOrigin(config, s.direction),
			r,
		)
		if !ok {
			return GizmoResult{}, false
		}
		newPoint = p
	}

	newDelta := newPoint.Sub(s.state.startPoint)

	if config.Snapping {
		if s.transformKind == kindAxis {
			newDelta = s.snapTranslationVector(newDelta)
		} else {
			newDelta = s.snapTranslationPlane(newDelta)
		}
		newPoint = s.state.startPoint.Add(newDelta)
	}

	translationDelta := newPoint.Sub(s.state.lastPoint)
	totalTranslation := newPoint.Sub(s.state.startPoint)

	if config.Orientation == OrientationLocal {
		inverseRotation := config.rotation.Inverse()
		translationDelta = inverseRotation.Rotate(translationDelta)
		totalTranslation = inverseRotation.Rotate(totalTranslation)
	}

	s.state.lastPoint = newPoint
	s.state.currentDelta = newDelta

	return GizmoResult{
		Kind:             ResultTranslation,
		TranslationDelta: translationDelta,
		TranslationTotal: totalTranslation,
	}, true
}

func (s *translationSubGizmo) draw() GizmoDrawData {
	config := &s.config
	switch {
	case s.transformKind == kindAxis:
		return drawArrow(config, s.opacity, s.focused, s.direction, s.mode)
	case s.direction == DirectionView:
		return drawCircle(config, gizmoColor(config, s.focused, s.direction), innerCircleRadius(config), false)
	default:
		return drawPlane(config, s.opacity, s.focused, s.direction)
	}
}

// pointOnAxis finds the nearest point on the translation axis to the ray.
func (s *translationSubGizmo) pointOnAxis(r ray) mgl64.Vec3 {
	origin := s.config.translation
	direction := gizmoNormal(&s.config, s.direction)

	_, axisT := rayToRay(r.origin, r.direction, origin, direction)

	return origin.Add(direction.Mul(axisT))
}

func pointOnPlane(planeNormal, planeOrigin mgl64.Vec3, r ray) (mgl64.Vec3, bool) {
	var t float64
	if !intersectPlane(planeNormal, planeOrigin, r.origin, r.direction, &t) {
		return mgl64.Vec3{}, false
	}
	return r.origin.Add(r.direction.Mul(t)), true
}

func (s *translationSubGizmo) snapTranslationVector(newDelta mgl64.Vec3) mgl64.Vec3 {
	deltaLength := newDelta.Len()
	if deltaLength <= 1e-5 {
		return newDelta
	}
	return newDelta.Mul(roundToInterval(deltaLength, s.config.SnapDistance) / deltaLength)
}

func (s *translationSubGizmo) snapTranslationPlane(newDelta mgl64.Vec3) mgl64.Vec3 {
	config := &s.config

	bitangent := planeBitangent(s.direction)
	tangent := planeTangent(s.direction)
	if config.localSpace() {
		bitangent = config.rotation.Rotate(bitangent)
		tangent = config.rotation.Rotate(tangent)
	}

	cb := newDelta.Cross(bitangent.Mul(-1))
	ct := newDelta.Cross(tangent)
	lb := cb.Len()
	lt := ct.Len()
	n := gizmoNormal(config, s.direction)

	if lb <= 1e-5 || lt <= 1e-5 {
		return newDelta
	}

	return bitangent.Mul(roundToInterval(lt, config.SnapDistance) * ct.Mul(1/lt).Dot(n)).
		Add(tangent.Mul(roundToInterval(lb, config.SnapDistance) * cb.Mul(1/lb).Dot(n)))
}
