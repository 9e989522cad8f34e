package gizmo

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// arcballAngleScale amplifies cursor motion so a short drag produces a
// noticeable rotation.
const arcballAngleScale = 10.0

// arcballSubGizmo freely rotates targets by dragging anywhere inside the
// gizmo circle.
type arcballSubGizmo struct {
	subGizmoBase
	state arcballState
}

type arcballState struct {
	lastPos       mgl32.Vec2
	totalRotation mgl64.Quat
}

func newArcballSubGizmo(config PreparedGizmoConfig) *arcballSubGizmo {
	return &arcballSubGizmo{
		subGizmoBase: newSubGizmoBase(subGizmoID("arcball"), config),
		state:        arcballState{totalRotation: mgl64.QuatIdent()},
	}
}

func (s *arcballSubGizmo) pick(r ray) (float64, bool) {
	result := pickCircle(&s.config, r, arcballRadius(&s.config), true)

	s.state.lastPos = r.screenPos
	s.state.totalRotation = mgl64.QuatIdent()

	if !result.picked {
		return 0, false
	}

	// Any axis or plane handle under the cursor takes priority.
	return math.MaxFloat64, true
}

func (s *arcballSubGizmo) update(r ray) (GizmoResult, bool) {
	config := &s.config

	dir := r.screenPos.Sub(s.state.lastPos)

	rotationDelta := mgl64.QuatIdent()
	if dir.LenSqr() > 1e-7 {
		mat := config.viewProjection.Inv()
		a := screenToWorld(config.Viewport, mat, r.screenPos, 0)
		b := screenToWorld(config.Viewport, mat, s.state.lastPos, 0)

		origin := config.viewForward()
		a = a.Sub(origin).Normalize()
		b = b.Sub(origin).Normalize()

		rotationDelta = mgl64.QuatRotate(math.Acos(a.Dot(b))*arcballAngleScale, a.Cross(b).Normalize())
	}

	s.state.lastPos = r.screenPos
	s.state.totalRotation = rotationDelta.Mul(s.state.totalRotation)

	return GizmoResult{
		Kind:         ResultArcball,
		ArcballDelta: rotationDelta,
		ArcballTotal: s.state.totalRotation,
	}, true
}

func (s *arcballSubGizmo) draw() GizmoDrawData {
	alpha := float32(0)
	if s.focused {
		alpha = 0.10
	}
	return drawCircle(&s.config, colorWhite.MulAlpha(alpha), arcballRadius(&s.config), true)
}

func arcballRadius(config *PreparedGizmoConfig) float64 {
	return float64(config.scaleFactor * (config.Visuals.GizmoSize + config.Visuals.StrokeWidth - 5))
}
