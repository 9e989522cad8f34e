package gizmo

import (
	"math"
	"math/bits"

	"github.com/go-gl/mathgl/mgl64"
)

// Default snapping increments.
const (
	// DefaultSnapAngle is the default snapping increment for rotation, in radians.
	DefaultSnapAngle = math.Pi / 32
	// DefaultSnapDistance is the default snapping increment for translation.
	DefaultSnapDistance = 0.1
	// DefaultSnapScale is the default snapping increment for scaling.
	DefaultSnapScale = 0.1
)

// GizmoMode is a single operation mode of a gizmo. Modes are bit flags so
// they can be combined into a GizmoModes set.
type GizmoMode uint32

const (
	// ModeRotateX rotates around the X axis.
	ModeRotateX GizmoMode = 1 << iota
	// ModeRotateY rotates around the Y axis.
	ModeRotateY
	// ModeRotateZ rotates around the Z axis.
	ModeRotateZ
	// ModeRotateView rotates around the view forward axis.
	ModeRotateView
	// ModeTranslateX translates along the X axis.
	ModeTranslateX
	// ModeTranslateY translates along the Y axis.
	ModeTranslateY
	// ModeTranslateZ translates along the Z axis.
	ModeTranslateZ
	// ModeTranslateXY translates along the XY plane.
	ModeTranslateXY
	// ModeTranslateXZ translates along the XZ plane.
	ModeTranslateXZ
	// ModeTranslateYZ translates along the YZ plane.
	ModeTranslateYZ
	// ModeTranslateView translates along the view plane.
	ModeTranslateView
	// ModeScaleX scales along the X axis.
	ModeScaleX
	// ModeScaleY scales along the Y axis.
	ModeScaleY
	// ModeScaleZ scales along the Z axis.
	ModeScaleZ
	// ModeScaleXY scales along the XY plane.
	ModeScaleXY
	// ModeScaleXZ scales along the XZ plane.
	ModeScaleXZ
	// ModeScaleYZ scales along the YZ plane.
	ModeScaleYZ
	// ModeScaleUniform scales uniformly in all directions.
	ModeScaleUniform
	// ModeArcball rotates freely based on cursor movement.
	ModeArcball
)

// ModeKind groups gizmo modes by the transformation they produce.
type ModeKind int

const (
	KindRotate ModeKind = iota
	KindTranslate
	KindScale
	KindArcball
)

// Kind returns the transformation group of the mode.
func (m GizmoMode) Kind() ModeKind {
	switch m {
	case ModeRotateX, ModeRotateY, ModeRotateZ, ModeRotateView:
		return KindRotate
	case ModeScaleX, ModeScaleY, ModeScaleZ, ModeScaleXY, ModeScaleXZ, ModeScaleYZ, ModeScaleUniform:
		return KindScale
	case ModeArcball:
		return KindArcball
	default:
		return KindTranslate
	}
}

func (m GizmoMode) isRotate() bool    { return m.Kind() == KindRotate }
func (m GizmoMode) isTranslate() bool { return m.Kind() == KindTranslate }
func (m GizmoMode) isScale() bool     { return m.Kind() == KindScale }

// Axes returns the world axes the mode acts on.
func (m GizmoMode) Axes() []GizmoDirection {
	switch m {
	case ModeRotateX, ModeTranslateX, ModeScaleX:
		return []GizmoDirection{DirectionX}
	case ModeRotateY, ModeTranslateY, ModeScaleY:
		return []GizmoDirection{DirectionY}
	case ModeRotateZ, ModeTranslateZ, ModeScaleZ:
		return []GizmoDirection{DirectionZ}
	case ModeRotateView, ModeTranslateView:
		return []GizmoDirection{DirectionView}
	case ModeTranslateXY, ModeScaleXY:
		return []GizmoDirection{DirectionX, DirectionY}
	case ModeTranslateXZ, ModeScaleXZ:
		return []GizmoDirection{DirectionX, DirectionZ}
	case ModeTranslateYZ, ModeScaleYZ:
		return []GizmoDirection{DirectionY, DirectionZ}
	default:
		return []GizmoDirection{DirectionX, DirectionY, DirectionZ}
	}
}

// GizmoModes is a set of enabled gizmo modes.
type GizmoModes uint32

// Mode sets commonly enabled together.
const (
	AllRotateModes = GizmoModes(ModeRotateX | ModeRotateY | ModeRotateZ | ModeRotateView)

	AllTranslateModes = GizmoModes(ModeTranslateX | ModeTranslateY | ModeTranslateZ |
		ModeTranslateXY | ModeTranslateXZ | ModeTranslateYZ | ModeTranslateView)

	AllScaleModes = GizmoModes(ModeScaleX | ModeScaleY | ModeScaleZ |
		ModeScaleXY | ModeScaleXZ | ModeScaleYZ | ModeScaleUniform)

	AllModes = AllRotateModes | AllTranslateModes | AllScaleModes | GizmoModes(ModeArcball)
)

// NewGizmoModes builds a mode set from individual modes.
func NewGizmoModes(modes ...GizmoMode) GizmoModes {
	var set GizmoModes
	for _, m := range modes {
		set |= GizmoModes(m)
	}
	return set
}

// Contains reports whether the set includes the given mode.
func (m GizmoModes) Contains(mode GizmoMode) bool {
	return m&GizmoModes(mode) != 0
}

// Count returns the number of modes in the set.
func (m GizmoModes) Count() int {
	return bits.OnesCount32(uint32(m))
}

// GizmoDirection is the axis or plane a subgizmo acts on.
type GizmoDirection int

const (
	// DirectionX points in the X direction.
	DirectionX GizmoDirection = iota
	// DirectionY points in the Y direction.
	DirectionY
	// DirectionZ points in the Z direction.
	DirectionZ
	// DirectionView points in the view forward direction.
	DirectionView
)

// GizmoOrientation selects the coordinate frame of the transformation axes.
type GizmoOrientation int

const (
	// OrientationGlobal aligns transformation axes to world space.
	OrientationGlobal GizmoOrientation = iota
	// OrientationLocal aligns transformation axes to the last target's orientation.
	OrientationLocal
)

// PivotPoint is the point in space around which all rotations are centered.
type PivotPoint int

const (
	// PivotMedianPoint pivots around the median point of all targets.
	PivotMedianPoint PivotPoint = iota
	// PivotIndividualOrigins pivots each target around its own origin.
	PivotIndividualOrigins
)

// GizmoConfig defines how the gizmo is drawn and how it can be interacted
// with. It is treated as immutable for the duration of a frame.
type GizmoConfig struct {
	// ViewMatrix aligns the gizmo with the camera's viewpoint.
	ViewMatrix mgl64.Mat4
	// ProjectionMatrix determines how the gizmo is projected onto the screen.
	ProjectionMatrix mgl64.Mat4
	// Viewport is the screen area where the gizmo is displayed.
	Viewport Rect
	// Modes are the enabled operation modes.
	Modes GizmoModes
	// ModeOverride, when non-zero, forces a single mode active and disables
	// all the others.
	ModeOverride GizmoMode
	// Orientation selects global or local transformation axes.
	Orientation GizmoOrientation
	// PivotPoint is the pivot policy for rotations.
	PivotPoint PivotPoint
	// Snapping toggles snapping to the increments below.
	Snapping bool
	// SnapAngle is the rotation snapping increment, in radians.
	SnapAngle float64
	// SnapDistance is the translation snapping increment.
	SnapDistance float64
	// SnapScale is the scaling snapping increment.
	SnapScale float64
	// Visuals controls the gizmo appearance.
	Visuals GizmoVisuals
	// PixelsPerPoint is the ratio of physical pixels to logical points.
	PixelsPerPoint float32
	// CursorRemap optionally remaps cursor positions from the given
	// rectangle onto the viewport. Useful when the viewport is drawn
	// scaled inside another surface.
	CursorRemap *Rect
}

// DefaultGizmoConfig returns a configuration with all modes enabled and the
// default visual style. The viewport must be set by the caller before use.
func DefaultGizmoConfig() GizmoConfig {
	return GizmoConfig{
		ViewMatrix:       mgl64.Ident4(),
		ProjectionMatrix: mgl64.Ident4(),
		Modes:            AllModes,
		Orientation:      OrientationGlobal,
		PivotPoint:       PivotMedianPoint,
		SnapAngle:        DefaultSnapAngle,
		SnapDistance:     DefaultSnapDistance,
		SnapScale:        DefaultSnapScale,
		Visuals:          DefaultVisuals(),
		PixelsPerPoint:   1,
	}
}

// viewForward is the forward vector of the view camera.
func (c *GizmoConfig) viewForward() mgl64.Vec3 {
	return c.ViewMatrix.Row(2).Vec3()
}

// viewUp is the up vector of the view camera.
func (c *GizmoConfig) viewUp() mgl64.Vec3 {
	return c.ViewMatrix.Row(1).Vec3()
}

// viewRight is the right vector of the view camera.
func (c *GizmoConfig) viewRight() mgl64.Vec3 {
	return c.ViewMatrix.Row(0).Vec3()
}

func (c *GizmoConfig) localSpace() bool {
	return c.Orientation == OrientationLocal
}

// enabledModes resolves the effective mode set, honoring the override.
func (c *GizmoConfig) enabledModes() GizmoModes {
	if c.ModeOverride != 0 {
		return GizmoModes(c.ModeOverride)
	}
	return c.Modes
}

// modesChanged reports whether the effective mode set differs from the
// other config. This is the trigger for rebuilding the subgizmo set.
func (c *GizmoConfig) modesChanged(other *GizmoConfig) bool {
	return (c.Modes != other.Modes && c.ModeOverride == 0) ||
		c.ModeOverride != other.ModeOverride
}

// ValidateSingleCamera reports whether two configs submitted for the same
// frame agree on the camera. Integrations that drive several gizmos from
// one camera can use it to catch a stale view or projection matrix; the
// mismatch is logged and the frame should be skipped rather than rendered
// with conflicting cameras.
func ValidateSingleCamera(logger Logger, a, b *GizmoConfig) bool {
	if a.ViewMatrix == b.ViewMatrix &&
		a.ProjectionMatrix == b.ProjectionMatrix &&
		a.Viewport == b.Viewport {
		return true
	}
	if logger != nil {
		logger.Warnf("conflicting camera configurations submitted for the same frame")
	}
	return false
}

// PreparedGizmoConfig is a GizmoConfig together with the per-frame
// quantities derived from it and the current target transforms. It must be
// recomputed whenever either changes.
type PreparedGizmoConfig struct {
	GizmoConfig
	// rotation, translation and scale of the gizmo's own pivot transform.
	rotation    mgl64.Quat
	translation mgl64.Vec3
	scale       mgl64.Vec3
	// viewProjection is projection * view.
	viewProjection mgl64.Mat4
	// modelMatrix is the pivot transform as a matrix.
	modelMatrix mgl64.Mat4
	// mvp is viewProjection * modelMatrix.
	mvp mgl64.Mat4
	// scaleFactor normalizes the on-screen gizmo size regardless of the
	// distance between the camera and the gizmo.
	scaleFactor float32
	// focusDistance is the screen-space pick tolerance.
	focusDistance float32
	// leftHanded is true for left-handed projection matrices.
	leftHanded bool
	// eyeToModelDir points from the camera towards the gizmo, used for
	// view-dependent visibility fading.
	eyeToModelDir mgl64.Vec3
}

func newPreparedGizmoConfig() PreparedGizmoConfig {
	return PreparedGizmoConfig{
		GizmoConfig: DefaultGizmoConfig(),
		rotation:    mgl64.QuatIdent(),
		scale:       mgl64.Vec3{1, 1, 1},
	}
}

// updateForConfig stores a new raw config and rederives the combined
// matrices and handedness. The pivot transform is kept as-is.
func (p *PreparedGizmoConfig) updateForConfig(config GizmoConfig) {
	viewProjection := config.ProjectionMatrix.Mul4(config.ViewMatrix)

	pm := config.ProjectionMatrix
	var leftHanded bool
	if pm[11] == 0 {
		leftHanded = pm[10] > 0
	} else {
		leftHanded = pm[11] > 0
	}

	p.GizmoConfig = config
	p.viewProjection = viewProjection
	p.leftHanded = leftHanded

	p.updateTransform(p.asTransform())
}

// updateForTargets derives the pivot transform from the target set:
// translation and scale are the means over all targets, rotation is the
// rotation of the last target. Averaging rotations is ill-defined, so
// last-wins is the documented policy.
func (p *PreparedGizmoConfig) updateForTargets(targets []Transform) {
	scale := mgl64.Vec3{}
	translation := mgl64.Vec3{}
	rotation := mgl64.QuatIdent()

	for _, target := range targets {
		scale = scale.Add(target.Scale)
		translation = translation.Add(target.Translation)
		rotation = target.Rotation
	}

	if len(targets) == 0 {
		scale = mgl64.Vec3{1, 1, 1}
	} else {
		n := float64(len(targets))
		translation = translation.Mul(1 / n)
		scale = scale.Mul(1 / n)
	}

	p.updateTransform(Transform{
		Scale:       scale,
		Rotation:    rotation,
		Translation: translation,
	})
}

// updateTransform sets the pivot transform and recomputes everything that
// depends on it.
func (p *PreparedGizmoConfig) updateTransform(transform Transform) {
	p.translation = transform.Translation
	p.rotation = transform.Rotation
	p.scale = transform.Scale
	p.modelMatrix = transform.Mat4()
	p.mvp = p.viewProjection.Mul4(p.modelMatrix)

	p.scaleFactor = float32(p.mvp[15]) /
		float32(p.ProjectionMatrix[0]) /
		p.Viewport.Width() * 2

	gizmoScreenPos, _ := worldToScreen(p.Viewport, p.mvp, p.translation)

	gizmoViewNear := screenToWorld(p.Viewport, p.viewProjection.Inv(), gizmoScreenPos, -1)

	p.focusDistance = p.scaleFactor * (p.Visuals.StrokeWidth/2 + 5)

	eye := gizmoViewNear.Sub(p.translation)
	if l := eye.Len(); l > 1e-12 {
		eye = eye.Mul(1 / l)
	} else {
		eye = mgl64.Vec3{}
	}
	p.eyeToModelDir = eye
}

// asTransform returns the gizmo's own pivot transform.
func (p *PreparedGizmoConfig) asTransform() Transform {
	return Transform{
		Scale:       p.scale,
		Rotation:    p.rotation,
		Translation: p.translation,
	}
}
