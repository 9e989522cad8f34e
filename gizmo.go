package gizmo

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Transform is a decomposed affine transformation of a gizmo target.
type Transform struct {
	Scale       mgl64.Vec3
	Rotation    mgl64.Quat
	Translation mgl64.Vec3
}

// NewTransform creates a transform from scale, rotation and translation.
func NewTransform(scale mgl64.Vec3, rotation mgl64.Quat, translation mgl64.Vec3) Transform {
	return Transform{Scale: scale, Rotation: rotation, Translation: translation}
}

// IdentityTransform returns a transform that maps a point to itself.
func IdentityTransform() Transform {
	return Transform{
		Scale:    mgl64.Vec3{1, 1, 1},
		Rotation: mgl64.QuatIdent(),
	}
}

// Mat4 composes the transform into a single matrix, scale first.
func (t Transform) Mat4() mgl64.Mat4 {
	return mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// GizmoInteraction carries the per-frame pointer state the gizmo reacts to.
type GizmoInteraction struct {
	// CursorPos is the cursor position in viewport coordinates, unless
	// GizmoConfig.CursorRemap maps it from another rectangle.
	CursorPos mgl32.Vec2
	// Hovered tells whether the gizmo may react to the cursor at all.
	// Another UI element may be covering the gizmo.
	Hovered bool
	// DragStarted is set on the frame the primary button was pressed.
	DragStarted bool
	// Dragging is set while the primary button is held.
	Dragging bool
}

// GizmoResultKind tells which interpretation of a GizmoResult is valid.
type GizmoResultKind uint8

const (
	ResultRotation GizmoResultKind = iota + 1
	ResultTranslation
	ResultScale
	ResultArcball
)

// GizmoResult describes one frame of an active gizmo interaction.
// Only the fields matching Kind are meaningful.
type GizmoResult struct {
	Kind GizmoResultKind

	// Rotation results.
	RotationAxis  mgl64.Vec3
	RotationDelta float64
	RotationTotal float64
	IsViewAxis    bool

	// Translation results.
	TranslationDelta mgl64.Vec3
	TranslationTotal mgl64.Vec3

	// Scale results.
	ScaleTotal mgl64.Vec3

	// Arcball results.
	ArcballDelta mgl64.Quat
	ArcballTotal mgl64.Quat
}

// GizmoDrawData holds tessellated triangles of the gizmo in viewport
// coordinates, ready to be fed to any 2D renderer.
type GizmoDrawData struct {
	// Vertices in viewport space.
	Vertices [][2]float32
	// Linear RGBA colors, one per vertex.
	Colors [][4]float32
	// Indices into the vertex data, three per triangle.
	Indices []uint32
}

// Add appends another batch of draw data, rebasing its indices.
func (d GizmoDrawData) Add(rhs GizmoDrawData) GizmoDrawData {
	indexOffset := uint32(len(d.Vertices))
	d.Vertices = append(d.Vertices, rhs.Vertices...)
	d.Colors = append(d.Colors, rhs.Colors...)
	for _, idx := range rhs.Indices {
		d.Indices = append(d.Indices, indexOffset+idx)
	}
	return d
}

// ray is a world space picking ray together with the cursor position it
// was cast from.
type ray struct {
	screenPos mgl32.Vec2
	origin    mgl64.Vec3
	direction mgl64.Vec3
}

// Gizmo is a 3D transformation gizmo. It consumes pointer interactions
// and target transforms, and produces updated transforms plus 2D draw
// data for the current frame.
type Gizmo struct {
	id     uuid.UUID
	logger Logger

	config    PreparedGizmoConfig
	subGizmos []subGizmo

	activeID  uint64
	hasActive bool

	targetStartTransforms []Transform
	gizmoStartTransform   Transform

	warnedInvalidViewport bool
}

// NewGizmo creates a gizmo with the given configuration.
func NewGizmo(config GizmoConfig) *Gizmo {
	g := &Gizmo{
		id:     uuid.New(),
		logger: defaultLogger(),
		config: newPreparedGizmoConfig(),
	}
	g.UpdateConfig(config)
	return g
}

// ID returns the gizmo's unique instance id, as it appears in log lines.
func (g *Gizmo) ID() uuid.UUID {
	return g.id
}

// SetLogger replaces the gizmo's logger. A nil logger disables logging.
func (g *Gizmo) SetLogger(logger Logger) {
	if logger == nil {
		logger = NewNopLogger()
	}
	g.logger = logger
}

// Config returns the configuration currently in use.
func (g *Gizmo) Config() GizmoConfig {
	return g.config.GizmoConfig
}

// UpdateConfig applies a new configuration. Changing the enabled modes
// rebuilds the handles and cancels any active interaction.
func (g *Gizmo) UpdateConfig(config GizmoConfig) {
	if config.modesChanged(&g.config.GizmoConfig) {
		if g.logger.DebugEnabled() {
			g.logger.Debugf("gizmo %s: modes changed, rebuilding handles", g.id)
		}
		g.subGizmos = g.subGizmos[:0]
		g.activeID = 0
		g.hasActive = false
	}

	g.config.updateForConfig(config)

	if len(g.subGizmos) == 0 {
		g.addRotation()
		g.addTranslation()
		g.addScale()
	}
}

// IsFocused reports whether any handle was focused by the latest Update.
func (g *Gizmo) IsFocused() bool {
	for _, s := range g.subGizmos {
		if s.isFocused() {
			return true
		}
	}
	return false
}

// Update advances the gizmo by one frame of interaction.
//
// The returned transforms are the targets with the current interaction
// applied, positionally matching the input. The boolean is true only
// while a handle is being dragged.
func (g *Gizmo) Update(interaction GizmoInteraction, targets []Transform) (GizmoResult, []Transform, bool) {
	if !g.config.Viewport.IsFinite() {
		if !g.warnedInvalidViewport {
			g.logger.Warnf("gizmo %s: viewport %v is not usable, ignoring interactions", g.id, g.config.Viewport)
			g.warnedInvalidViewport = true
		}
		return GizmoResult{}, nil, false
	}
	g.warnedInvalidViewport = false

	// Follow the targets unless an interaction is in progress.
	if !g.hasActive {
		g.config.updateForTargets(targets)
	}

	for _, s := range g.subGizmos {
		s.updateConfig(g.config)
		s.setFocused(false)
	}

	forceActive := g.config.ModeOverride != 0

	pointerRay := g.pointerRay(interaction.CursorPos)

	// With no active handle, find the one under the cursor, if any.
	if !g.hasActive && interaction.Hovered {
		if picked := g.pickSubGizmo(pointerRay); picked != nil {
			picked.setFocused(true)

			if interaction.DragStarted || forceActive {
				g.activeID = picked.id()
				g.hasActive = true
				g.targetStartTransforms = append([]Transform(nil), targets...)
				g.gizmoStartTransform = g.config.asTransform()
				if g.logger.DebugEnabled() {
					g.logger.Debugf("gizmo %s: drag started on handle %x", g.id, picked.id())
				}
			}
		}
	}

	var result GizmoResult
	haveResult := false

	if active := g.activeSubGizmo(); active != nil {
		if interaction.Dragging || forceActive {
			active.setActive(true)
			active.setFocused(true)
			result, haveResult = active.update(pointerRay)
		} else {
			active.setActive(false)
			active.setFocused(false)
			g.activeID = 0
			g.hasActive = false
			if g.logger.DebugEnabled() {
				g.logger.Debugf("gizmo %s: drag ended", g.id)
			}
		}
	}

	if !haveResult {
		g.config.updateForTargets(targets)
		for _, s := range g.subGizmos {
			s.updateConfig(g.config)
		}
		return GizmoResult{}, nil, false
	}

	g.updateConfigWithResult(result)

	updated := g.updateTransformsWithResult(result, targets, g.targetStartTransforms)

	return result, updated, true
}

// Draw returns the draw data of the latest gizmo interaction. During an
// active drag, only the dragged handle is drawn.
func (g *Gizmo) Draw() GizmoDrawData {
	if !g.config.Viewport.IsFinite() {
		return GizmoDrawData{}
	}

	var dd GizmoDrawData
	for _, s := range g.subGizmos {
		if !g.hasActive || s.isActive() {
			dd = dd.Add(s.draw())
		}
	}
	return dd
}

func (g *Gizmo) activeSubGizmo() subGizmo {
	if !g.hasActive {
		return nil
	}
	for _, s := range g.subGizmos {
		if s.id() == g.activeID {
			return s
		}
	}
	return nil
}

func (g *Gizmo) updateTransformsWithResult(result GizmoResult, transforms, startTransforms []Transform) []Transform {
	n := len(transforms)
	if len(startTransforms) < n {
		n = len(startTransforms)
	}

	updated := make([]Transform, 0, n)
	for i := 0; i < n; i++ {
		transform := transforms[i]
		start := startTransforms[i]

		switch result.Kind {
		case ResultRotation:
			updated = append(updated, g.updateRotation(transform, result.RotationAxis, result.RotationDelta, result.IsViewAxis))
		case ResultTranslation:
			updated = append(updated, g.updateTranslation(result.TranslationDelta, transform, start))
		case ResultScale:
			updated = append(updated, g.updateScale(transform, start, result.ScaleTotal))
		case ResultArcball:
			updated = append(updated, g.updateRotationQuat(transform, result.ArcballDelta))
		default:
			updated = append(updated, transform)
		}
	}
	return updated
}

func (g *Gizmo) updateRotation(transform Transform, axis mgl64.Vec3, delta float64, isViewAxis bool) Transform {
	if g.config.Orientation == OrientationLocal && !isViewAxis {
		axis = transform.Rotation.Rotate(axis).Normalize()
	}

	return g.updateRotationQuat(transform, mgl64.QuatRotate(delta, axis))
}

func (g *Gizmo) updateRotationQuat(transform Transform, delta mgl64.Quat) Transform {
	translation := transform.Translation
	if g.config.PivotPoint == PivotMedianPoint {
		// Orbit the target around the median point.
		translation = g.config.translation.
			Add(delta.Rotate(transform.Translation.Sub(g.config.translation)))
	}

	return Transform{
		Scale:       transform.Scale,
		Rotation:    delta.Mul(transform.Rotation).Normalize(),
		Translation: translation,
	}
}

func (g *Gizmo) updateTranslation(delta mgl64.Vec3, transform, start Transform) Transform {
	if g.config.Orientation == OrientationLocal {
		delta = start.Rotation.Rotate(delta)
	}

	return Transform{
		Scale:       start.Scale,
		Rotation:    start.Rotation,
		Translation: transform.Translation.Add(delta),
	}
}

func (g *Gizmo) updateScale(transform, start Transform, scale mgl64.Vec3) Transform {
	var newScale mgl64.Vec3
	if g.config.Orientation == OrientationGlobal {
		scaled := mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()).Mul4(start.Mat4())
		sx, sy, sz := mgl64.Extract3DScale(scaled)
		newScale = mgl64.Vec3{sx, sy, sz}
	} else {
		newScale = mgl64.Vec3{
			start.Scale.X() * scale.X(),
			start.Scale.Y() * scale.Y(),
			start.Scale.Z() * scale.Z(),
		}
	}

	transform.Scale = newScale
	return transform
}

func (g *Gizmo) updateConfigWithResult(result GizmoResult) {
	newTransform := g.updateTransformsWithResult(
		result,
		[]Transform{g.config.asTransform()},
		[]Transform{g.gizmoStartTransform},
	)[0]

	g.config.updateTransform(newTransform)
}

// pickSubGizmo returns the handle closest to the given world space ray.
func (g *Gizmo) pickSubGizmo(r ray) subGizmo {
	// With an overridden mode there is only one handle to choose from,
	// but pick still runs to initialize its drag state.
	if g.config.ModeOverride != 0 {
		if len(g.subGizmos) == 0 {
			return nil
		}
		first := g.subGizmos[0]
		first.pick(r)
		return first
	}

	var closest subGizmo
	var closestT float64
	for _, s := range g.subGizmos {
		t, picked := s.pick(r)
		if !picked {
			continue
		}
		if closest == nil || t < closestT {
			closest = s
			closestT = t
		}
	}
	return closest
}

func (g *Gizmo) addRotation() {
	modes := g.config.enabledModes()

	if modes.Contains(ModeRotateX) {
		g.subGizmos = append(g.subGizmos, newRotationSubGizmo(g.config, DirectionX))
	}
	if modes.Contains(ModeRotateY) {
		g.subGizmos = append(g.subGizmos, newRotationSubGizmo(g.config, DirectionY))
	}
	if modes.Contains(ModeRotateZ) {
		g.subGizmos = append(g.subGizmos, newRotationSubGizmo(g.config, DirectionZ))
	}
	if modes.Contains(ModeRotateView) {
		g.subGizmos = append(g.subGizmos, newRotationSubGizmo(g.config, DirectionView))
	}
	if modes.Contains(ModeArcball) {
		g.subGizmos = append(g.subGizmos, newArcballSubGizmo(g.config))
	}
}

func (g *Gizmo) addTranslation() {
	modes := g.config.enabledModes()

	if modes.Contains(ModeTranslateX) {
		g.subGizmos = append(g.subGizmos, newTranslationSubGizmo(g.config, ModeTranslateX, DirectionX, kindAxis))
	}
	if modes.Contains(ModeTranslateY) {
		g.subGizmos = append(g.subGizmos, newTranslationSubGizmo(g.config, ModeTranslateY, DirectionY, kindAxis))
	}
	if modes.Contains(ModeTranslateZ) {
		g.subGizmos = append(g.subGizmos, newTranslationSubGizmo(g.config, ModeTranslateZ, DirectionZ, kindAxis))
	}
	if modes.Contains(ModeTranslateView) {
		g.subGizmos = append(g.subGizmos, newTranslationSubGizmo(g.config, ModeTranslateView, DirectionView, kindPlane))
	}
	if modes.Contains(ModeTranslateXY) {
		g.subGizmos = append(g.subGizmos, newTranslationSubGizmo(g.config, ModeTranslateXY, DirectionX, kindPlane))
	}
	if modes.Contains(ModeTranslateXZ) {
		g.subGizmos = append(g.subGizmos, newTranslationSubGizmo(g.config, ModeTranslateXZ, DirectionY, kindPlane))
	}
	if modes.Contains(ModeTranslateYZ) {
		g.subGizmos = append(g.subGizmos, newTranslationSubGizmo(g.config, ModeTranslateYZ, DirectionZ, kindPlane))
	}
}

func (g *Gizmo) addScale() {
	modes := g.config.enabledModes()

	if modes.Contains(ModeScaleX) {
		g.subGizmos = append(g.subGizmos, newScaleSubGizmo(g.config, ModeScaleX, DirectionX, kindAxis))
	}
	if modes.Contains(ModeScaleY) {
		g.subGizmos = append(g.subGizmos, newScaleSubGizmo(g.config, ModeScaleY, DirectionY, kindAxis))
	}
	if modes.Contains(ModeScaleZ) {
		g.subGizmos = append(g.subGizmos, newScaleSubGizmo(g.config, ModeScaleZ, DirectionZ, kindAxis))
	}
	// The uniform scale circle sits on the same radius as the view
	// rotation arc, so it yields when both are enabled.
	if modes.Contains(ModeScaleUniform) && !modes.Contains(ModeRotateView) {
		g.subGizmos = append(g.subGizmos, newScaleSubGizmo(g.config, ModeScaleUniform, DirectionView, kindPlane))
	}
	// Plane scale handles share their quads with plane translation.
	if modes.Contains(ModeScaleXY) && !modes.Contains(ModeTranslateXY) {
		g.subGizmos = append(g.subGizmos, newScaleSubGizmo(g.config, ModeScaleXY, DirectionX, kindPlane))
	}
	if modes.Contains(ModeScaleXZ) && !modes.Contains(ModeTranslateXZ) {
		g.subGizmos = append(g.subGizmos, newScaleSubGizmo(g.config, ModeScaleXZ, DirectionY, kindPlane))
	}
	if modes.Contains(ModeScaleYZ) && !modes.Contains(ModeTranslateYZ) {
		g.subGizmos = append(g.subGizmos, newScaleSubGizmo(g.config, ModeScaleYZ, DirectionZ, kindPlane))
	}
}

// pointerRay casts a world space ray through the given cursor position.
func (g *Gizmo) pointerRay(screenPos mgl32.Vec2) ray {
	if remap := g.config.CursorRemap; remap != nil && remap.Width() > 0 && remap.Height() > 0 {
		viewport := g.config.Viewport
		screenPos = mgl32.Vec2{
			viewport.Min.X() + (screenPos.X()-remap.Min.X())/remap.Width()*viewport.Width(),
			viewport.Min.Y() + (screenPos.Y()-remap.Min.Y())/remap.Height()*viewport.Height(),
		}
	}

	mat := g.config.viewProjection.Inv()
	origin := screenToWorld(g.config.Viewport, mat, screenPos, -1)
	target := screenToWorld(g.config.Viewport, mat, screenPos, 1)

	return ray{
		screenPos: screenPos,
		origin:    origin,
		direction: target.Sub(origin).Normalize(),
	}
}
