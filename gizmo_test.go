package gizmo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCameraConfig is a perspective camera at (0, 0, 10) looking at the
// origin, with an 800x600 viewport.
func testCameraConfig() GizmoConfig {
	cfg := DefaultGizmoConfig()
	cfg.ViewMatrix = mgl64.LookAtV(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	cfg.ProjectionMatrix = mgl64.Perspective(mgl64.DegToRad(60), 800.0/600.0, 0.1, 1000)
	cfg.Viewport = NewRect(0, 0, 800, 600)
	return cfg
}

func testPreparedConfig() PreparedGizmoConfig {
	p := newPreparedGizmoConfig()
	p.updateForConfig(testCameraConfig())
	p.updateForTargets([]Transform{IdentityTransform()})
	return p
}

// testRay casts a ray straight down the view axis through a world point.
func testRayThrough(worldPos mgl64.Vec3, config *PreparedGizmoConfig) ray {
	screen, _ := worldToScreen(config.Viewport, config.viewProjection, worldPos)
	inv := config.viewProjection.Inv()
	origin := screenToWorld(config.Viewport, inv, screen, -1)
	target := screenToWorld(config.Viewport, inv, screen, 1)
	return ray{
		screenPos: screen,
		origin:    origin,
		direction: target.Sub(origin).Normalize(),
	}
}

func TestNewGizmoBuildsAllHandles(t *testing.T) {
	g := NewGizmo(testCameraConfig())

	// 4 rotation arcs, the arcball, 3 arrows and 4 planes for translation,
	// 3 arrows for scale. Uniform scale yields to view rotation and the
	// scale planes yield to the translation planes.
	assert.Len(t, g.subGizmos, 15)
}

func TestNewGizmoRespectsModeSet(t *testing.T) {
	cfg := testCameraConfig()
	cfg.Modes = NewGizmoModes(ModeTranslateX, ModeTranslateY)

	g := NewGizmo(cfg)
	assert.Len(t, g.subGizmos, 2)
}

func TestScalePlanesEnabledWithoutTranslatePlanes(t *testing.T) {
	cfg := testCameraConfig()
	cfg.Modes = AllScaleModes

	g := NewGizmo(cfg)
	// 3 axes, uniform, and the 3 planes.
	assert.Len(t, g.subGizmos, 7)
}

func TestUpdateConfigRebuildsOnModeChange(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	g.hasActive = true
	g.activeID = g.subGizmos[0].id()

	cfg := testCameraConfig()
	cfg.Modes = NewGizmoModes(ModeRotateZ)
	g.UpdateConfig(cfg)

	assert.False(t, g.hasActive, "mode change should cancel the active interaction")
	assert.Len(t, g.subGizmos, 1)
}

func TestUpdateConfigKeepsHandlesWhenModesUnchanged(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	before := g.subGizmos

	cfg := testCameraConfig()
	cfg.Snapping = true
	g.UpdateConfig(cfg)

	assert.Equal(t, len(before), len(g.subGizmos))
}

func TestUpdateWithoutInteractionIsIdempotent(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	targets := []Transform{
		NewTransform(mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent(), mgl64.Vec3{1, 2, 3}),
	}
	interaction := GizmoInteraction{CursorPos: mgl32.Vec2{0, 0}}

	_, _, ok := g.Update(interaction, targets)
	require.False(t, ok)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, g.config.translation, "gizmo should follow the target")
	first := g.Draw()

	_, _, ok = g.Update(interaction, targets)
	require.False(t, ok)
	second := g.Draw()

	assert.Equal(t, len(first.Vertices), len(second.Vertices))
	assert.Equal(t, len(first.Indices), len(second.Indices))
}

func TestUpdateInvalidViewport(t *testing.T) {
	cfg := testCameraConfig()
	cfg.Viewport = NewRect(0, 0, 0, 0)

	g := NewGizmo(cfg)
	_, _, ok := g.Update(GizmoInteraction{Hovered: true, Dragging: true}, []Transform{IdentityTransform()})

	assert.False(t, ok)
	assert.Empty(t, g.Draw().Vertices)
}

func TestModeOverrideForcesDrag(t *testing.T) {
	cfg := testCameraConfig()
	cfg.ModeOverride = ModeTranslateView

	g := NewGizmo(cfg)
	require.Len(t, g.subGizmos, 1)

	targets := []Transform{IdentityTransform()}
	center := mgl32.Vec2{400, 300}

	// First frame anchors the drag at the viewport center.
	_, _, ok := g.Update(GizmoInteraction{CursorPos: center, Hovered: true}, targets)
	require.True(t, ok)
	require.True(t, g.hasActive)

	// Second frame drags 50 px to the right.
	result, updated, ok := g.Update(GizmoInteraction{CursorPos: mgl32.Vec2{450, 300}, Hovered: true}, targets)
	require.True(t, ok)
	require.Equal(t, ResultTranslation, result.Kind)

	assert.Greater(t, result.TranslationTotal.X(), 0.0, "dragging right should translate towards +X")
	assert.InDelta(t, 0, result.TranslationTotal.Z(), 1e-6, "view plane translation should not leave the XY plane")

	require.Len(t, updated, 1)
	assert.InDelta(t, result.TranslationTotal.X(), updated[0].Translation.X(), 1e-9)
}

func TestOnlyActiveHandleDrawnDuringDrag(t *testing.T) {
	cfg := testCameraConfig()
	cfg.ModeOverride = ModeTranslateView

	g := NewGizmo(cfg)
	targets := []Transform{IdentityTransform()}

	_, _, ok := g.Update(GizmoInteraction{CursorPos: mgl32.Vec2{400, 300}, Hovered: true}, targets)
	require.True(t, ok)

	activeCount := 0
	for _, s := range g.subGizmos {
		if s.isActive() {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
	assert.True(t, g.IsFocused())
}

func TestArcballDrag(t *testing.T) {
	cfg := testCameraConfig()
	cfg.ModeOverride = ModeArcball

	g := NewGizmo(cfg)
	targets := []Transform{IdentityTransform()}

	_, _, ok := g.Update(GizmoInteraction{CursorPos: mgl32.Vec2{400, 300}, Hovered: true}, targets)
	require.True(t, ok)

	result, updated, ok := g.Update(GizmoInteraction{CursorPos: mgl32.Vec2{420, 310}, Hovered: true}, targets)
	require.True(t, ok)
	require.Equal(t, ResultArcball, result.Kind)

	assert.Less(t, math.Abs(result.ArcballTotal.W), 1.0-1e-6, "cursor movement should produce a rotation")
	require.Len(t, updated, 1)
	assert.InDelta(t, 1, updated[0].Rotation.Len(), 1e-9, "rotation should stay normalized")
}

func TestMedianPivotRotation(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	g.config.PivotPoint = PivotMedianPoint
	g.config.translation = mgl64.Vec3{1, 0, 0}

	// Half a turn around Z moves a target at the origin to the opposite
	// side of the pivot.
	got := g.updateRotationQuat(IdentityTransform(), mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}))

	assert.InDelta(t, 2, got.Translation.X(), 1e-9)
	assert.InDelta(t, 0, got.Translation.Y(), 1e-9)
	assert.InDelta(t, 0, got.Translation.Z(), 1e-9)
}

func TestIndividualOriginsPivot(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	g.config.PivotPoint = PivotIndividualOrigins
	g.config.translation = mgl64.Vec3{1, 0, 0}

	start := NewTransform(mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent(), mgl64.Vec3{5, 0, 0})
	got := g.updateRotationQuat(start, mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}))

	assert.Equal(t, start.Translation, got.Translation, "individual origins should keep positions fixed")
}

func TestLocalTranslationFollowsTargetRotation(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	g.config.Orientation = OrientationLocal

	// Target rotated 90 degrees around Z: a local +X delta becomes +Y.
	start := NewTransform(mgl64.Vec3{1, 1, 1}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{})
	got := g.updateTranslation(mgl64.Vec3{1, 0, 0}, start, start)

	assert.InDelta(t, 0, got.Translation.X(), 1e-9)
	assert.InDelta(t, 1, got.Translation.Y(), 1e-9)
}

func TestGlobalScaleOnRotatedTarget(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	g.config.Orientation = OrientationGlobal

	// Scaling 2x along world X on a target rotated 90 degrees around Z
	// stretches the target's local Y axis.
	start := NewTransform(mgl64.Vec3{1, 1, 1}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{})
	got := g.updateScale(start, start, mgl64.Vec3{2, 1, 1})

	assert.InDelta(t, 1, got.Scale.X(), 1e-9)
	assert.InDelta(t, 2, got.Scale.Y(), 1e-9)
	assert.InDelta(t, 1, got.Scale.Z(), 1e-9)
}

func TestLocalScaleComponentwise(t *testing.T) {
	g := NewGizmo(testCameraConfig())
	g.config.Orientation = OrientationLocal

	start := NewTransform(mgl64.Vec3{2, 3, 4}, mgl64.QuatIdent(), mgl64.Vec3{})
	got := g.updateScale(start, start, mgl64.Vec3{2, 1, 0.5})

	assert.Equal(t, mgl64.Vec3{4, 3, 2}, got.Scale)
}

func TestUpdateTransformsZipsByIndex(t *testing.T) {
	g := NewGizmo(testCameraConfig())

	result := GizmoResult{Kind: ResultTranslation, TranslationDelta: mgl64.Vec3{1, 0, 0}}
	targets := []Transform{IdentityTransform(), IdentityTransform(), IdentityTransform()}
	starts := []Transform{IdentityTransform(), IdentityTransform()}

	updated := g.updateTransformsWithResult(result, targets, starts)
	assert.Len(t, updated, 2, "targets without a drag-start snapshot are dropped")
}

func TestCursorRemap(t *testing.T) {
	cfg := testCameraConfig()
	remap := NewRect(0, 0, 1600, 1200)
	cfg.CursorRemap = &remap

	g := NewGizmo(cfg)

	r := g.pointerRay(mgl32.Vec2{800, 600})
	assert.InDelta(t, 400, float64(r.screenPos.X()), 1e-3)
	assert.InDelta(t, 300, float64(r.screenPos.Y()), 1e-3)
}

func TestGizmoTransformFollowsInteraction(t *testing.T) {
	cfg := testCameraConfig()
	cfg.ModeOverride = ModeTranslateView

	g := NewGizmo(cfg)
	targets := []Transform{IdentityTransform()}

	_, _, ok := g.Update(GizmoInteraction{CursorPos: mgl32.Vec2{400, 300}, Hovered: true}, targets)
	require.True(t, ok)
	result, _, ok := g.Update(GizmoInteraction{CursorPos: mgl32.Vec2{500, 300}, Hovered: true}, targets)
	require.True(t, ok)

	// The gizmo's own pivot moves with the interaction so the handles
	// track the dragged targets.
	assert.InDelta(t, result.TranslationTotal.X(), g.config.translation.X(), 1e-9)
}

func TestGizmoIDStableAcrossConfigUpdates(t *testing.T) {
	g := NewGizmo(testCameraConfig())

	id := g.ID()
	assert.NotEqual(t, uuid.Nil, id)

	// Rebuilding the handles must not change the instance identity that
	// log lines are correlated by.
	cfg := g.Config()
	cfg.Modes = NewGizmoModes(ModeTranslateX)
	g.UpdateConfig(cfg)
	assert.Equal(t, id, g.ID())

	assert.NotEqual(t, id, NewGizmo(testCameraConfig()).ID())
}
