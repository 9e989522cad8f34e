package gizmo

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGB returns an opaque color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
}

var (
	colorWhite       = Color{1, 1, 1, 1}
	colorTransparent = Color{}
)

// MulAlpha scales the alpha channel, leaving the color channels untouched.
func (c Color) MulAlpha(f float32) Color {
	c.A *= f
	return c
}

func (c Color) array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// GizmoVisuals controls the visual style of the gizmo.
type GizmoVisuals struct {
	// XColor, YColor and ZColor are the axis handle colors.
	XColor Color
	YColor Color
	ZColor Color
	// SColor is the color of the view-axis handles.
	SColor Color
	// InactiveAlpha is the handle alpha when not highlighted.
	InactiveAlpha float32
	// HighlightAlpha is the handle alpha when highlighted or active.
	HighlightAlpha float32
	// HighlightColor, when set, replaces the axis color of highlighted
	// handles.
	HighlightColor *Color
	// StrokeWidth is the thickness of the gizmo strokes, in points.
	StrokeWidth float32
	// GizmoSize is the gizmo radius, in points.
	GizmoSize float32
}

// DefaultVisuals returns the reference visual style.
func DefaultVisuals() GizmoVisuals {
	return GizmoVisuals{
		XColor:         RGB(255, 0, 125),
		YColor:         RGB(0, 255, 125),
		ZColor:         RGB(0, 125, 255),
		SColor:         RGB(255, 255, 255),
		InactiveAlpha:  0.7,
		HighlightAlpha: 1.0,
		StrokeWidth:    4.0,
		GizmoSize:      75.0,
	}
}

// StylePreset is an externally stored gizmo style, loadable from TOML.
// Zero-valued fields keep their defaults.
type StylePreset struct {
	Visuals struct {
		XColor         []float32 `toml:"x_color"`
		YColor         []float32 `toml:"y_color"`
		ZColor         []float32 `toml:"z_color"`
		SColor         []float32 `toml:"s_color"`
		HighlightColor []float32 `toml:"highlight_color"`
		InactiveAlpha  float32   `toml:"inactive_alpha"`
		HighlightAlpha float32   `toml:"highlight_alpha"`
		StrokeWidth    float32   `toml:"stroke_width"`
		GizmoSize      float32   `toml:"gizmo_size"`
	} `toml:"visuals"`
	Snapping struct {
		Enabled      bool    `toml:"enabled"`
		SnapAngle    float64 `toml:"snap_angle"`
		SnapDistance float64 `toml:"snap_distance"`
		SnapScale    float64 `toml:"snap_scale"`
	} `toml:"snapping"`
}

// StyleFromTOML reads a style preset from TOML data.
func StyleFromTOML(r io.Reader) (StylePreset, error) {
	var preset StylePreset
	if err := toml.NewDecoder(r).Decode(&preset); err != nil {
		return StylePreset{}, fmt.Errorf("decoding style preset: %w", err)
	}
	return preset, nil
}

// Apply copies the non-zero parts of the preset onto a config.
func (p StylePreset) Apply(cfg *GizmoConfig) {
	if c, ok := presetColor(p.Visuals.XColor); ok {
		cfg.Visuals.XColor = c
	}
	if c, ok := presetColor(p.Visuals.YColor); ok {
		cfg.Visuals.YColor = c
	}
	if c, ok := presetColor(p.Visuals.ZColor); ok {
		cfg.Visuals.ZColor = c
	}
	if c, ok := presetColor(p.Visuals.SColor); ok {
		cfg.Visuals.SColor = c
	}
	if c, ok := presetColor(p.Visuals.HighlightColor); ok {
		cfg.Visuals.HighlightColor = &c
	}
	if p.Visuals.InactiveAlpha > 0 {
		cfg.Visuals.InactiveAlpha = p.Visuals.InactiveAlpha
	}
	if p.Visuals.HighlightAlpha > 0 {
		cfg.Visuals.HighlightAlpha = p.Visuals.HighlightAlpha
	}
	if p.Visuals.StrokeWidth > 0 {
		cfg.Visuals.StrokeWidth = p.Visuals.StrokeWidth
	}
	if p.Visuals.GizmoSize > 0 {
		cfg.Visuals.GizmoSize = p.Visuals.GizmoSize
	}

	cfg.Snapping = p.Snapping.Enabled
	if p.Snapping.SnapAngle > 0 {
		cfg.SnapAngle = p.Snapping.SnapAngle
	}
	if p.Snapping.SnapDistance > 0 {
		cfg.SnapDistance = p.Snapping.SnapDistance
	}
	if p.Snapping.SnapScale > 0 {
		cfg.SnapScale = p.Snapping.SnapScale
	}
}

func presetColor(rgba []float32) (Color, bool) {
	if len(rgba) < 3 {
		return Color{}, false
	}
	c := Color{R: rgba[0], G: rgba[1], B: rgba[2], A: 1}
	if len(rgba) > 3 {
		c.A = rgba[3]
	}
	return c, true
}
