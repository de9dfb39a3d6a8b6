package viewport

import (
	"plan-annotator/internal/config"
	"plan-annotator/pkg/geometry"
)

// State holds the per-document viewport parameters. It is reset to
// defaults whenever the active document changes and is not persisted.
type State struct {
	zoom     float64
	rotation Rotation
	pan      geometry.Point2D

	bounds config.ViewportConfig
}

// NewState creates a viewport state with the configured zoom bounds.
func NewState(bounds config.ViewportConfig) *State {
	s := &State{bounds: bounds}
	s.Reset()
	return s
}

// Reset restores zoom, rotation, and pan to their defaults.
func (s *State) Reset() {
	s.zoom = 1.0
	s.rotation = Rotate0
	s.pan = geometry.Point2D{}
}

// Zoom returns the current zoom factor.
func (s *State) Zoom() float64 {
	return s.zoom
}

// SetZoom sets the zoom factor, clamped to the configured bounds.
func (s *State) SetZoom(zoom float64) {
	if zoom < s.bounds.MinZoom {
		zoom = s.bounds.MinZoom
	}
	if zoom > s.bounds.MaxZoom {
		zoom = s.bounds.MaxZoom
	}
	s.zoom = zoom
}

// ZoomIn increases the zoom by the configured step.
func (s *State) ZoomIn() {
	s.SetZoom(s.zoom * s.bounds.ZoomStep)
}

// ZoomOut decreases the zoom by the configured step.
func (s *State) ZoomOut() {
	s.SetZoom(s.zoom / s.bounds.ZoomStep)
}

// Rotation returns the current quarter-turn rotation.
func (s *State) Rotation() Rotation {
	return s.rotation
}

// RotateCW advances the rotation a quarter turn clockwise.
func (s *State) RotateCW() {
	s.rotation = s.rotation.CW()
}

// RotateCCW advances the rotation a quarter turn counter-clockwise.
func (s *State) RotateCCW() {
	s.rotation = s.rotation.CCW()
}

// Pan returns the current pan offset in screen pixels.
func (s *State) Pan() geometry.Point2D {
	return s.pan
}

// PanBy shifts the pan offset by a screen-space delta. The offset is
// unbounded.
func (s *State) PanBy(delta geometry.Point2D) {
	s.pan = s.pan.Add(delta)
}

// ResetPan recenters the content.
func (s *State) ResetPan() {
	s.pan = geometry.Point2D{}
}

// Params assembles transform parameters for the given viewport rectangle
// and content extent.
func (s *State) Params(viewRect geometry.Rect, contentSize geometry.Size) Params {
	return Params{
		ViewRect:    viewRect,
		ContentSize: contentSize,
		Zoom:        s.zoom,
		Rotation:    s.rotation,
		Pan:         s.pan,
	}
}
