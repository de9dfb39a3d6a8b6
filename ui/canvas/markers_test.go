package canvas

import (
	"image"
	"testing"

	"plan-annotator/internal/annotation"
	"plan-annotator/internal/viewport"
	"plan-annotator/pkg/geometry"
)

func testParams() viewport.Params {
	return viewport.Params{
		ViewRect:    geometry.NewRect(0, 0, 800, 600),
		ContentSize: geometry.NewSize(800, 600),
		Zoom:        1,
	}
}

func TestHitTestMarkers(t *testing.T) {
	params := testParams()
	annotations := []*annotation.Annotation{
		{ID: "a-1", Position: geometry.NewPoint2D(0.5, 0.5)},
		{ID: "a-2", Position: geometry.NewPoint2D(0.25, 0.25)},
	}

	center := params.ViewRect.Center()
	if got := hitTestMarkers(annotations, center, params); got != "a-1" {
		t.Errorf("center hit %q", got)
	}

	// Inside the hit radius but off-center still hits.
	near := center.Add(geometry.NewPoint2D(markerHitRadius-1, 0))
	if got := hitTestMarkers(annotations, near, params); got != "a-1" {
		t.Errorf("near hit %q", got)
	}

	far := center.Add(geometry.NewPoint2D(markerHitRadius+2, 0))
	if got := hitTestMarkers(annotations, far, params); got != "" {
		t.Errorf("miss returned %q", got)
	}

	if got := hitTestMarkers(annotations, geometry.NewPoint2D(200, 150), params); got != "a-2" {
		t.Errorf("second marker hit %q", got)
	}
}

func TestHitTestPrefersTopmostMarker(t *testing.T) {
	params := testParams()
	// Same spot; the later annotation draws on top and wins the hit.
	annotations := []*annotation.Annotation{
		{ID: "below", Position: geometry.NewPoint2D(0.5, 0.5)},
		{ID: "above", Position: geometry.NewPoint2D(0.5, 0.5)},
	}

	if got := hitTestMarkers(annotations, params.ViewRect.Center(), params); got != "above" {
		t.Errorf("hit %q, want the topmost marker", got)
	}
}

func TestDrawMarkersPaintsPins(t *testing.T) {
	params := testParams()
	output := image.NewRGBA(image.Rect(0, 0, 800, 600))
	annotations := []*annotation.Annotation{
		{ID: "a-1", Position: geometry.NewPoint2D(0.5, 0.5)},
		{ID: "a-2", Position: geometry.NewPoint2D(0.25, 0.25), Resolved: true},
	}

	drawMarkers(output, annotations, "a-1", params)

	// A few pixels off the pin centers carry the fill colors; the exact
	// centers hold the number glyphs.
	if got := output.RGBAAt(400+markerRadius-2, 300); got != markerFill {
		t.Errorf("unresolved pin color %v", got)
	}
	if got := output.RGBAAt(200+markerRadius-2, 150); got != markerResolved {
		t.Errorf("resolved pin color %v", got)
	}
	if got := output.RGBAAt(400+markerRadius+3, 300); got != markerSelected {
		t.Errorf("selection ring color %v", got)
	}
}

func TestDrawMarkersOffCanvasIsSafe(t *testing.T) {
	params := testParams()
	params.Pan = geometry.NewPoint2D(5000, 5000)
	output := image.NewRGBA(image.Rect(0, 0, 100, 100))

	// Must not panic when every pin lands outside the image.
	drawMarkers(output, []*annotation.Annotation{
		{ID: "a-1", Position: geometry.NewPoint2D(0.5, 0.5)},
	}, "", params)
}
