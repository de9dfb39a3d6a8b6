package canvas

import (
	"image"
	"image/draw"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"plan-annotator/internal/app"
	"plan-annotator/internal/logger"
	"plan-annotator/pkg/geometry"
)

// Viewport is the render surface: it paints the active document under
// the current transform, overlays annotation markers, and forwards
// pointer events to the controller.
type Viewport struct {
	widget.BaseWidget

	controller *app.Controller
	renderer   ContentRenderer
	raster     *fynecanvas.Raster

	content  *image.RGBA
	dragging bool
}

// New creates the viewport widget and subscribes it to controller
// events.
func New(controller *app.Controller, renderer ContentRenderer) *Viewport {
	v := &Viewport{
		controller: controller,
		renderer:   renderer,
	}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.ExtendBaseWidget(v)

	reload := func(interface{}) {
		v.reloadContent()
		v.Refresh()
	}
	repaint := func(interface{}) {
		v.Refresh()
	}
	controller.On(app.EventActiveDocumentChanged, reload)
	controller.On(app.EventDocumentsChanged, reload)
	controller.On(app.EventAnnotationsChanged, repaint)
	controller.On(app.EventSelectionChanged, repaint)
	controller.On(app.EventViewportChanged, repaint)

	v.reloadContent()
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *Viewport) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// Refresh repaints the raster.
func (v *Viewport) Refresh() {
	v.raster.Refresh()
	v.BaseWidget.Refresh()
}

// ViewRect returns the widget bounds as a geometry rectangle.
func (v *Viewport) ViewRect() geometry.Rect {
	size := v.Size()
	return geometry.NewRect(0, 0, float64(size.Width), float64(size.Height))
}

// reloadContent rasterizes the active document and reports its extent to
// the controller.
func (v *Viewport) reloadContent() {
	doc := v.controller.ActiveDocument()
	if doc == nil {
		v.content = nil
		v.controller.SetContentSize(geometry.Size{})
		return
	}

	img, err := v.renderer.Render(doc.SourceRef, doc.Kind)
	if err != nil {
		logger.Warn("viewport: rendering %q: %v", doc.Name, err)
		v.content = nil
		v.controller.SetContentSize(geometry.Size{})
		return
	}

	// Convert once so per-pixel sampling is cheap.
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	v.content = rgba
	v.controller.SetContentSize(geometry.NewSize(float64(bounds.Dx()), float64(bounds.Dy())))
}

// draw is the raster drawing function. Each output pixel is inverse
// mapped through the viewport transform and sampled from the content,
// then markers are projected on top.
func (v *Viewport) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = backgroundColor.R
		output.Pix[i+1] = backgroundColor.G
		output.Pix[i+2] = backgroundColor.B
		output.Pix[i+3] = 0xff
	}
	if v.content == nil || w == 0 || h == 0 {
		return output
	}

	viewRect := geometry.NewRect(0, 0, float64(w), float64(h))
	params := v.controller.Params(viewRect)
	coeffs, ok := params.InverseCoeffs()
	if !ok {
		return output
	}

	srcW := v.content.Bounds().Dx()
	srcH := v.content.Bounds().Dy()
	for y := 0; y < h; y++ {
		fy := float64(y)
		for x := 0; x < w; x++ {
			fx := float64(x)
			nx := coeffs[0]*fx + coeffs[1]*fy + coeffs[2]
			ny := coeffs[3]*fx + coeffs[4]*fy + coeffs[5]
			if nx < 0 || nx >= 1 || ny < 0 || ny >= 1 {
				continue
			}
			sx := int(nx * float64(srcW))
			sy := int(ny * float64(srcH))
			si := v.content.PixOffset(sx, sy)
			di := output.PixOffset(x, y)
			copy(output.Pix[di:di+4], v.content.Pix[si:si+4])
		}
	}

	drawMarkers(output, v.controller.Annotations(), v.selectedID(), params)
	return output
}

func (v *Viewport) selectedID() string {
	if sel := v.controller.SelectedAnnotation(); sel != nil {
		return sel.ID
	}
	return ""
}

// Tapped handles left-click events: marker hit-testing happens here, in
// screen space, against the projected annotation positions.
func (v *Viewport) Tapped(ev *fyne.PointEvent) {
	pos := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	viewRect := v.ViewRect()
	params := v.controller.Params(viewRect)
	hit := hitTestMarkers(v.controller.Annotations(), pos, params)
	v.controller.PointerDown(pos, viewRect, hit)
}

// TappedSecondary cancels any pending placement or repositioning.
func (v *Viewport) TappedSecondary(*fyne.PointEvent) {
	v.controller.CancelMode()
}

// Dragged forwards drag motion. The first event of a drag acts as the
// pointer-down that starts pan tracking.
func (v *Viewport) Dragged(ev *fyne.DragEvent) {
	pos := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	if !v.dragging {
		v.dragging = true
		v.controller.PointerDown(pos, v.ViewRect(), "")
		return
	}
	v.controller.PointerMove(pos)
}

// DragEnd ends an active drag; a sticky pan mode survives it.
func (v *Viewport) DragEnd() {
	v.dragging = false
	v.controller.PointerUp()
}

// Scrolled zooms with the wheel.
func (v *Viewport) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		v.controller.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		v.controller.ZoomOut()
	}
}

// MouseIn implements desktop.Hoverable.
func (v *Viewport) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (v *Viewport) MouseMoved(*desktop.MouseEvent) {}

// MouseOut cancels an active drag when the pointer leaves the viewport.
func (v *Viewport) MouseOut() {
	v.dragging = false
	v.controller.PointerLeave()
}
