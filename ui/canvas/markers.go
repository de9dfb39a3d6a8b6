package canvas

import (
	"image"
	"image/color"

	"plan-annotator/internal/annotation"
	"plan-annotator/internal/viewport"
	"plan-annotator/pkg/geometry"
)

const (
	markerRadius    = 9
	markerHitRadius = 14
)

var (
	markerFill     = color.RGBA{R: 0xe8, G: 0x5d, B: 0x2f, A: 0xff}
	markerResolved = color.RGBA{R: 0x5a, G: 0x8f, B: 0x5a, A: 0xff}
	markerOutline  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	markerSelected = color.RGBA{R: 0xff, G: 0xd7, B: 0x40, A: 0xff}
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9, used to
// number markers.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// drawMarkers projects each annotation into screen space and paints its
// pin. Resolved markers get the muted color; the selected marker gets a
// highlight ring.
func drawMarkers(output *image.RGBA, annotations []*annotation.Annotation, selectedID string, params viewport.Params) {
	for i, a := range annotations {
		p := viewport.DocumentToScreen(a.Position, params)
		cx, cy := int(p.X), int(p.Y)

		fill := markerFill
		if a.Resolved {
			fill = markerResolved
		}
		drawDisc(output, cx, cy, markerRadius, fill)
		drawRing(output, cx, cy, markerRadius, markerOutline)
		if a.ID == selectedID {
			drawRing(output, cx, cy, markerRadius+3, markerSelected)
			drawRing(output, cx, cy, markerRadius+4, markerSelected)
		}
		drawNumber(output, i+1, cx, cy, markerOutline)
	}
}

// hitTestMarkers returns the id of the topmost marker under the screen
// point, or "". Later annotations draw on top, so iterate backwards.
func hitTestMarkers(annotations []*annotation.Annotation, at geometry.Point2D, params viewport.Params) string {
	for i := len(annotations) - 1; i >= 0; i-- {
		p := viewport.DocumentToScreen(annotations[i].Position, params)
		if p.Distance(at) <= markerHitRadius {
			return annotations[i].ID
		}
	}
	return ""
}

func drawDisc(output *image.RGBA, cx, cy, r int, col color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				setPixel(output, cx+dx, cy+dy, col)
			}
		}
	}
}

func drawRing(output *image.RGBA, cx, cy, r int, col color.RGBA) {
	inner := (r - 1) * (r - 1)
	outer := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx*dx + dy*dy
			if d > inner && d <= outer {
				setPixel(output, cx+dx, cy+dy, col)
			}
		}
	}
}

// drawNumber paints a marker index (1-99) centered on the pin using the
// 3x5 digit patterns.
func drawNumber(output *image.RGBA, n, cx, cy int, col color.RGBA) {
	if n < 1 {
		return
	}
	if n > 99 {
		n = 99
	}
	digits := []int{}
	for n > 0 {
		digits = append([]int{n % 10}, digits...)
		n /= 10
	}

	width := len(digits)*4 - 1
	x0 := cx - width/2
	y0 := cy - 2
	for _, d := range digits {
		pattern := digitPatterns[d]
		for row := 0; row < 5; row++ {
			for bit := 0; bit < 3; bit++ {
				if pattern[row]&(1<<(2-bit)) != 0 {
					setPixel(output, x0+bit, y0+row, col)
				}
			}
		}
		x0 += 4
	}
}

func setPixel(output *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(output.Bounds()) {
		output.SetRGBA(x, y, col)
	}
}
