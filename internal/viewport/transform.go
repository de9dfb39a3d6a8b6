// Package viewport provides the viewport transform math, the viewport
// state, and the pointer interaction mode controller.
package viewport

import (
	"gonum.org/v1/gonum/mat"

	"plan-annotator/pkg/geometry"
)

// Rotation is the viewport rotation in degrees, restricted to quarter
// turns.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Normalize wraps any multiple of 90 into {0, 90, 180, 270}.
func (r Rotation) Normalize() Rotation {
	n := int(r) % 360
	if n < 0 {
		n += 360
	}
	return Rotation(n)
}

// CW returns the rotation advanced a quarter turn clockwise.
func (r Rotation) CW() Rotation {
	return (r + 90).Normalize()
}

// CCW returns the rotation advanced a quarter turn counter-clockwise.
func (r Rotation) CCW() Rotation {
	return (r - 90).Normalize()
}

// sincos avoids floating-point drift for the four exact angles.
func (r Rotation) sincos() (sin, cos float64) {
	switch r.Normalize() {
	case Rotate90:
		return 1, 0
	case Rotate180:
		return 0, -1
	case Rotate270:
		return -1, 0
	default:
		return 0, 1
	}
}

// Params are the transform parameters of a rendered viewport frame.
//
// Zoom must already be clamped to the configured bounds by the caller;
// clamping after the fact would expose intermediate unclamped states.
type Params struct {
	ViewRect    geometry.Rect // viewport rectangle in screen pixels
	ContentSize geometry.Size // document content extent in pixels
	Zoom        float64
	Rotation    Rotation
	Pan         geometry.Point2D // pan offset in screen pixels
}

// matrix builds the forward transform as a homogeneous 3x3 matrix:
// normalize to content pixels, translate to the content center, rotate
// about it, zoom, translate to the viewport center, pan. Rotating about
// the content's own center keeps rotation from also translating the
// content.
func (p Params) matrix() *mat.Dense {
	zoom := p.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	sin, cos := p.Rotation.sincos()

	w := p.ContentSize.Width
	h := p.ContentSize.Height
	denorm := mat.NewDense(3, 3, []float64{
		w, 0, 0,
		0, h, 0,
		0, 0, 1,
	})
	toCenter := mat.NewDense(3, 3, []float64{
		1, 0, -w / 2,
		0, 1, -h / 2,
		0, 0, 1,
	})
	rotate := mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})
	scale := mat.NewDense(3, 3, []float64{
		zoom, 0, 0,
		0, zoom, 0,
		0, 0, 1,
	})
	center := p.ViewRect.Center()
	place := mat.NewDense(3, 3, []float64{
		1, 0, center.X + p.Pan.X,
		0, 1, center.Y + p.Pan.Y,
		0, 0, 1,
	})

	m := mat.NewDense(3, 3, nil)
	m.Mul(toCenter, denorm)
	m.Mul(rotate, m)
	m.Mul(scale, m)
	m.Mul(place, m)
	return m
}

// DocumentToScreen projects a normalized document point to viewport-local
// screen coordinates. Used to position annotation markers each render.
func DocumentToScreen(p geometry.Point2D, params Params) geometry.Point2D {
	return apply(params.matrix(), p)
}

// ScreenToDocument inverts the render transform, mapping a pointer
// position back to normalized document space. It is the exact inverse of
// DocumentToScreen: the inversion mirrors the forward order, so placed
// annotations land on the clicked point under any zoom, rotation, and
// pan.
func ScreenToDocument(p geometry.Point2D, params Params) geometry.Point2D {
	if params.ContentSize.IsEmpty() {
		return geometry.Point2D{}
	}
	var inv mat.Dense
	if err := inv.Inverse(params.matrix()); err != nil {
		return geometry.Point2D{}
	}
	return apply(&inv, p)
}

// InverseCoeffs returns the inverse transform as flat affine
// coefficients [a b tx c d ty], mapping screen pixels to normalized
// document coordinates. The render surface uses these for per-pixel
// sampling without re-inverting per pixel.
func (p Params) InverseCoeffs() ([6]float64, bool) {
	if p.ContentSize.IsEmpty() {
		return [6]float64{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(p.matrix()); err != nil {
		return [6]float64{}, false
	}
	return [6]float64{
		inv.At(0, 0), inv.At(0, 1), inv.At(0, 2),
		inv.At(1, 0), inv.At(1, 1), inv.At(1, 2),
	}, true
}

func apply(m *mat.Dense, p geometry.Point2D) geometry.Point2D {
	v := mat.NewVecDense(3, []float64{p.X, p.Y, 1})
	out := mat.NewVecDense(3, nil)
	out.MulVec(m, v)
	return geometry.Point2D{X: out.AtVec(0), Y: out.AtVec(1)}
}
