// Package canvas provides the document viewport widget: rendering,
// pan/zoom/rotate, and annotation marker interaction.
package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"strings"

	_ "golang.org/x/image/tiff" // register TIFF decoding

	"plan-annotator/internal/document"
)

// ContentRenderer rasterizes a document's sourceRef for display. The
// viewport never interprets document bytes itself; paginated formats are
// this collaborator's problem.
type ContentRenderer interface {
	Render(sourceRef string, kind document.Kind) (image.Image, error)
}

// DefaultRenderer decodes embedded raster content and substitutes a
// blank page for paginated documents, where real rasterization is
// delegated to an external renderer.
type DefaultRenderer struct {
	// PageSize is the placeholder extent for paginated documents.
	PageSize image.Point
}

// NewDefaultRenderer creates a renderer with an A4-like placeholder page.
func NewDefaultRenderer() *DefaultRenderer {
	return &DefaultRenderer{PageSize: image.Pt(1240, 1754)}
}

// Render rasterizes a sourceRef.
func (r *DefaultRenderer) Render(sourceRef string, kind document.Kind) (image.Image, error) {
	if kind == document.KindPaginated {
		return r.blankPage(), nil
	}
	data, err := decodeDataURL(sourceRef)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding raster content: %w", err)
	}
	return img, nil
}

func (r *DefaultRenderer) blankPage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, r.PageSize.X, r.PageSize.Y))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xfa
		img.Pix[i+1] = 0xfa
		img.Pix[i+2] = 0xf7
		img.Pix[i+3] = 0xff
	}
	return img
}

// decodeDataURL extracts the payload of a base64 data URL.
func decodeDataURL(ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, fmt.Errorf("sourceRef is not embedded content")
	}
	idx := strings.Index(ref, ",")
	if idx < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := ref[5:idx], ref[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URL encoding")
	}
	return base64.StdEncoding.DecodeString(payload)
}

var backgroundColor = color.RGBA{R: 0x2b, G: 0x2b, B: 0x2e, A: 0xff}
