// Package importer converts user-supplied files into document source
// references. Oversized rasters are downscaled before they reach the
// registry so persisted snapshots stay small.
package importer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoding

	"plan-annotator/internal/document"
	"plan-annotator/internal/logger"
)

const jpegQuality = 85

// Result is the outcome of an import: an embeddable sourceRef, a
// suggested display name, and the document kind.
type Result struct {
	SourceRef string
	Name      string
	Kind      document.Kind
}

// Importer pre-processes files before they are handed to the registry.
type Importer struct {
	// MaxEdgePixels is the longest-edge limit; rasters above it are
	// downscaled. Zero disables downscaling.
	MaxEdgePixels int
	// MaxEmbedBytes is the threshold above which a raster is considered
	// oversized and downscaling is attempted even within the edge limit.
	MaxEmbedBytes int
}

// New creates an importer with the given limits.
func New(maxEdgePixels, maxEmbedBytes int) *Importer {
	return &Importer{MaxEdgePixels: maxEdgePixels, MaxEmbedBytes: maxEmbedBytes}
}

// ImportFile reads a file and produces an importable result. Paginated
// documents are embedded as-is; rasters go through the downscale path.
func (im *Importer) ImportFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return im.Import(data, filepath.Ext(path), name)
}

// Import converts raw file bytes into a result. ext selects the kind and
// the MIME type; name is the suggested display name.
func (im *Importer) Import(data []byte, ext, name string) (*Result, error) {
	ext = strings.ToLower(ext)
	kind := KindForExtension(ext)
	if kind == "" {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}

	if kind == document.KindPaginated {
		return &Result{
			SourceRef: dataURL("application/pdf", data),
			Name:      name,
			Kind:      kind,
		}, nil
	}

	ref := im.rasterRef(data, ext)
	return &Result{SourceRef: ref, Name: name, Kind: document.KindRaster}, nil
}

// ImportAsync runs the import off the calling goroutine and delivers the
// result through the callback, keeping the viewport interactive while
// large rasters are re-encoded.
func (im *Importer) ImportAsync(path string, done func(*Result, error)) {
	go func() {
		done(im.ImportFile(path))
	}()
}

// rasterRef embeds a raster, downscaling and re-encoding when it exceeds
// the configured limits. If decoding or re-encoding fails the original
// bytes are embedded unchanged rather than failing the import.
func (im *Importer) rasterRef(data []byte, ext string) string {
	original := dataURL(mimeForExtension(ext), data)

	needsRecode := im.MaxEmbedBytes > 0 && len(data) > im.MaxEmbedBytes
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("import: decode failed, embedding original: %v", err)
		return original
	}

	bounds := img.Bounds()
	longest := bounds.Dx()
	if bounds.Dy() > longest {
		longest = bounds.Dy()
	}
	if im.MaxEdgePixels > 0 && longest > im.MaxEdgePixels {
		img = downscale(img, im.MaxEdgePixels)
		needsRecode = true
	}
	if !needsRecode {
		return original
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		logger.Warn("import: re-encode failed, embedding original: %v", err)
		return original
	}
	logger.Debug("import: re-encoded %d -> %d bytes", len(data), buf.Len())
	return dataURL("image/jpeg", buf.Bytes())
}

// downscale resamples the image so its longest edge equals maxEdge.
func downscale(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var nw, nh int
	if w >= h {
		nw = maxEdge
		nh = h * maxEdge / w
	} else {
		nh = maxEdge
		nw = w * maxEdge / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// KindForExtension maps a file extension to a document kind, or "" when
// the extension is unsupported.
func KindForExtension(ext string) document.Kind {
	switch strings.ToLower(ext) {
	case ".pdf":
		return document.KindPaginated
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return document.KindRaster
	default:
		return ""
	}
}

func mimeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FileFilter returns the extensions accepted by file-open dialogs.
func FileFilter() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff"}
}
