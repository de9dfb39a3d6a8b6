// Package document provides the document model and the per-project registry.
package document

import (
	"plan-annotator/internal/annotation"
)

// Kind distinguishes how a document's content is rendered.
type Kind string

const (
	// KindPaginated is a paged document (PDF); rasterization is done by
	// the renderer collaborator.
	KindPaginated Kind = "paginated"
	// KindRaster is a plain image (plan scan, site photo).
	KindRaster Kind = "raster"
)

// Document is a reference document of a project: a site plan, a blueprint
// page, or a photo. It exclusively owns its annotations.
type Document struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Kind        Kind                     `json:"kind"`
	SourceRef   string                   `json:"sourceRef"`
	Annotations []*annotation.Annotation `json:"annotations,omitempty"`
}

// clone returns a deep copy, annotations included.
func (d *Document) clone() *Document {
	cp := *d
	if d.Annotations != nil {
		cp.Annotations = make([]*annotation.Annotation, len(d.Annotations))
		for i, a := range d.Annotations {
			cp.Annotations[i] = a.Clone()
		}
	}
	return &cp
}
