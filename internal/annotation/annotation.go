// Package annotation provides the annotation model and its store.
package annotation

import (
	"time"

	"plan-annotator/pkg/geometry"
)

// Annotation is a spatial note anchored to a document.
//
// Position is the single authoritative coordinate: a point in normalized
// document space with both components in [0,1], invariant under zoom,
// rotation, and pan. Screen positions are derived projections and are
// never stored.
type Annotation struct {
	ID         string           `json:"id"`
	DocumentID string           `json:"documentId"`
	Position   geometry.Point2D `json:"position"`
	Comment    string           `json:"comment"`
	Resolved   bool             `json:"resolved"`
	ResolvedAt *time.Time       `json:"resolvedAt,omitempty"`
	Photos     []string         `json:"photos,omitempty"`
	Author     string           `json:"author"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Clone returns a deep copy, for holders that hand annotations across
// component boundaries.
func (a *Annotation) Clone() *Annotation {
	return a.clone()
}

// clone returns a deep copy so store internals are never aliased out.
func (a *Annotation) clone() *Annotation {
	cp := *a
	if a.Photos != nil {
		cp.Photos = append([]string(nil), a.Photos...)
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}
