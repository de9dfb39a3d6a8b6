package annotation

import (
	"time"

	"github.com/google/uuid"

	"plan-annotator/pkg/geometry"
)

// Store owns the annotations of a single document, ordered by creation.
//
// Every mutator returns the fresh post-mutation annotation (nil when the id
// is unknown) so callers can replace any held copy instead of re-finding it
// by id after each change. Out-of-range positions are clamped to [0,1] on
// the way in; they are never stored out of range.
type Store struct {
	documentID  string
	author      string
	annotations []*Annotation

	now func() time.Time
}

// NewStore creates a store bound to the given document id. Annotations it
// creates carry the given author as provenance.
func NewStore(documentID, author string) *Store {
	return &Store{
		documentID: documentID,
		author:     author,
		now:        time.Now,
	}
}

// Restore seeds the store with previously persisted annotations.
func (s *Store) Restore(annotations []*Annotation) {
	s.annotations = s.annotations[:0]
	for _, a := range annotations {
		if a == nil {
			continue
		}
		cp := a.clone()
		cp.DocumentID = s.documentID
		cp.Position = cp.Position.ClampUnit()
		s.annotations = append(s.annotations, cp)
	}
}

// Create appends a new unresolved annotation at the given normalized
// position and returns a copy of it for immediate selection.
func (s *Store) Create(pos geometry.Point2D) *Annotation {
	a := &Annotation{
		ID:         uuid.NewString(),
		DocumentID: s.documentID,
		Position:   pos.ClampUnit(),
		Author:     s.author,
		CreatedAt:  s.now(),
	}
	s.annotations = append(s.annotations, a)
	return a.clone()
}

// Get returns a copy of the annotation, or nil if the id is unknown.
func (s *Store) Get(id string) *Annotation {
	if a := s.find(id); a != nil {
		return a.clone()
	}
	return nil
}

// All returns copies of every annotation in creation order.
func (s *Store) All() []*Annotation {
	out := make([]*Annotation, len(s.annotations))
	for i, a := range s.annotations {
		out[i] = a.clone()
	}
	return out
}

// Len returns the number of annotations.
func (s *Store) Len() int {
	return len(s.annotations)
}

// UpdateComment replaces the comment text.
func (s *Store) UpdateComment(id, text string) *Annotation {
	a := s.find(id)
	if a == nil {
		return nil
	}
	a.Comment = text
	return a.clone()
}

// ToggleResolved flips the resolved flag, recording or clearing the
// resolution time.
func (s *Store) ToggleResolved(id string) *Annotation {
	a := s.find(id)
	if a == nil {
		return nil
	}
	a.Resolved = !a.Resolved
	if a.Resolved {
		t := s.now()
		a.ResolvedAt = &t
	} else {
		a.ResolvedAt = nil
	}
	return a.clone()
}

// Reposition moves the annotation to a new normalized position, clamped
// to [0,1] on both axes.
func (s *Store) Reposition(id string, pos geometry.Point2D) *Annotation {
	a := s.find(id)
	if a == nil {
		return nil
	}
	a.Position = pos.ClampUnit()
	return a.clone()
}

// AddPhoto appends a photo reference.
func (s *Store) AddPhoto(id, photoRef string) *Annotation {
	a := s.find(id)
	if a == nil {
		return nil
	}
	a.Photos = append(a.Photos, photoRef)
	return a.clone()
}

// RemovePhoto removes the photo at index. An out-of-range index is a
// no-op, not an error, to tolerate stale UI state referencing a
// just-removed item.
func (s *Store) RemovePhoto(id string, index int) *Annotation {
	a := s.find(id)
	if a == nil {
		return nil
	}
	if index >= 0 && index < len(a.Photos) {
		a.Photos = append(a.Photos[:index], a.Photos[index+1:]...)
	}
	return a.clone()
}

// Delete removes the annotation entirely. Returns false if the id is
// unknown.
func (s *Store) Delete(id string) bool {
	for i, a := range s.annotations {
		if a.ID == id {
			s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) find(id string) *Annotation {
	for _, a := range s.annotations {
		if a.ID == id {
			return a
		}
	}
	return nil
}
