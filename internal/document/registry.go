package document

import (
	"github.com/google/uuid"

	"plan-annotator/internal/annotation"
)

// Registry owns the ordered document collection of a project and the
// identity of the active document.
//
// Adding a document and replacing the active document's content are
// deliberately distinct operations; the caller's intent decides which one
// runs. Unknown ids are no-ops returning nil/false, since the UI may race
// ahead of state. All returned documents are copies.
type Registry struct {
	documents []*Document
	activeID  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Restore replaces the registry contents with a persisted snapshot. An
// active id that no longer resolves falls back to the first document.
func (r *Registry) Restore(docs []*Document, activeID string) {
	r.documents = r.documents[:0]
	for _, d := range docs {
		if d == nil || d.ID == "" {
			continue
		}
		r.documents = append(r.documents, d.clone())
	}
	r.activeID = ""
	for _, d := range r.documents {
		if d.ID == activeID {
			r.activeID = activeID
			break
		}
	}
	if r.activeID == "" && len(r.documents) > 0 {
		r.activeID = r.documents[0].ID
	}
}

// Add creates a new document, appends it, and makes it active.
func (r *Registry) Add(sourceRef, name string, kind Kind) *Document {
	d := &Document{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		SourceRef: sourceRef,
	}
	r.documents = append(r.documents, d)
	r.activeID = d.ID
	return d.clone()
}

// ReplaceActiveContent swaps the active document's content in place. The
// id and the annotations are untouched, so existing markers keep their
// anchoring. Returns nil when no document is active.
func (r *Registry) ReplaceActiveContent(sourceRef, name string) *Document {
	d := r.find(r.activeID)
	if d == nil {
		return nil
	}
	d.SourceRef = sourceRef
	if name != "" {
		d.Name = name
	}
	return d.clone()
}

// Rename changes a document's display name.
func (r *Registry) Rename(id, name string) *Document {
	d := r.find(id)
	if d == nil {
		return nil
	}
	d.Name = name
	return d.clone()
}

// Select makes the given document active. It reports whether the active
// document actually changed (so the caller knows to reset viewport state
// and clear the annotation selection) and whether the id resolved at all.
func (r *Registry) Select(id string) (changed, ok bool) {
	d := r.find(id)
	if d == nil {
		return false, false
	}
	if r.activeID == id {
		return false, true
	}
	r.activeID = id
	return true, true
}

// Remove deletes a document and its annotations. Removing the active
// document shifts activity to the first remaining one.
func (r *Registry) Remove(id string) bool {
	for i, d := range r.documents {
		if d.ID == id {
			r.documents = append(r.documents[:i], r.documents[i+1:]...)
			if r.activeID == id {
				r.activeID = ""
				if len(r.documents) > 0 {
					r.activeID = r.documents[0].ID
				}
			}
			return true
		}
	}
	return false
}

// Reset clears the whole collection. Confirmation is the boundary's job,
// not this component's.
func (r *Registry) Reset() {
	r.documents = nil
	r.activeID = ""
}

// Get returns a copy of the document, or nil if the id is unknown.
func (r *Registry) Get(id string) *Document {
	if d := r.find(id); d != nil {
		return d.clone()
	}
	return nil
}

// Active returns a copy of the active document, or nil when none is.
func (r *Registry) Active() *Document {
	return r.Get(r.activeID)
}

// ActiveID returns the active document id, or "".
func (r *Registry) ActiveID() string {
	return r.activeID
}

// All returns copies of every document in order.
func (r *Registry) All() []*Document {
	out := make([]*Document, len(r.documents))
	for i, d := range r.documents {
		out[i] = d.clone()
	}
	return out
}

// Len returns the number of documents.
func (r *Registry) Len() int {
	return len(r.documents)
}

// SetAnnotations overwrites a document's annotation list. The annotation
// store is the only intended caller; it owns the live list while its
// document is active and writes it back here after every mutation.
func (r *Registry) SetAnnotations(id string, annotations []*annotation.Annotation) bool {
	d := r.find(id)
	if d == nil {
		return false
	}
	d.Annotations = annotations
	return true
}

func (r *Registry) find(id string) *Document {
	if id == "" {
		return nil
	}
	for _, d := range r.documents {
		if d.ID == id {
			return d
		}
	}
	return nil
}
