package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-annotator/internal/annotation"
	"plan-annotator/pkg/geometry"
)

func TestAddActivates(t *testing.T) {
	r := NewRegistry()

	a := r.Add("data:application/pdf;base64,AA==", "Floor Plan", KindPaginated)
	require.NotNil(t, a)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, r.ActiveID())

	b := r.Add("data:image/png;base64,BB==", "Site Photo", KindRaster)
	assert.Equal(t, b.ID, r.ActiveID())
	assert.Equal(t, 2, r.Len())

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)
}

func TestReplaceActiveContentKeepsIdentity(t *testing.T) {
	r := NewRegistry()
	orig := r.Add("data:image/png;base64,AA==", "Rev A", KindRaster)
	annotations := []*annotation.Annotation{
		{ID: "ann-1", Position: geometry.NewPoint2D(0.4, 0.6), Comment: "check this"},
	}
	require.True(t, r.SetAnnotations(orig.ID, annotations))

	got := r.ReplaceActiveContent("data:image/png;base64,BB==", "Rev B")
	require.NotNil(t, got)
	assert.Equal(t, orig.ID, got.ID, "replacement must not mint a new document")
	assert.Equal(t, "Rev B", got.Name)
	assert.Equal(t, "data:image/png;base64,BB==", got.SourceRef)
	require.Len(t, got.Annotations, 1)
	assert.Equal(t, "ann-1", got.Annotations[0].ID)
	assert.Equal(t, 1, r.Len(), "replace must not add a document")
}

func TestReplaceActiveContentKeepsNameWhenEmpty(t *testing.T) {
	r := NewRegistry()
	r.Add("ref-a", "Rev A", KindRaster)

	got := r.ReplaceActiveContent("ref-b", "")
	require.NotNil(t, got)
	assert.Equal(t, "Rev A", got.Name)
}

func TestReplaceWithoutActiveDocument(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.ReplaceActiveContent("ref", "name"))
}

func TestSelect(t *testing.T) {
	r := NewRegistry()
	a := r.Add("ref-a", "A", KindRaster)
	b := r.Add("ref-b", "B", KindRaster)

	changed, ok := r.Select(a.ID)
	assert.True(t, changed)
	assert.True(t, ok)
	assert.Equal(t, a.ID, r.ActiveID())

	changed, ok = r.Select(a.ID)
	assert.False(t, changed, "selecting the active document is not a change")
	assert.True(t, ok)

	changed, ok = r.Select("missing")
	assert.False(t, changed)
	assert.False(t, ok)
	assert.Equal(t, a.ID, r.ActiveID())

	changed, ok = r.Select(b.ID)
	assert.True(t, changed)
	assert.True(t, ok)
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	a := r.Add("ref-a", "A", KindRaster)
	b := r.Add("ref-b", "B", KindRaster)

	// b is active; removing it shifts activity to the first remaining doc.
	assert.True(t, r.Remove(b.ID))
	assert.Equal(t, a.ID, r.ActiveID())
	assert.Equal(t, 1, r.Len())

	assert.False(t, r.Remove("missing"))

	assert.True(t, r.Remove(a.ID))
	assert.Equal(t, "", r.ActiveID())
	assert.Nil(t, r.Active())
}

func TestRename(t *testing.T) {
	r := NewRegistry()
	a := r.Add("ref-a", "A", KindRaster)

	got := r.Rename(a.ID, "Ground Floor")
	require.NotNil(t, got)
	assert.Equal(t, "Ground Floor", got.Name)
	assert.Nil(t, r.Rename("missing", "x"))
}

func TestReset(t *testing.T) {
	r := NewRegistry()
	r.Add("ref-a", "A", KindRaster)
	r.Add("ref-b", "B", KindRaster)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "", r.ActiveID())
}

func TestRestore(t *testing.T) {
	docs := []*Document{
		{ID: "d-1", Name: "One", Kind: KindRaster},
		nil,
		{ID: "", Name: "invalid"},
		{ID: "d-2", Name: "Two", Kind: KindPaginated},
	}

	r := NewRegistry()
	r.Restore(docs, "d-2")
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "d-2", r.ActiveID())

	// A dangling active id falls back to the first document.
	r.Restore(docs, "gone")
	assert.Equal(t, "d-1", r.ActiveID())

	r.Restore(nil, "d-1")
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "", r.ActiveID())
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	r := NewRegistry()
	a := r.Add("ref-a", "A", KindRaster)

	a.Name = "tampered"
	assert.Equal(t, "A", r.Get(a.ID).Name)

	all := r.All()
	all[0].SourceRef = "tampered"
	assert.Equal(t, "ref-a", r.Get(a.ID).SourceRef)

	got := r.Get(a.ID)
	got.Annotations = append(got.Annotations, &annotation.Annotation{ID: "x"})
	assert.Empty(t, r.Get(a.ID).Annotations)
}

func TestCopiesShareNoAnnotationState(t *testing.T) {
	r := NewRegistry()
	a := r.Add("ref-a", "A", KindRaster)
	resolvedAt := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	require.True(t, r.SetAnnotations(a.ID, []*annotation.Annotation{
		{ID: "ann-1", Resolved: true, ResolvedAt: &resolvedAt, Photos: []string{"p-1"}},
	}))

	got := r.Get(a.ID)
	require.Len(t, got.Annotations, 1)
	*got.Annotations[0].ResolvedAt = resolvedAt.Add(48 * time.Hour)
	got.Annotations[0].Photos[0] = "tampered"

	fresh := r.Get(a.ID)
	assert.Equal(t, resolvedAt, *fresh.Annotations[0].ResolvedAt)
	assert.Equal(t, []string{"p-1"}, fresh.Annotations[0].Photos)
}
