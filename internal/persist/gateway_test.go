package persist

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-annotator/internal/annotation"
	"plan-annotator/internal/document"
	"plan-annotator/pkg/geometry"
)

func sampleDocuments() []*document.Document {
	resolvedAt := time.Date(2026, 5, 2, 11, 30, 0, 0, time.UTC)
	return []*document.Document{
		{
			ID:        "d-1",
			Name:      "Ground Floor",
			Kind:      document.KindPaginated,
			SourceRef: "data:application/pdf;base64,AAAA",
			Annotations: []*annotation.Annotation{
				{
					ID:         "a-1",
					DocumentID: "d-1",
					Position:   geometry.NewPoint2D(0.25, 0.75),
					Comment:    "crack in slab",
					Resolved:   true,
					ResolvedAt: &resolvedAt,
					Photos:     []string{"photo-1.jpg"},
					Author:     "alice",
					CreatedAt:  resolvedAt.Add(-time.Hour),
				},
			},
		},
		{
			ID:        "d-2",
			Name:      "Site Photo",
			Kind:      document.KindRaster,
			SourceRef: "data:image/png;base64,BBBB",
		},
	}
}

// eachStore runs the test body against every KV backend.
func eachStore(t *testing.T, fn func(t *testing.T, kv KV)) {
	t.Run("file", func(t *testing.T) {
		fn(t, OpenFileStore(t.TempDir()))
	})
	t.Run("sqlite", func(t *testing.T) {
		store, err := OpenSQLiteStore(t.TempDir())
		require.NoError(t, err)
		defer store.Close()
		fn(t, store)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, kv KV) {
		g := NewGateway(kv, 1<<20)
		docs := sampleDocuments()

		require.NoError(t, g.Save("p-1", docs, "d-2"))

		snap, ok := g.Load("p-1")
		require.True(t, ok)
		assert.Equal(t, "d-2", snap.ActiveDocumentID)
		require.Len(t, snap.Documents, 2)

		got := snap.Documents[0]
		assert.Equal(t, "d-1", got.ID)
		assert.Equal(t, document.KindPaginated, got.Kind)
		require.Len(t, got.Annotations, 1)
		a := got.Annotations[0]
		assert.Equal(t, "crack in slab", a.Comment)
		assert.Equal(t, geometry.NewPoint2D(0.25, 0.75), a.Position)
		assert.True(t, a.Resolved)
		require.NotNil(t, a.ResolvedAt)
		assert.Equal(t, []string{"photo-1.jpg"}, a.Photos)
	})
}

func TestLoadMissingProject(t *testing.T) {
	eachStore(t, func(t *testing.T, kv KV) {
		g := NewGateway(kv, 0)
		snap, ok := g.Load("nothing-here")
		assert.False(t, ok)
		assert.Nil(t, snap)
	})
}

func TestLoadMalformedSnapshot(t *testing.T) {
	eachStore(t, func(t *testing.T, kv KV) {
		require.NoError(t, kv.Set("project:p-1:documents", "{not json"))

		g := NewGateway(kv, 0)
		snap, ok := g.Load("p-1")
		assert.False(t, ok, "malformed data reads as absent")
		assert.Nil(t, snap)
	})
}

func TestSaveStripsOversizedEmbeds(t *testing.T) {
	kv := OpenFileStore(t.TempDir())
	g := NewGateway(kv, 64)

	big := "data:image/png;base64," + strings.Repeat("A", 200)
	docs := []*document.Document{
		{ID: "d-1", Name: "Big", Kind: document.KindRaster, SourceRef: big},
		{ID: "d-2", Name: "Small", Kind: document.KindRaster, SourceRef: "data:image/png;base64,CC"},
		{ID: "d-3", Name: "External", Kind: document.KindRaster, SourceRef: "/plans/" + strings.Repeat("x", 200)},
	}

	require.NoError(t, g.Save("p-1", docs, "d-1"))

	// The caller's slice is untouched.
	assert.Equal(t, big, docs[0].SourceRef)

	snap, ok := g.Load("p-1")
	require.True(t, ok)
	assert.Equal(t, OversizedRef, snap.Documents[0].SourceRef)
	assert.Equal(t, "data:image/png;base64,CC", snap.Documents[1].SourceRef)
	assert.Equal(t, docs[2].SourceRef, snap.Documents[2].SourceRef,
		"only embedded payloads are size-guarded")
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	kv := OpenFileStore(t.TempDir())
	g := NewGateway(kv, 0)

	require.NoError(t, g.Save("p-1", sampleDocuments(), "d-1"))
	require.NoError(t, g.Save("p-1", sampleDocuments()[:1], "d-1"))

	snap, ok := g.Load("p-1")
	require.True(t, ok)
	assert.Len(t, snap.Documents, 1)
}

func TestProjectsAreIsolated(t *testing.T) {
	kv := OpenFileStore(t.TempDir())
	g := NewGateway(kv, 0)

	require.NoError(t, g.Save("p-1", sampleDocuments(), "d-1"))
	require.NoError(t, g.Save("p-2", sampleDocuments()[1:], "d-2"))

	one, ok := g.Load("p-1")
	require.True(t, ok)
	two, ok := g.Load("p-2")
	require.True(t, ok)
	assert.Len(t, one.Documents, 2)
	assert.Len(t, two.Documents, 1)

	require.NoError(t, g.Clear("p-1"))
	_, ok = g.Load("p-1")
	assert.False(t, ok)
	_, ok = g.Load("p-2")
	assert.True(t, ok)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	first := OpenFileStore(dir)
	require.NoError(t, first.Set("k", "v"))

	second := OpenFileStore(dir)
	v, ok := second.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, second.Delete("k"))
	third := OpenFileStore(dir)
	_, ok = third.Get("k")
	assert.False(t, ok)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := OpenSQLiteStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v1"))
	require.NoError(t, first.Set("k", "v2"))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(dir)
	require.NoError(t, err)
	defer second.Close()

	v, ok := second.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, second.Delete("k"))
	require.NoError(t, second.Delete("k"), "deleting a missing key is not an error")
}
