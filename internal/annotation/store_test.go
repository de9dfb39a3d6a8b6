package annotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-annotator/pkg/geometry"
)

func newTestStore() *Store {
	s := NewStore("doc-1", "alice")
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func TestCreateDefaults(t *testing.T) {
	s := newTestStore()

	a := s.Create(geometry.NewPoint2D(0.3, 0.7))
	require.NotNil(t, a)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "doc-1", a.DocumentID)
	assert.Equal(t, "alice", a.Author)
	assert.Equal(t, geometry.NewPoint2D(0.3, 0.7), a.Position)
	assert.False(t, a.Resolved)
	assert.Nil(t, a.ResolvedAt)
	assert.Empty(t, a.Comment)
	assert.Empty(t, a.Photos)
	assert.False(t, a.CreatedAt.IsZero())

	b := s.Create(geometry.NewPoint2D(0.1, 0.1))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Len())
}

func TestCreateClampsPosition(t *testing.T) {
	s := newTestStore()

	a := s.Create(geometry.NewPoint2D(-0.5, 1.5))
	assert.Equal(t, geometry.NewPoint2D(0, 1), a.Position)
}

func TestRepositionClamps(t *testing.T) {
	s := newTestStore()
	a := s.Create(geometry.NewPoint2D(0.5, 0.5))

	moved := s.Reposition(a.ID, geometry.NewPoint2D(2, -1))
	require.NotNil(t, moved)
	assert.Equal(t, geometry.NewPoint2D(1, 0), moved.Position)
	assert.Equal(t, moved.Position, s.Get(a.ID).Position)
}

func TestToggleResolvedIsInvolutive(t *testing.T) {
	s := newTestStore()
	a := s.Create(geometry.NewPoint2D(0.5, 0.5))

	resolved := s.ToggleResolved(a.ID)
	require.NotNil(t, resolved)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolvedAt)

	back := s.ToggleResolved(a.ID)
	require.NotNil(t, back)
	assert.False(t, back.Resolved)
	assert.Nil(t, back.ResolvedAt)

	// Toggling twice restores the unresolved shape exactly.
	assert.Equal(t, a.Resolved, back.Resolved)
	assert.Equal(t, a.Position, back.Position)
	assert.Equal(t, a.Comment, back.Comment)
}

func TestUpdateComment(t *testing.T) {
	s := newTestStore()
	a := s.Create(geometry.NewPoint2D(0.5, 0.5))

	got := s.UpdateComment(a.ID, "missing rebar on east wall")
	require.NotNil(t, got)
	assert.Equal(t, "missing rebar on east wall", got.Comment)
	assert.Equal(t, "missing rebar on east wall", s.Get(a.ID).Comment)
}

func TestPhotos(t *testing.T) {
	s := newTestStore()
	a := s.Create(geometry.NewPoint2D(0.5, 0.5))

	s.AddPhoto(a.ID, "photo-1.jpg")
	got := s.AddPhoto(a.ID, "photo-2.jpg")
	require.NotNil(t, got)
	assert.Equal(t, []string{"photo-1.jpg", "photo-2.jpg"}, got.Photos)

	got = s.RemovePhoto(a.ID, 0)
	require.NotNil(t, got)
	assert.Equal(t, []string{"photo-2.jpg"}, got.Photos)
}

func TestRemovePhotoOutOfRangeIsNoOp(t *testing.T) {
	s := newTestStore()
	a := s.Create(geometry.NewPoint2D(0.5, 0.5))
	s.AddPhoto(a.ID, "photo-1.jpg")

	for _, index := range []int{-1, 1, 99} {
		got := s.RemovePhoto(a.ID, index)
		require.NotNil(t, got)
		assert.Equal(t, []string{"photo-1.jpg"}, got.Photos, "index %d", index)
	}
}

func TestUnknownIDIsNoOp(t *testing.T) {
	s := newTestStore()
	s.Create(geometry.NewPoint2D(0.5, 0.5))

	assert.Nil(t, s.Get("nope"))
	assert.Nil(t, s.UpdateComment("nope", "x"))
	assert.Nil(t, s.ToggleResolved("nope"))
	assert.Nil(t, s.Reposition("nope", geometry.NewPoint2D(0, 0)))
	assert.Nil(t, s.AddPhoto("nope", "p"))
	assert.Nil(t, s.RemovePhoto("nope", 0))
	assert.False(t, s.Delete("nope"))
	assert.Equal(t, 1, s.Len())
}

func TestDelete(t *testing.T) {
	s := newTestStore()
	a := s.Create(geometry.NewPoint2D(0.1, 0.1))
	b := s.Create(geometry.NewPoint2D(0.2, 0.2))

	assert.True(t, s.Delete(a.ID))
	assert.Nil(t, s.Get(a.ID))
	assert.Equal(t, 1, s.Len())

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestMutatorsReturnCopies(t *testing.T) {
	s := newTestStore()
	a := s.Create(geometry.NewPoint2D(0.5, 0.5))

	// Writing through a returned copy must not reach the store.
	a.Comment = "scribbled on a copy"
	assert.Empty(t, s.Get(a.ID).Comment)

	all := s.All()
	all[0].Position = geometry.NewPoint2D(0, 0)
	assert.Equal(t, geometry.NewPoint2D(0.5, 0.5), s.Get(a.ID).Position)

	withPhoto := s.AddPhoto(a.ID, "p-1")
	withPhoto.Photos[0] = "tampered"
	assert.Equal(t, []string{"p-1"}, s.Get(a.ID).Photos)
}

func TestAllPreservesCreationOrder(t *testing.T) {
	s := newTestStore()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, s.Create(geometry.NewPoint2D(0.1, 0.1)).ID)
	}

	all := s.All()
	require.Len(t, all, 5)
	for i, a := range all {
		assert.Equal(t, ids[i], a.ID)
	}
}

func TestRestore(t *testing.T) {
	s := newTestStore()
	seed := []*Annotation{
		{ID: "a-1", DocumentID: "other-doc", Position: geometry.NewPoint2D(0.2, 0.4), Comment: "hi"},
		nil,
		{ID: "a-2", Position: geometry.NewPoint2D(3, 3)},
	}

	s.Restore(seed)
	require.Equal(t, 2, s.Len())

	a := s.Get("a-1")
	require.NotNil(t, a)
	assert.Equal(t, "doc-1", a.DocumentID, "restored annotations adopt the owning document")
	assert.Equal(t, "hi", a.Comment)

	b := s.Get("a-2")
	require.NotNil(t, b)
	assert.Equal(t, geometry.NewPoint2D(1, 1), b.Position)
}
