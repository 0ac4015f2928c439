package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesSaveAndOverwrite(t *testing.T) {
	store := newFakeStore()
	n := NewNotes(store)

	n.Save("tokyo_japan", "pack an umbrella")
	n.Save("tokyo_japan", "actually sunny")

	got, ok := n.Get("tokyo_japan")
	require.True(t, ok)
	assert.Equal(t, "actually sunny", got, "last write wins")
	assert.Equal(t, 2, store.noteSaves)
}

func TestExplicitEmptyNoteIsStored(t *testing.T) {
	store := newFakeStore()
	n := NewNotes(store)

	n.Save("tokyo_japan", "")

	got, ok := n.Get("tokyo_japan")
	assert.True(t, ok, "an explicitly saved empty note is a mapping entry")
	assert.Equal(t, "", got)
	assert.Contains(t, store.notes, "tokyo_japan")

	// Delete removes the mapping entirely; distinct from saving empty.
	n.Delete("tokyo_japan")
	_, ok = n.Get("tokyo_japan")
	assert.False(t, ok)
}

func TestNotesHydrateDefaultsEmpty(t *testing.T) {
	store := newFakeStore()
	n := NewNotes(store)

	n.Hydrate()
	all := n.All()
	assert.NotNil(t, all)
	assert.Empty(t, all)

	store.notes = map[string]string{"osaka_japan": "takoyaki"}
	n.Hydrate()
	assert.Equal(t, map[string]string{"osaka_japan": "takoyaki"}, n.All())
}
