package state

import "sync"

// NotesPersistence is the slice of storage the notes container uses.
type NotesPersistence interface {
	SaveNotes(map[string]string)
	LoadNotes() map[string]string
}

// Notes owns the freeform per-city notes, one per record ID,
// last-write-wins.
type Notes struct {
	mu    sync.RWMutex
	notes map[string]string

	store NotesPersistence
}

// NewNotes creates an empty notes container.
func NewNotes(store NotesPersistence) *Notes {
	return &Notes{notes: map[string]string{}, store: store}
}

// Hydrate replaces the in-memory mapping with the persisted copy,
// defaulting to empty. The load happens under the write lock so a
// concurrent save is ordered after the hydrate, never undone by it.
func (n *Notes) Hydrate() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notes = n.store.LoadNotes()
}

// Save upserts the note for id. An explicitly saved empty string is
// stored; it is not the same as deleting the note.
func (n *Notes) Save(id, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notes[id] = text
	n.persistLocked()
}

// Delete removes the mapping for id entirely.
func (n *Notes) Delete(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.notes, id)
	n.persistLocked()
}

// Get returns the note for id and whether one exists.
func (n *Notes) Get(id string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	text, ok := n.notes[id]
	return text, ok
}

// All returns a copy of every note keyed by record ID.
func (n *Notes) All() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make(map[string]string, len(n.notes))
	for id, text := range n.notes {
		out[id] = text
	}
	return out
}

func (n *Notes) persistLocked() {
	snapshot := make(map[string]string, len(n.notes))
	for id, text := range n.notes {
		snapshot[id] = text
	}
	n.store.SaveNotes(snapshot)
}
