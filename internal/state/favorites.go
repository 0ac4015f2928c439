package state

import "sync"

// FavoritesPersistence is the slice of storage the favorites container
// uses.
type FavoritesPersistence interface {
	SaveFavorites([]string)
	LoadFavorites() []string
}

// Favorites owns the set of favorited record IDs. Membership only;
// display ordering is a derived-view concern. Dangling IDs (a favorite
// whose city was removed) are tolerated.
type Favorites struct {
	mu  sync.RWMutex
	ids []string

	store FavoritesPersistence
}

// NewFavorites creates an empty favorites container.
func NewFavorites(store FavoritesPersistence) *Favorites {
	return &Favorites{ids: []string{}, store: store}
}

// Hydrate unconditionally replaces the in-memory set with the
// persisted sequence, defaulting to empty. Unlike the weather
// container, an empty persisted list is a valid state to restore.
// Loading under the write lock keeps concurrent mutations ordered
// after the hydrate instead of being reverted by it.
func (f *Favorites) Hydrate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ids = f.store.LoadFavorites()
}

// Add marks id as a favorite. Idempotent.
func (f *Favorites) Add(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.indexLocked(id) >= 0 {
		return
	}
	f.ids = append(f.ids, id)
	f.persistLocked()
}

// Remove unmarks id. Idempotent.
func (f *Favorites) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(id)
	if i < 0 {
		return
	}
	f.ids = append(f.ids[:i], f.ids[i+1:]...)
	f.persistLocked()
}

// Toggle flips membership of id and reports the resulting state.
func (f *Favorites) Toggle(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i := f.indexLocked(id); i >= 0 {
		f.ids = append(f.ids[:i], f.ids[i+1:]...)
		f.persistLocked()
		return false
	}
	f.ids = append(f.ids, id)
	f.persistLocked()
	return true
}

// Has reports whether id is favorited.
func (f *Favorites) Has(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexLocked(id) >= 0
}

// IDs returns a copy of the favorited IDs.
func (f *Favorites) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, len(f.ids))
	copy(out, f.ids)
	return out
}

func (f *Favorites) indexLocked(id string) int {
	for i, v := range f.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (f *Favorites) persistLocked() {
	snapshot := make([]string, len(f.ids))
	copy(snapshot, f.ids)
	f.store.SaveFavorites(snapshot)
}
