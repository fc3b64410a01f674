package snomed

import (
	"sync/atomic"

	"github.com/alexanderbrown/snomed-squasher/errors"
)

// Store publishes the active Snapshot to concurrent readers. A newer
// terminology version is built off to the side and swapped in with a single
// atomic pointer exchange, so no reader ever observes a half-built graph and
// readers holding the previous snapshot are never disturbed.
type Store struct {
	active atomic.Pointer[Snapshot]
}

// NewStore creates an empty store. Current returns an error until the first
// snapshot is published.
func NewStore() *Store {
	return &Store{}
}

// NewStoreWith creates a store with an initial snapshot already published.
func NewStoreWith(s *Snapshot) *Store {
	store := &Store{}
	store.Publish(s)
	return store
}

// Current returns the active snapshot.
func (st *Store) Current() (*Snapshot, error) {
	s := st.active.Load()
	if s == nil {
		return nil, errors.New("no snapshot loaded")
	}
	return s, nil
}

// Publish atomically replaces the active snapshot.
func (st *Store) Publish(s *Snapshot) {
	st.active.Store(s)
}

// Reload builds a fresh snapshot from the definitions path and publishes it
// only on success. A failed load leaves the previously active snapshot in
// place.
func (st *Store) Reload(definitionsPath string, opts ...Option) (*Snapshot, error) {
	s, err := Load(definitionsPath, opts...)
	if err != nil {
		return nil, err
	}
	st.Publish(s)
	return s, nil
}
