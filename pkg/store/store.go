// Package store holds the current analysis snapshot.
//
// A [Store] has exactly one slot. Writers replace the whole snapshot at
// once, so a reader sees either the previous or the new analysis, never a
// mix of both. Snapshots must not be modified after they are stored.
package store

import (
	"sync/atomic"

	"github.com/matzehuels/sbomlens/pkg/analysis"
)

// Store is a single-slot snapshot holder safe for concurrent use.
// The zero value is an empty store.
type Store struct {
	current atomic.Pointer[analysis.Snapshot]
}

// New returns an empty store.
func New() *Store { return &Store{} }

// Current returns the stored snapshot, or nil when nothing was stored.
func (s *Store) Current() *analysis.Snapshot { return s.current.Load() }

// Replace stores snap and returns the snapshot it replaced. The last
// writer wins.
func (s *Store) Replace(snap *analysis.Snapshot) *analysis.Snapshot {
	return s.current.Swap(snap)
}

// Clear empties the store.
func (s *Store) Clear() { s.current.Store(nil) }
