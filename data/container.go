// Package data provides thread-safe snapshot storage for the catalog
// and its retrieval index. The pair is published atomically, so readers
// either see the old snapshot in full or the new one in full, never a
// half-updated state.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/medicaments-assistant/catalog"
	"github.com/giygas/medicaments-assistant/search"
)

// Snapshot is one immutable (catalog, index) pair. A reload builds a
// fresh Snapshot off to the side and publishes it in a single swap.
type Snapshot struct {
	Catalog  *catalog.Store
	Index    *search.Index
	LoadedAt time.Time
}

// Container holds the current snapshot behind an atomic pointer for
// zero-downtime replacement. The hot path takes no locks.
type Container struct {
	snapshot        atomic.Value // *Snapshot
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewContainer creates a Container with no snapshot loaded.
func NewContainer() *Container {
	c := &Container{}
	c.lastUpdated.Store(time.Time{})
	c.serverStartTime.Store(time.Time{})
	return c
}

// GetSnapshot returns the current snapshot, or nil before the first
// load completes.
func (c *Container) GetSnapshot() *Snapshot {
	if v := c.snapshot.Load(); v != nil {
		if snap, ok := v.(*Snapshot); ok {
			return snap
		}
	}
	return nil
}

// IsReady reports whether a non-empty catalog and its index are loaded.
func (c *Container) IsReady() bool {
	snap := c.GetSnapshot()
	return snap != nil && snap.Catalog.Len() > 0 && snap.Index.Len() > 0
}

// UpdateSnapshot atomically publishes a new snapshot.
func (c *Container) UpdateSnapshot(snap *Snapshot) {
	c.snapshot.Store(snap)
	c.lastUpdated.Store(time.Now())
}

// GetLastUpdated returns the timestamp of the last snapshot swap.
func (c *Container) GetLastUpdated() time.Time {
	if v := c.lastUpdated.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// IsUpdating returns true if a reload is currently in progress.
func (c *Container) IsUpdating() bool {
	return c.updating.Load()
}

// BeginUpdate marks the start of a reload. Returns false if another
// reload is already in progress.
func (c *Container) BeginUpdate() bool {
	return c.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload.
func (c *Container) EndUpdate() {
	c.updating.Store(false)
}

// SetServerStartTime records when the process started serving.
func (c *Container) SetServerStartTime(t time.Time) {
	c.serverStartTime.Store(t)
}

// GetServerStartTime returns when the process started serving.
func (c *Container) GetServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}
