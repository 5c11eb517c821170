// Package scheduler loads catalog snapshots and schedules their
// periodic reload. A reload builds the new (catalog, index) pair off to
// the side and publishes it atomically, so readers never see a partial
// state.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/medicaments-assistant/catalog"
	"github.com/giygas/medicaments-assistant/data"
	"github.com/giygas/medicaments-assistant/embedding"
	"github.com/giygas/medicaments-assistant/interfaces"
	"github.com/giygas/medicaments-assistant/logging"
	"github.com/giygas/medicaments-assistant/search"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements interfaces.Scheduler
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles snapshot loading and scheduled reloads.
type Scheduler struct {
	dataStore   interfaces.DataStore
	catalogPath string
	scheduler   *gocron.Scheduler
}

// NewScheduler creates a scheduler reloading from the given snapshot
// file.
func NewScheduler(dataStore interfaces.DataStore, catalogPath string) *Scheduler {
	return &Scheduler{
		dataStore:   dataStore,
		catalogPath: catalogPath,
		scheduler:   gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial load and schedules reloads at 06:00 and
// 18:00 daily. The initial load is fatal on error: the process must not
// start serving with a corrupt or missing catalog.
func (s *Scheduler) Start() error {
	if err := s.UpdateData(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.UpdateData(); err != nil {
			logging.Error("Failed to reload catalog", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule catalog reloads", "error", err)
		return fmt.Errorf("failed to schedule catalog reloads: %w", err)
	}

	s.scheduler.StartAsync()
	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// UpdateData loads the snapshot file, builds the index and publishes
// the new pair. Concurrent reload attempts coalesce: if one is already
// running, this call is a no-op.
func (s *Scheduler) UpdateData() error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Catalog reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting catalog reload", "path", s.catalogPath)
	start := time.Now()

	snap, err := BuildSnapshot(s.catalogPath)
	if err != nil {
		return err
	}

	s.dataStore.UpdateSnapshot(snap)

	logging.Info("Catalog reload completed",
		"duration", time.Since(start).String(),
		"medicament_count", snap.Catalog.Len(),
	)
	return nil
}

// BuildSnapshot loads a catalog file and derives its retrieval index.
// Pure with respect to the data store: nothing is published here.
func BuildSnapshot(path string) (*data.Snapshot, error) {
	store, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	index, err := search.BuildIndex(store, embedding.NewTFIDF())
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	return &data.Snapshot{
		Catalog:  store,
		Index:    index,
		LoadedAt: time.Now(),
	}, nil
}

// startStalenessMonitoring warns when the snapshot has not been
// refreshed for more than a day past the reload schedule.
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been reloaded in over 25 hours")
			}
		}
	}()
}
