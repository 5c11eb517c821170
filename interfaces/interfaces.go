// Package interfaces defines core abstractions for the medicaments
// assistant to improve testability and separation of concerns.
package interfaces

import (
	"time"

	"github.com/giygas/medicaments-assistant/data"
)

// DataStore defines the contract for snapshot storage. It provides
// lock-free access to the current (catalog, index) pair with atomic
// swaps for zero-downtime reloads.
type DataStore interface {
	GetSnapshot() *data.Snapshot
	IsReady() bool
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time
	SetServerStartTime(t time.Time)

	UpdateSnapshot(snap *data.Snapshot)
	BeginUpdate() bool
	EndUpdate()
}

// QueryValidator defines the contract for user input validation.
type QueryValidator interface {
	ValidateQuery(query string) error
}

// Scheduler defines the contract for snapshot reload scheduling.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for liveness reporting.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
	CalculateNextUpdate() time.Time
}
