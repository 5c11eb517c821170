// Package health provides liveness reporting for the assistant.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/medicaments-assistant/interfaces"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface.
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
}

// NewHealthChecker creates a health checker with injected dependencies.
func NewHealthChecker(dataStore interfaces.DataStore) *HealthCheckerImpl {
	return &HealthCheckerImpl{dataStore: dataStore}
}

// HealthCheck reports whether the catalog and index are loaded and how
// stale the snapshot is.
func (h *HealthCheckerImpl) HealthCheck() (string, map[string]any, int) {
	snap := h.dataStore.GetSnapshot()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	dataAge := time.Since(lastUpdate)

	var status string
	var httpStatus int
	switch {
	case !h.dataStore.IsReady():
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 48*time.Hour:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	records := 0
	indexed := 0
	if snap != nil {
		records = snap.Catalog.Len()
		indexed = snap.Index.Len()
	}

	details := map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"medicaments":    records,
		"indexed":        indexed,
		"is_updating":    isUpdating,
		"next_update":    h.CalculateNextUpdate().Format(time.RFC3339),
	}

	return status, details, httpStatus
}

// CalculateNextUpdate returns the next scheduled snapshot reload time.
// Reloads run at 06:00 and 18:00 local time.
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := time.Now()

	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	if now.Before(sixAM) {
		return sixAM
	}
	if now.Before(sixPM) {
		return sixPM
	}
	return sixAM.AddDate(0, 0, 1)
}
