// Package handlers provides HTTP request handlers for the assistant
// endpoints: question answering, ranked search, CIS lookup and health
// checks, with input validation and consistent JSON formatting.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/medicaments-assistant/assistant"
	"github.com/giygas/medicaments-assistant/catalog"
	"github.com/giygas/medicaments-assistant/interfaces"
	"github.com/giygas/medicaments-assistant/logging"
	"github.com/giygas/medicaments-assistant/search"
	"github.com/giygas/medicaments-assistant/validation"
	"github.com/go-chi/chi/v5"
)

// RespondWithJSON writes a JSON response.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error body with the given status code.
func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// askRequest is the body of a POST /ask call.
type askRequest struct {
	Question string `json:"question"`
}

// Ask answers a free-text question about the catalog. Invalid input
// yields 400, a missing catalog 503; degraded generation still answers
// with 200 and a lower confidence.
func Ask(dataStore interfaces.DataStore, synthesizer *assistant.Synthesizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "invalid JSON body, expected {\"question\": \"...\"}")
			return
		}

		if !dataStore.IsReady() {
			RespondWithError(w, http.StatusServiceUnavailable, "catalog is not loaded yet")
			return
		}

		response := synthesizer.Answer(r.Context(), req.Question)
		if !response.Success {
			RespondWithJSON(w, http.StatusBadRequest, response)
			return
		}
		RespondWithJSON(w, http.StatusOK, response)
	}
}

// searchResponse wraps ranked search results with their query echo.
type searchResponse struct {
	Query   string                   `json:"query"`
	Count   int                      `json:"count"`
	Results []assistant.MatchSummary `json:"results"`
}

// SearchMedicaments returns the ranked candidates for a query. The
// optional limit parameter caps results; non-numeric or non-positive
// values are rejected, values above the cap are clamped.
func SearchMedicaments(dataStore interfaces.DataStore, retriever *search.Retriever,
	validator interfaces.QueryValidator) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		query := chi.URLParam(r, "query")
		if err := validator.ValidateQuery(query); err != nil {
			var invalid *validation.InvalidQueryError
			if errors.As(err, &invalid) {
				RespondWithError(w, http.StatusBadRequest, invalid.Error())
				return
			}
			RespondWithError(w, http.StatusBadRequest, "invalid query")
			return
		}

		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				logging.Warn("Unusual user input", "limit", raw)
				RespondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		if limit > search.MaxLimit {
			limit = search.MaxLimit
		}

		snap := dataStore.GetSnapshot()
		if snap == nil {
			RespondWithError(w, http.StatusServiceUnavailable, "catalog is not loaded yet")
			return
		}

		results := retriever.Search(snap.Catalog, snap.Index, query, limit)
		summaries := make([]assistant.MatchSummary, 0, len(results))
		for _, res := range results {
			summaries = append(summaries, assistant.MatchSummary{
				Cis:       res.Cis,
				Name:      res.Record.Name,
				Score:     res.Score,
				MatchedOn: res.MatchedOn,
			})
		}

		RespondWithJSON(w, http.StatusOK, searchResponse{
			Query:   strings.TrimSpace(query),
			Count:   len(summaries),
			Results: summaries,
		})
	}
}

// cisPattern matched in handlers must be exactly 8 digits.
func validCis(code string) bool {
	if len(code) != 8 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FindMedicamentByCIS looks a record up by its exact CIS code.
func FindMedicamentByCIS(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !validCis(code) {
			RespondWithError(w, http.StatusBadRequest, "CIS code must be exactly 8 digits")
			return
		}

		snap := dataStore.GetSnapshot()
		if snap == nil {
			RespondWithError(w, http.StatusServiceUnavailable, "catalog is not loaded yet")
			return
		}

		record, err := snap.Catalog.Lookup(code)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				RespondWithError(w, http.StatusNotFound, fmt.Sprintf("no medicament with CIS %s", code))
				return
			}
			RespondWithError(w, http.StatusInternalServerError, "lookup failed")
			return
		}

		RespondWithJSON(w, http.StatusOK, record)
	}
}

// HealthResponse defines the structure for consistent JSON ordering.
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// HealthCheck returns server health information.
func HealthCheck(dataStore interfaces.DataStore, checker interfaces.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, details, httpStatus := checker.HealthCheck()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		uptime := time.Since(dataStore.GetServerStartTime())

		response := HealthResponse{
			Status:        status,
			UptimeSeconds: uptime.Seconds(),
			Data:          details,
			System: map[string]any{
				"goroutines": runtime.NumGoroutine(),
				"memory": map[string]any{
					"alloc_mb":       int(m.Alloc / 1024 / 1024),
					"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
					"sys_mb":         int(m.Sys / 1024 / 1024),
					"num_gc":         m.NumGC,
				},
			},
		}

		RespondWithJSON(w, httpStatus, response)
	}
}
