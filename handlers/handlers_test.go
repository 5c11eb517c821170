package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/medicaments-assistant/assistant"
	"github.com/giygas/medicaments-assistant/catalog"
	"github.com/giygas/medicaments-assistant/data"
	"github.com/giygas/medicaments-assistant/embedding"
	"github.com/giygas/medicaments-assistant/health"
	"github.com/giygas/medicaments-assistant/search"
	"github.com/giygas/medicaments-assistant/validation"
	"github.com/go-chi/chi/v5"
)

const handlersSnapshot = `{"cis":"60002283","name":"ANASTROZOLE ACCORD 1 mg, comprimé pelliculé","pharmaForm":"comprimé pelliculé","adminRoute":"orale","status":"active","components":[{"dosage":"1 mg","refDosage":"un comprimé","nature":"active"}]}
{"cis":"60002284","name":"DOLIPRANE 500 mg, gélule","pharmaForm":"gélule","adminRoute":"orale","status":"active","components":[{"dosage":"500 mg","refDosage":"une gélule","nature":"active"}]}
`

func testRouter(t *testing.T, loaded bool) *chi.Mux {
	t.Helper()

	container := data.NewContainer()
	container.SetServerStartTime(time.Now())

	if loaded {
		store, err := catalog.Load(strings.NewReader(handlersSnapshot))
		if err != nil {
			t.Fatalf("Failed to load catalog: %v", err)
		}
		idx, err := search.BuildIndex(store, embedding.NewTFIDF())
		if err != nil {
			t.Fatalf("Failed to build index: %v", err)
		}
		container.UpdateSnapshot(&data.Snapshot{Catalog: store, Index: idx, LoadedAt: time.Now()})
	}

	retriever := search.NewRetriever(search.DefaultOptions())
	scorer := search.NewConfidenceScorer(search.DefaultConfidenceOptions())
	validator := validation.NewQueryValidator()
	synthesizer := assistant.NewSynthesizer(container, retriever, scorer, validator, nil, assistant.DefaultOptions())

	router := chi.NewRouter()
	router.Post("/ask", Ask(container, synthesizer))
	router.Get("/search/{query}", SearchMedicaments(container, retriever, validator))
	router.Get("/medicament/{code}", FindMedicamentByCIS(container))
	router.Get("/health", HealthCheck(container, health.NewHealthChecker(container)))
	return router
}

func doRequest(t *testing.T, router *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAskReturnsAnswer(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodPost, "/ask", `{"question":"anastrozole"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp assistant.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	if resp.Data == nil || resp.Data.Answer == "" {
		t.Error("Expected a non-empty answer")
	}
	if resp.Timestamp == "" {
		t.Error("Expected a timestamp")
	}
}

func TestAskInvalidBody(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodPost, "/ask", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAskInvalidQuestion(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodPost, "/ask", `{"question":"<script>alert(1)</script>"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var resp assistant.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("Expected success=false for invalid question")
	}
	if resp.Error == "" {
		t.Error("Expected an error message")
	}
}

func TestAskBeforeCatalogLoad(t *testing.T) {
	router := testRouter(t, false)

	rec := doRequest(t, router, http.MethodPost, "/ask", `{"question":"anastrozole"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/search/anastrozole", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Query   string                   `json:"query"`
		Count   int                      `json:"count"`
		Results []assistant.MatchSummary `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count == 0 || len(resp.Results) == 0 {
		t.Fatal("Expected results")
	}
	if resp.Results[0].Cis != "60002283" {
		t.Errorf("Expected ANASTROZOLE first, got %s", resp.Results[0].Cis)
	}
}

func TestSearchLimitValidation(t *testing.T) {
	router := testRouter(t, true)

	for _, target := range []string{"/search/anastrozole?limit=0", "/search/anastrozole?limit=-3", "/search/anastrozole?limit=abc"} {
		rec := doRequest(t, router, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", target, rec.Code)
		}
	}

	// Oversized limit is clamped, not rejected.
	rec := doRequest(t, router, http.MethodGet, "/search/anastrozole?limit=9999", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for clamped limit, got %d", rec.Code)
	}
}

func TestSearchInvalidQuery(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/search/%7B$ne:%20null%7D", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestFindMedicamentByCIS(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/medicament/60002283", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var record catalog.MedicationRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if record.Cis != "60002283" {
		t.Errorf("Expected CIS 60002283, got %s", record.Cis)
	}
	if record.Name == "" {
		t.Error("Expected a record name")
	}
}

func TestFindMedicamentByCISErrors(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/medicament/99999999", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown code, got %d", rec.Code)
	}

	for _, code := range []string{"123", "abcdefgh", "600022831"} {
		rec := doRequest(t, router, http.MethodGet, "/medicament/"+code, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for code %q, got %d", code, rec.Code)
		}
	}
}

func TestHealthCheckLoaded(t *testing.T) {
	router := testRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", resp.Status)
	}
	if resp.Data["medicaments"] != float64(2) {
		t.Errorf("Expected 2 medicaments, got %v", resp.Data["medicaments"])
	}
}

func TestHealthCheckBeforeLoad(t *testing.T) {
	router := testRouter(t, false)

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Expected unhealthy, got %s", resp.Status)
	}
}
