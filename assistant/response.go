package assistant

import (
	"time"
)

// Synthesis paths reported in AnswerData.Path.
const (
	PathGenerated = "generated" // grounded answer from the external generator
	PathFallback  = "fallback"  // grounded answer from the deterministic template
	PathNone      = "none"      // ungrounded: nothing retrieved
)

// MatchSummary is one ranked source as exposed to the caller.
type MatchSummary struct {
	Cis       string  `json:"cis"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	MatchedOn string  `json:"matchedOn"`
}

// AnswerData is the success payload of a QueryResponse.
type AnswerData struct {
	Query      string         `json:"query"`
	Answer     string         `json:"answer"`
	Confidence float64        `json:"confidence"`
	Sources    []string       `json:"sources"`
	Path       string         `json:"path"`
	Matches    []MatchSummary `json:"matches"`
}

// QueryResponse is the per-request result: either a full success
// payload or an error message, never both.
type QueryResponse struct {
	Success   bool        `json:"success"`
	Data      *AnswerData `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func successResponse(data *AnswerData) QueryResponse {
	return QueryResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func errorResponse(message string) QueryResponse {
	return QueryResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
