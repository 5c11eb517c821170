package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/giygas/medicaments-assistant/interfaces"
	"github.com/giygas/medicaments-assistant/logging"
	"github.com/giygas/medicaments-assistant/metrics"
	"github.com/giygas/medicaments-assistant/search"
	"github.com/giygas/medicaments-assistant/validation"
)

// Options are the synthesizer's tunable constants.
type Options struct {
	// TopK is how many retrieved records enter the grounding context.
	TopK int
	// GenerationTimeout bounds the external generation call.
	GenerationTimeout time.Duration
	// DefaultCertainty stands in when the generator reports none.
	DefaultCertainty float64
	// FallbackCertainty is the quality signal assigned to templated
	// answers, lowering their confidence below generated ones.
	FallbackCertainty float64
}

// DefaultOptions returns the constants used when no configuration
// overrides them.
func DefaultOptions() Options {
	return Options{
		TopK:              3,
		GenerationTimeout: 20 * time.Second,
		DefaultCertainty:  0.85,
		FallbackCertainty: 0.7,
	}
}

// Synthesizer turns a query into a QueryResponse: retrieve, ground,
// generate (or fall back), score confidence.
type Synthesizer struct {
	store     interfaces.DataStore
	retriever *search.Retriever
	scorer    *search.ConfidenceScorer
	validator interfaces.QueryValidator
	generator Generator // nil means generation is not configured
	opts      Options
}

// NewSynthesizer wires the answer pipeline. generator may be nil, in
// which case every grounded answer uses the fallback template.
func NewSynthesizer(store interfaces.DataStore, retriever *search.Retriever,
	scorer *search.ConfidenceScorer, validator interfaces.QueryValidator,
	generator Generator, opts Options) *Synthesizer {

	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = DefaultOptions().GenerationTimeout
	}
	return &Synthesizer{
		store:     store,
		retriever: retriever,
		scorer:    scorer,
		validator: validator,
		generator: generator,
		opts:      opts,
	}
}

// Answer processes one question end to end. It never returns a hard
// failure for generation problems: degraded paths produce a successful
// response with lower confidence. Only invalid input or a missing
// catalog yield an error response.
func (s *Synthesizer) Answer(ctx context.Context, query string) QueryResponse {
	if err := s.validator.ValidateQuery(query); err != nil {
		var invalid *validation.InvalidQueryError
		if errors.As(err, &invalid) {
			return errorResponse(invalid.Error())
		}
		return errorResponse("invalid query")
	}

	snap := s.store.GetSnapshot()
	if snap == nil {
		return errorResponse("catalog is not loaded yet")
	}

	start := time.Now()
	results := s.retriever.Search(snap.Catalog, snap.Index, query, s.opts.TopK)
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())

	if len(results) == 0 {
		return s.ungrounded(query)
	}
	return s.grounded(ctx, query, results)
}

// ungrounded produces the templated "insufficient information" answer
// with the confidence floor. Sources are empty: the score must never
// claim evidence that was not retrieved.
func (s *Synthesizer) ungrounded(query string) QueryResponse {
	metrics.QueriesTotal.WithLabelValues(PathNone).Inc()

	confidence := s.scorer.Score(nil, 0)
	if confidence > s.scorer.Floor() {
		confidence = s.scorer.Floor()
	}

	return successResponse(&AnswerData{
		Query:      query,
		Answer:     noMatchAnswer,
		Confidence: confidence,
		Sources:    []string{},
		Path:       PathNone,
		Matches:    []MatchSummary{},
	})
}

func (s *Synthesizer) grounded(ctx context.Context, query string, results []search.RetrievalResult) QueryResponse {
	groundingContext, sources := buildContext(results)

	if s.generator != nil {
		genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
		gen, err := s.generator.Generate(genCtx, query, groundingContext)
		cancel()

		if err == nil {
			certainty := gen.Certainty
			if certainty <= 0 {
				certainty = s.opts.DefaultCertainty
			}
			metrics.QueriesTotal.WithLabelValues(PathGenerated).Inc()
			return successResponse(&AnswerData{
				Query:      query,
				Answer:     gen.Answer,
				Confidence: s.scorer.Score(results, certainty),
				Sources:    sources,
				Path:       PathGenerated,
				Matches:    summarize(results),
			})
		}

		unavailable := &GenerationUnavailableError{Err: err}
		logging.Warn("Generation unavailable, using fallback synthesis", "error", unavailable.Error())
		metrics.GenerationFailures.Inc()
	}

	// The fallback template is built from the top record alone, so it
	// is the only source the answer can honestly claim.
	metrics.QueriesTotal.WithLabelValues(PathFallback).Inc()
	return successResponse(&AnswerData{
		Query:      query,
		Answer:     fallbackAnswer(results[0].Record),
		Confidence: s.scorer.Score(results, s.opts.FallbackCertainty),
		Sources:    []string{results[0].Cis},
		Path:       PathFallback,
		Matches:    summarize(results),
	})
}

func summarize(results []search.RetrievalResult) []MatchSummary {
	out := make([]MatchSummary, 0, len(results))
	for _, res := range results {
		out = append(out, MatchSummary{
			Cis:       res.Cis,
			Name:      res.Record.Name,
			Score:     res.Score,
			MatchedOn: res.MatchedOn,
		})
	}
	return out
}
