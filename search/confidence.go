package search

// ConfidenceOptions are the tunable constants of the confidence blend.
type ConfidenceOptions struct {
	// Floor caps the confidence reported without grounding evidence.
	Floor float64
	// NoMatch is the confidence reported when retrieval found nothing.
	// Never exceeds Floor.
	NoMatch float64
	// GapRef is the top-vs-runner-up gap at which the gap bonus
	// saturates.
	GapRef float64
}

// DefaultConfidenceOptions returns the constants used when no
// configuration overrides them.
func DefaultConfidenceOptions() ConfidenceOptions {
	return ConfidenceOptions{
		Floor:   0.3,
		NoMatch: 0.25,
		GapRef:  0.2,
	}
}

// ConfidenceScorer reduces retrieval scores and an optional generation
// certainty into one bounded confidence value.
type ConfidenceScorer struct {
	opts ConfidenceOptions
}

// NewConfidenceScorer creates a scorer with the given options.
func NewConfidenceScorer(opts ConfidenceOptions) *ConfidenceScorer {
	if opts.Floor <= 0 || opts.Floor > 1 {
		opts.Floor = DefaultConfidenceOptions().Floor
	}
	if opts.NoMatch <= 0 || opts.NoMatch > opts.Floor {
		opts.NoMatch = opts.Floor * 5 / 6
	}
	if opts.GapRef <= 0 {
		opts.GapRef = DefaultConfidenceOptions().GapRef
	}
	return &ConfidenceScorer{opts: opts}
}

// Floor returns the confidence cap for ungrounded answers.
func (s *ConfidenceScorer) Floor() float64 { return s.opts.Floor }

// Score computes the confidence for a ranked retrieval list. The value
// is monotonically non-decreasing in the top score; a clear gap to the
// runner-up raises it, a near-tie lowers it. A generation certainty in
// (0,1] blends multiplicatively, so it can only temper the retrieval
// evidence, never inflate it. certainty <= 0 means no signal.
func (s *ConfidenceScorer) Score(results []RetrievalResult, certainty float64) float64 {
	if len(results) == 0 {
		return s.opts.NoMatch
	}

	top := clamp01(results[0].Score)
	gap := top
	if len(results) > 1 {
		gap = top - clamp01(results[1].Score)
	}

	gapFactor := gap / s.opts.GapRef
	if gapFactor > 1 {
		gapFactor = 1
	}

	conf := top * (0.8 + 0.2*gapFactor)
	if certainty > 0 {
		conf *= clamp01(certainty)
	}
	return clamp01(conf)
}
