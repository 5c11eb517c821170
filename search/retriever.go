package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/giygas/medicaments-assistant/catalog"
)

// MaxLimit caps the number of results a single search may return.
const MaxLimit = 50

// cisPattern matches an 8-digit CIS code embedded in a query.
var cisPattern = regexp.MustCompile(`\b\d{8}\b`)

// RetrievalResult is one ranked candidate: the matched record, its
// similarity score in [0,1] and the fields the query matched on.
type RetrievalResult struct {
	Record    *catalog.MedicationRecord
	Cis       string
	Score     float64
	MatchedOn string
}

// Options are the tunable ranking constants. The defaults are exposed
// through configuration; none of them were validated against relevance
// judgments, so treat them as starting points.
type Options struct {
	LexicalWeight  float64
	SemanticWeight float64
	Threshold      float64
}

// DefaultOptions returns the ranking constants used when no
// configuration overrides them.
func DefaultOptions() Options {
	return Options{
		LexicalWeight:  0.5,
		SemanticWeight: 0.5,
		Threshold:      0.05,
	}
}

// Retriever ranks catalog records against free-text queries.
type Retriever struct {
	opts Options
}

// NewRetriever creates a retriever with the given ranking options.
func NewRetriever(opts Options) *Retriever {
	if opts.LexicalWeight <= 0 && opts.SemanticWeight <= 0 {
		opts = DefaultOptions()
	}
	return &Retriever{opts: opts}
}

// Search returns ranked candidates for the query, best first. Results
// below the relevance threshold are excluded; an empty result is a
// valid outcome, not an error. Ordering is deterministic: descending
// score, ties broken by ascending CIS code.
func (r *Retriever) Search(store *catalog.Store, idx *Index, query string, limit int) []RetrievalResult {
	if store == nil || idx == nil || idx.Len() == 0 {
		return nil
	}
	if limit <= 0 {
		return nil
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}

	// Fast path: an explicit CIS code in the query addresses one record
	// directly, no similarity scoring needed.
	if code := cisPattern.FindString(normalized); code != "" && store.Has(code) {
		rec, err := store.Lookup(code)
		if err == nil {
			return []RetrievalResult{{Record: rec, Cis: code, Score: 1.0, MatchedOn: fieldCis}}
		}
	}

	qTokens := tokenSet(Tokenize(query))
	qTrigrams := trigramSet(normalized)
	qVector := idx.queryVector(normalized)

	lexW, semW := r.opts.LexicalWeight, r.opts.SemanticWeight
	if qVector == nil || semW <= 0 {
		lexW, semW = 1, 0
	} else if lexW <= 0 {
		lexW, semW = 0, 1
	} else {
		total := lexW + semW
		lexW, semW = lexW/total, semW/total
	}

	results := make([]RetrievalResult, 0, limit)
	for i := range idx.entries {
		entry := &idx.entries[i]

		lexical, exact := lexicalScore(normalized, qTokens, qTrigrams, entry)
		score := lexical * lexW
		if semW > 0 {
			score += dot(qVector, entry.vector) * semW
		}
		// A query that is exactly a record's name is that record,
		// whatever the blended score says.
		if exact {
			score = 1.0
		}

		if score < r.opts.Threshold {
			continue
		}

		rec, err := store.Lookup(entry.cis)
		if err != nil {
			continue
		}
		results = append(results, RetrievalResult{
			Record:    rec,
			Cis:       entry.cis,
			Score:     clamp01(score),
			MatchedOn: matchedFields(qTokens, entry, lexical),
		})
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Cis < results[b].Cis
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// lexicalScore combines token coverage and trigram similarity. It also
// reports whether the query equals the record name after normalization.
func lexicalScore(normalized string, qTokens, qTrigrams map[string]struct{}, entry *indexEntry) (float64, bool) {
	if normalized == entry.normName {
		return 1.0, true
	}

	coverage := 0.0
	if len(qTokens) > 0 {
		hits := 0
		for tok := range qTokens {
			if _, ok := entry.tokens[tok]; ok {
				hits++
			}
		}
		coverage = float64(hits) / float64(len(qTokens))
	}

	score := diceCoefficient(qTrigrams, entry.trigrams)
	if coverage > score {
		score = coverage
	}

	// Substring of the record name, e.g. "anastrozole" against
	// "ANASTROZOLE ACCORD 1 mg".
	if len(normalized) >= 3 && strings.Contains(entry.normName, normalized) && score < 0.9 {
		score = 0.9
	}

	return score, false
}

// matchedFields names the record fields sharing tokens with the query,
// or "semantic" when only the vector space produced the match.
func matchedFields(qTokens map[string]struct{}, entry *indexEntry, lexical float64) string {
	var matched []string
	for _, field := range []string{fieldName, fieldForm, fieldRoute, fieldComponents} {
		set := entry.fields[field]
		for tok := range qTokens {
			if _, ok := set[tok]; ok {
				matched = append(matched, field)
				break
			}
		}
	}
	if len(matched) == 0 {
		if lexical > 0 {
			return fieldName
		}
		return fieldSemantic
	}
	return strings.Join(matched, ",")
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
