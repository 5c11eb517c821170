package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/giygas/medicaments-assistant/catalog"
	"github.com/giygas/medicaments-assistant/embedding"
)

// matched-field labels reported in RetrievalResult explanations
const (
	fieldCis        = "cis"
	fieldName       = "name"
	fieldForm       = "pharmaForm"
	fieldRoute      = "adminRoute"
	fieldComponents = "components"
	fieldSemantic   = "semantic"
)

// indexEntry is the derived search representation of one record.
type indexEntry struct {
	cis      string
	normName string
	tokens   map[string]struct{} // all fields combined
	fields   map[string]map[string]struct{}
	trigrams map[string]struct{}
	vector   []float64
}

// Index holds the derived retrieval structures for one catalog
// snapshot. It is rebuilt whenever the snapshot is replaced and is
// read-only afterwards.
type Index struct {
	entries  []indexEntry
	embedder embedding.Embedder
	hasVecs  bool
}

// BuildIndex derives the retrieval index from the catalog. The build is
// pure and deterministic: the same catalog always yields the same
// index. A nil embedder disables semantic scoring.
func BuildIndex(store *catalog.Store, embedder embedding.Embedder) (*Index, error) {
	records := store.Records()

	idx := &Index{
		entries:  make([]indexEntry, 0, len(records)),
		embedder: embedder,
	}

	corpus := make([]string, 0, len(records))
	for i := range records {
		rec := &records[i]

		fields := map[string]map[string]struct{}{
			fieldName:       tokenSet(Tokenize(rec.Name)),
			fieldForm:       tokenSet(Tokenize(rec.PharmaForm)),
			fieldRoute:      tokenSet(Tokenize(rec.AdminRoute)),
			fieldComponents: tokenSet(Tokenize(componentText(rec))),
		}

		all := make(map[string]struct{})
		for _, set := range fields {
			for tok := range set {
				all[tok] = struct{}{}
			}
		}

		normName := Normalize(rec.Name)
		entry := indexEntry{
			cis:      rec.Cis,
			normName: normName,
			tokens:   all,
			fields:   fields,
			trigrams: trigramSet(normName),
		}

		idx.entries = append(idx.entries, entry)
		corpus = append(corpus, searchableText(all))
	}

	if embedder != nil && len(corpus) > 0 {
		if err := embedder.Prepare(corpus); err != nil {
			return nil, fmt.Errorf("failed to prepare embedder: %w", err)
		}
		for i := range idx.entries {
			vec, err := embedder.Embed(corpus[i])
			if err != nil {
				return nil, fmt.Errorf("failed to embed record %s: %w", idx.entries[i].cis, err)
			}
			idx.entries[i].vector = vec
		}
		idx.hasVecs = embedder.Dimension() > 0
	}

	return idx, nil
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// HasVectors reports whether semantic scoring is available.
func (idx *Index) HasVectors() bool {
	return idx != nil && idx.hasVecs
}

// queryVector embeds a normalized query, or returns nil when semantic
// scoring is unavailable.
func (idx *Index) queryVector(normalized string) []float64 {
	if !idx.HasVectors() {
		return nil
	}
	vec, err := idx.embedder.Embed(normalized)
	if err != nil {
		return nil
	}
	return vec
}

func componentText(rec *catalog.MedicationRecord) string {
	var b strings.Builder
	for i := range rec.Components {
		b.WriteString(rec.Components[i].Dosage)
		b.WriteByte(' ')
		b.WriteString(rec.Components[i].RefDosage)
		b.WriteByte(' ')
	}
	return b.String()
}

// searchableText flattens a token set into the deterministic text fed
// to the embedder. Order does not affect TF-IDF, but sorting keeps the
// corpus byte-identical across builds.
func searchableText(tokens map[string]struct{}) string {
	out := make([]string, 0, len(tokens))
	for tok := range tokens {
		out = append(out, tok)
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}
