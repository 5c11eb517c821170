package assistant

import (
	"fmt"
	"strings"

	"github.com/giygas/medicaments-assistant/catalog"
	"github.com/giygas/medicaments-assistant/search"
)

// maxContextChars bounds the grounding context passed to generation.
const maxContextChars = 4000

const noMatchAnswer = "Aucune information pertinente n'a été trouvée dans la base de données " +
	"pour cette question. Veuillez reformuler ou préciser le nom du médicament."

// buildContext assembles the top results' structured fields into the
// grounding context and returns it together with the CIS codes actually
// included. Sources reported to the caller are exactly these codes.
func buildContext(results []search.RetrievalResult) (string, []string) {
	var parts []string
	var sources []string
	length := 0

	for _, res := range results {
		entry := contextEntry(res)
		if length+len(entry) > maxContextChars && len(parts) > 0 {
			break
		}
		parts = append(parts, entry)
		sources = append(sources, res.Cis)
		length += len(entry)
	}

	return strings.Join(parts, "\n\n"), sources
}

func contextEntry(res search.RetrievalResult) string {
	rec := res.Record

	var comps []string
	for i := range rec.Components {
		c := &rec.Components[i]
		if c.Dosage == "" {
			continue
		}
		comps = append(comps, strings.TrimSpace(c.Dosage+" "+c.RefDosage))
	}

	return fmt.Sprintf("Médicament: %s\nCIS: %s\nForme: %s\nAdministration: %s\nStatut: %s\nComposition: %s\nPertinence: %.3f",
		rec.Name, rec.Cis, rec.PharmaForm, rec.AdminRoute, statusLabel(rec.Status),
		strings.Join(comps, ", "), res.Score)
}

// fallbackAnswer builds a templated answer from the top record's fields
// when generation is unavailable. Deterministic on purpose.
func fallbackAnswer(rec *catalog.MedicationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s est un médicament", rec.Name)
	if rec.PharmaForm != "" {
		fmt.Fprintf(&b, " sous forme de %s", rec.PharmaForm)
	}
	if rec.AdminRoute != "" {
		fmt.Fprintf(&b, ", administré par voie %s", rec.AdminRoute)
	}
	b.WriteString(".")
	if dosage := rec.ActiveDosage(); dosage != "" {
		fmt.Fprintf(&b, " Dosage de la substance active: %s.", dosage)
	}
	fmt.Fprintf(&b, " Statut d'autorisation: %s.", statusLabel(rec.Status))
	return b.String()
}

func statusLabel(s catalog.Status) string {
	switch s {
	case catalog.StatusActive:
		return "autorisation active"
	case catalog.StatusWithdrawn:
		return "autorisation retirée"
	case catalog.StatusSuspended:
		return "autorisation suspendue"
	default:
		return "statut inconnu"
	}
}
