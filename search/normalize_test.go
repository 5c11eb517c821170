package search

import (
	"reflect"
	"testing"
)

func TestNormalizeStripsAccentsAndCase(t *testing.T) {
	cases := map[string]string{
		"Médicament":                   "medicament",
		"COMPRIMÉ PELLICULÉ":           "comprime pellicule",
		"voie orale":                   "voie orale",
		"  espaces   multiples  ":      "espaces multiples",
		"ponctuation, points; (aussi)": "ponctuation points aussi",
		"ANASTROZOLE ACCORD 1 mg":      "anastrozole accord 1 mg",
		"":                             "",
	}

	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	got := Tokenize("Quel est le dosage du Doliprane ?")
	want := []string{"dosage", "doliprane"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeKeepsDigits(t *testing.T) {
	got := Tokenize("anastrozole 1 mg")
	want := []string{"anastrozole", "1", "mg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestDiceCoefficient(t *testing.T) {
	a := trigramSet("anastrozole")
	if got := diceCoefficient(a, a); got != 1.0 {
		t.Errorf("Expected identical sets to score 1.0, got %g", got)
	}

	b := trigramSet("doliprane")
	if got := diceCoefficient(a, b); got > 0.3 {
		t.Errorf("Expected dissimilar names to score low, got %g", got)
	}

	if got := diceCoefficient(a, map[string]struct{}{}); got != 0 {
		t.Errorf("Expected empty set to score 0, got %g", got)
	}
}

func TestTrigramSetSimilarNamesOverlap(t *testing.T) {
	a := trigramSet("anastrozole")
	b := trigramSet("anastrozol") // truncated query
	if got := diceCoefficient(a, b); got < 0.7 {
		t.Errorf("Expected near-identical names to overlap strongly, got %g", got)
	}
}
