package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateQueryAcceptsFrenchQuestions(t *testing.T) {
	v := NewQueryValidator()

	valid := []string{
		"Quel est le dosage du Doliprane ?",
		"anastrozole",
		"ANASTROZOLE ACCORD 1 mg, comprimé pelliculé",
		"effets de l'aspirine à 500 mg",
		"60002283",
		"solution pour perfusion (intraveineuse)",
		"dosage 2,5 mg/ml à 37°",
	}

	for _, q := range valid {
		if err := v.ValidateQuery(q); err != nil {
			t.Errorf("Expected %q to be valid, got %v", q, err)
		}
	}
}

func TestValidateQueryRejectsEmpty(t *testing.T) {
	v := NewQueryValidator()

	for _, q := range []string{"", "   ", "\t\n"} {
		err := v.ValidateQuery(q)
		if err == nil {
			t.Errorf("Expected %q to be rejected", q)
			continue
		}
		var invalid *InvalidQueryError
		if !errors.As(err, &invalid) {
			t.Errorf("Expected InvalidQueryError, got %T", err)
		}
	}
}

func TestValidateQueryRejectsOversized(t *testing.T) {
	v := NewQueryValidator()

	long := strings.Repeat("a", MaxQueryRunes+1)
	if err := v.ValidateQuery(long); err == nil {
		t.Error("Expected oversized query to be rejected")
	}

	// Exactly at the cap passes.
	exact := strings.Repeat("a", MaxQueryRunes)
	if err := v.ValidateQuery(exact); err != nil {
		t.Errorf("Expected query at the cap to pass, got %v", err)
	}
}

func TestValidateQueryRejectsDangerousContent(t *testing.T) {
	v := NewQueryValidator()

	dangerous := []string{
		"<script>alert(1)</script>",
		"javascript:void(0)",
		"doliprane union select passwords",
		"DROP TABLE medicaments",
		"../etc/passwd",
		"{$ne: null}",
	}

	for _, q := range dangerous {
		err := v.ValidateQuery(q)
		if err == nil {
			t.Errorf("Expected %q to be rejected", q)
			continue
		}
		var invalid *InvalidQueryError
		if !errors.As(err, &invalid) {
			t.Errorf("Expected InvalidQueryError, got %T", err)
		}
	}
}

func TestValidateQueryRejectsUnsupportedCharacters(t *testing.T) {
	v := NewQueryValidator()

	for _, q := range []string{"doliprane <b>", "a = b", "x | y", "tarif en $"} {
		if err := v.ValidateQuery(q); err == nil {
			t.Errorf("Expected %q to be rejected", q)
		}
	}
}
