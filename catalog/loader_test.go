package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSnapshot = `{"cis":"60002283","name":"ANASTROZOLE ACCORD 1 mg, comprimé pelliculé","pharmaForm":"comprimé pelliculé","adminRoute":"orale","status":"Autorisation active","components":[{"dosage":"1 mg","refDosage":"un comprimé","nature":"active"}]}
{"cis":"60002284","name":"DOLIPRANE 500 mg, gélule","pharmaForm":"gélule","adminRoute":"orale","status":"Autorisation active","components":[{"dosage":"500 mg","refDosage":"une gélule","nature":"active"}]}

{"cis":"60002285","name":"ASPIRINE UPSA 325 mg","pharmaForm":"comprimé","adminRoute":"orale","status":"Autorisation retirée","components":[]}
`

func TestLoadParsesRecords(t *testing.T) {
	store, err := Load(strings.NewReader(sampleSnapshot))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if store.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", store.Len())
	}

	rec, err := store.Lookup("60002283")
	if err != nil {
		t.Fatalf("Expected lookup to succeed, got %v", err)
	}
	if rec.Name != "ANASTROZOLE ACCORD 1 mg, comprimé pelliculé" {
		t.Errorf("Unexpected name: %s", rec.Name)
	}
	if rec.Status != StatusActive {
		t.Errorf("Expected active status, got %s", rec.Status)
	}
	if rec.ActiveDosage() != "1 mg" {
		t.Errorf("Expected active dosage 1 mg, got %s", rec.ActiveDosage())
	}

	withdrawn, err := store.Lookup("60002285")
	if err != nil {
		t.Fatalf("Expected lookup to succeed, got %v", err)
	}
	if withdrawn.Status != StatusWithdrawn {
		t.Errorf("Expected withdrawn status, got %s", withdrawn.Status)
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	input := "\n\n" + `{"cis":"11111111","name":"TEST"}` + "\n\n"
	store, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 record, got %d", store.Len())
	}
}

func TestLoadRejectsDuplicateCis(t *testing.T) {
	input := `{"cis":"11111111","name":"FIRST"}
{"cis":"22222222","name":"SECOND"}
{"cis":"11111111","name":"THIRD"}
`
	_, err := Load(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected duplicate error, got nil")
	}

	var dup *DuplicateCodeError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateCodeError, got %T: %v", err, err)
	}
	if dup.Cis != "11111111" {
		t.Errorf("Expected duplicate CIS 11111111, got %s", dup.Cis)
	}
	if dup.Line != 3 {
		t.Errorf("Expected duplicate at line 3, got %d", dup.Line)
	}
}

func TestLoadRejectsMalformedRecords(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"invalid json", "{not json}\n"},
		{"missing cis", `{"name":"NO CODE"}` + "\n"},
		{"missing name", `{"cis":"33333333"}` + "\n"},
		{"name too long", `{"cis":"44444444","name":"` + strings.Repeat("A", 250) + `"}` + "\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var malformed *MalformedRecordError
			if !errors.As(err, &malformed) {
				t.Fatalf("Expected MalformedRecordError, got %T: %v", err, err)
			}
		})
	}
}

func TestLoadDecodesLatin1Fallback(t *testing.T) {
	// "comprimé" with é as the single ISO-8859-1 byte 0xE9
	raw := []byte(`{"cis":"55555555","name":"TEST","pharmaForm":"comprim`)
	raw = append(raw, 0xE9)
	raw = append(raw, []byte(`"}`)...)
	raw = append(raw, '\n')

	store, err := Load(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rec, err := store.Lookup("55555555")
	if err != nil {
		t.Fatalf("Expected lookup to succeed, got %v", err)
	}
	if rec.PharmaForm != "comprimé" {
		t.Errorf("Expected decoded pharmaForm comprimé, got %q", rec.PharmaForm)
	}
}

func TestLookupUnknownCode(t *testing.T) {
	store, err := Load(strings.NewReader(`{"cis":"11111111","name":"TEST"}` + "\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = store.Lookup("99999999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if store.Has("99999999") {
		t.Error("Expected Has to report false for unknown code")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.jsonl")
	if err := os.WriteFile(path, []byte(sampleSnapshot), 0o644); err != nil {
		t.Fatalf("Failed to write temp catalog: %v", err)
	}

	store, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if store.Len() != 3 {
		t.Errorf("Expected 3 records, got %d", store.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.jsonl")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Autorisation active":    StatusActive,
		"active":                 StatusActive,
		"Autorisation retirée":   StatusWithdrawn,
		"Autorisation abrogée":   StatusWithdrawn,
		"Autorisation suspendue": StatusSuspended,
		"n'importe quoi":         StatusUnknown,
		"":                       StatusUnknown,
	}

	for raw, want := range cases {
		if got := ParseStatus(raw); got != want {
			t.Errorf("ParseStatus(%q) = %s, want %s", raw, got, want)
		}
	}
}
