package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// rawRecord mirrors one line of the snapshot file before validation.
type rawRecord struct {
	Cis        string      `json:"cis"`
	Name       string      `json:"name"`
	PharmaForm string      `json:"pharmaForm"`
	AdminRoute string      `json:"adminRoute"`
	Status     string      `json:"status"`
	Components []Component `json:"components"`
}

// LoadFile reads a JSONL catalog snapshot from disk and builds a Store.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog snapshot %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses a catalog snapshot: one JSON object per line with fields
// cis, name, pharmaForm, adminRoute, status and components. It fails
// with MalformedRecordError on a record missing cis or name, and with
// DuplicateCodeError when two records share a code.
func Load(r io.Reader) (*Store, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}

	// Some ANSM exports are ISO-8859-1 rather than UTF-8.
	if !utf8.Valid(body) {
		decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
		}
		body = decoded
	}

	store := &Store{byCis: make(map[string]int)}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0), 1*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var raw rawRecord
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, &MalformedRecordError{Line: line, Reason: "invalid JSON", Err: err}
		}

		record := MedicationRecord{
			Cis:        strings.TrimSpace(raw.Cis),
			Name:       strings.TrimSpace(raw.Name),
			PharmaForm: strings.TrimSpace(raw.PharmaForm),
			AdminRoute: strings.TrimSpace(raw.AdminRoute),
			Status:     ParseStatus(strings.TrimSpace(raw.Status)),
			Components: raw.Components,
		}

		if err := validateRecord(&record, line); err != nil {
			return nil, err
		}

		if _, exists := store.byCis[record.Cis]; exists {
			return nil, &DuplicateCodeError{Cis: record.Cis, Line: line}
		}

		store.byCis[record.Cis] = len(store.records)
		store.records = append(store.records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan catalog snapshot: %w", err)
	}

	return store, nil
}

func validateRecord(m *MedicationRecord, line int) error {
	if m.Cis == "" {
		return &MalformedRecordError{Line: line, Reason: "missing cis"}
	}
	if m.Name == "" {
		return &MalformedRecordError{Line: line, Reason: fmt.Sprintf("missing name for CIS %s", m.Cis)}
	}
	if len(m.Name) > 200 {
		return &MalformedRecordError{Line: line, Reason: fmt.Sprintf("name too long for CIS %s: %d characters", m.Cis, len(m.Name))}
	}
	return nil
}
