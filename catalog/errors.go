package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Lookup for codes absent from the catalog.
var ErrNotFound = errors.New("medication not found")

// MalformedRecordError reports a snapshot entry missing a required
// field or failing to parse. The load is aborted: a corrupt catalog
// must not reach the serving path.
type MalformedRecordError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed record at line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// DuplicateCodeError reports two snapshot entries sharing a CIS code.
// Downstream ranking and confidence assume one record per code, so the
// loader rejects duplicates instead of overwriting.
type DuplicateCodeError struct {
	Cis  string
	Line int
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("duplicate CIS code %q at line %d", e.Cis, e.Line)
}
