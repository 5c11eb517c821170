// Package catalog defines the medication record model and loads the
// static catalog snapshot into an immutable in-memory store.
package catalog

// Status is the regulatory authorisation status of a medication.
type Status string

const (
	StatusActive    Status = "active"
	StatusWithdrawn Status = "withdrawn"
	StatusSuspended Status = "suspended"
	StatusUnknown   Status = "unknown"
)

// ParseStatus maps the raw status field of a snapshot entry to a known
// Status value. Unrecognized values become StatusUnknown rather than
// failing the load, since ANSM exports are not consistent over time.
func ParseStatus(raw string) Status {
	switch raw {
	case "active", "Autorisation active":
		return StatusActive
	case "withdrawn", "Autorisation retirée", "Autorisation abrogée":
		return StatusWithdrawn
	case "suspended", "Autorisation suspendue":
		return StatusSuspended
	default:
		return StatusUnknown
	}
}

// Component is a single substance entry of a medication record.
type Component struct {
	Dosage    string `json:"dosage"`
	RefDosage string `json:"refDosage"`
	Nature    string `json:"nature"` // active or excipient
}

// MedicationRecord is one catalog entry, keyed by its CIS code.
// Records are immutable once loaded.
type MedicationRecord struct {
	Cis        string      `json:"cis"`
	Name       string      `json:"name"`
	PharmaForm string      `json:"pharmaForm"`
	AdminRoute string      `json:"adminRoute"`
	Status     Status      `json:"status"`
	Components []Component `json:"components"`
}

// ActiveDosage returns the dosage string of the first active component,
// or the first component of any nature if none is marked active.
func (m *MedicationRecord) ActiveDosage() string {
	for i := range m.Components {
		if m.Components[i].Nature == "active" {
			return m.Components[i].Dosage
		}
	}
	if len(m.Components) > 0 {
		return m.Components[0].Dosage
	}
	return ""
}
