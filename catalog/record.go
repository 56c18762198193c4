// Package catalog provides the in-memory registered-medicines reference catalog.
// It includes the MedicineRecord entity, a thread-safe Container with atomic
// operations for zero-downtime catalog swaps, a Reader implementing case-insensitive
// substring search, and an Importer for bulk catalog loads.
package catalog

import "strings"

// MedicineRecord is one row of the reference catalog. The JSON field names match
// the registry import format (snake_case, as produced by the import pipeline).
type MedicineRecord struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	GenericName        string   `json:"generic_name"`
	Strength           []string `json:"strength"`
	Manufacturer       string   `json:"manufacturer"`
	RegistrationNumber string   `json:"registration_number"`
	Category           string   `json:"category"`
	AuthenticityStatus string   `json:"authenticity_status"`
	WhoApproved        bool     `json:"who_approved"`
	SideEffects        []string `json:"side_effects"`
	Alternatives       []string `json:"alternatives"`
	Barcode            string   `json:"barcode,omitempty"`
}

// PrimaryStrength returns the display dosage, the first strength entry.
func (m *MedicineRecord) PrimaryStrength() string {
	if len(m.Strength) == 0 {
		return ""
	}
	return m.Strength[0]
}

// Sanitize normalizes optional fields so callers never see nil slices and
// matching fields are trimmed. Records coming from imports may omit both.
func (m *MedicineRecord) Sanitize() {
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.GenericName = strings.TrimSpace(m.GenericName)
	if m.Strength == nil {
		m.Strength = []string{}
	}
	if m.SideEffects == nil {
		m.SideEffects = []string{}
	}
	if m.Alternatives == nil {
		m.Alternatives = []string{}
	}
}
