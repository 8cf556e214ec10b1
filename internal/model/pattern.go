// Package model defines the domain types shared across the billscan service.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// FieldName identifies one logical field extracted from a bill.
type FieldName string

const (
	FieldAmount         FieldName = "amount"
	FieldCurrency       FieldName = "currency"
	FieldDueDate        FieldName = "due_date"
	FieldBillDate       FieldName = "bill_date"
	FieldIBAN           FieldName = "iban"
	FieldBillNumber     FieldName = "bill_number"
	FieldContractID     FieldName = "contract_id"
	FieldPaymentDetails FieldName = "payment_details"
	FieldAddress        FieldName = "address"
	FieldLegalName      FieldName = "legal_name"
)

// FieldNames lists every known field in a stable presentation order.
var FieldNames = []FieldName{
	FieldAmount,
	FieldCurrency,
	FieldDueDate,
	FieldBillDate,
	FieldIBAN,
	FieldBillNumber,
	FieldContractID,
	FieldPaymentDetails,
	FieldAddress,
	FieldLegalName,
}

// Valid reports whether f is one of the known field names.
func (f FieldName) Valid() bool {
	for _, known := range FieldNames {
		if f == known {
			return true
		}
	}
	return false
}

// BillType classifies the kind of bill a pattern applies to.
type BillType string

const (
	BillRent      BillType = "rent"
	BillUtilities BillType = "utilities"
	BillEbloc     BillType = "ebloc"
	BillOther     BillType = "other"
)

// Valid reports whether b is a known bill type.
func (b BillType) Valid() bool {
	switch b {
	case BillRent, BillUtilities, BillEbloc, BillOther:
		return true
	}
	return false
}

// FieldPattern is one extraction rule: find LabelText in the document,
// move LineOffset lines from the label's line, optionally truncate to Size
// characters, then apply the field-specific normalizer.
type FieldPattern struct {
	FieldName  FieldName `json:"field_name"`
	LabelText  string    `json:"label_text"`
	LineOffset int       `json:"line_offset"`
	// Size truncates the raw target line before normalization. Zero means
	// no truncation and is omitted on the wire.
	Size int `json:"size,omitempty"`
}

// PatternInput is the client-supplied payload for creating or updating an
// extraction pattern. IDs and timestamps are assigned by the store.
type PatternInput struct {
	Name          string         `json:"name"`
	BillType      BillType       `json:"bill_type"`
	Supplier      string         `json:"supplier,omitempty"`
	FieldPatterns []FieldPattern `json:"field_patterns"`
}

// Validate checks the invariants a pattern must satisfy before persistence:
// non-empty name, at least one field pattern, non-empty labels, at most one
// pattern per field, non-negative sizes, known enum values.
func (p *PatternInput) Validate() error {
	if p.Name == "" {
		return eris.New("pattern name is required")
	}
	if len(p.FieldPatterns) == 0 {
		return eris.New("at least one field pattern is required")
	}
	if p.BillType != "" && !p.BillType.Valid() {
		return eris.Errorf("unknown bill type %q", p.BillType)
	}
	seen := make(map[FieldName]bool, len(p.FieldPatterns))
	for _, fp := range p.FieldPatterns {
		if !fp.FieldName.Valid() {
			return eris.Errorf("unknown field name %q", fp.FieldName)
		}
		if fp.LabelText == "" {
			return eris.Errorf("field %s: label text is required", fp.FieldName)
		}
		if fp.Size < 0 {
			return eris.Errorf("field %s: size must be positive", fp.FieldName)
		}
		if seen[fp.FieldName] {
			return eris.Errorf("duplicate field pattern for %s", fp.FieldName)
		}
		seen[fp.FieldName] = true
	}
	return nil
}

// ExtractionPattern is a persisted, reusable template for one supplier or
// bill type. FieldPatterns holds at most one rule per field name.
type ExtractionPattern struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	BillType      BillType       `json:"bill_type"`
	Supplier      string         `json:"supplier,omitempty"`
	FieldPatterns []FieldPattern `json:"field_patterns"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// FieldPattern returns the rule for the given field, or nil if the pattern
// does not configure that field.
func (p *ExtractionPattern) FieldPattern(name FieldName) *FieldPattern {
	for i := range p.FieldPatterns {
		if p.FieldPatterns[i].FieldName == name {
			return &p.FieldPatterns[i]
		}
	}
	return nil
}
