package model

// Status is the processing state of an email record. Only StatusFetched is
// produced today; StatusProcessed is reserved for the quotation-generation
// phase.
type Status string

const (
	StatusFetched   Status = "Fetched"
	StatusProcessed Status = "Processed"
)

// RequirementKind discriminates the two wire representations of a
// requirement: a bare text line or a structured line item.
type RequirementKind int

const (
	KindText RequirementKind = iota
	KindStructured
)

// RequirementItem is one extracted quotation line item. The polymorphic wire
// value is resolved once at transform time; render sites only read these
// fields.
type RequirementItem struct {
	Kind        RequirementKind
	Text        string // KindText only
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
}

// Display accessors return "-" for absent values so table cells never render
// empty. A bare-text item shows its text in the description column and "-"
// everywhere else.

func (r RequirementItem) DisplayDescription() string {
	if r.Kind == KindText {
		return orDash(r.Text)
	}
	return orDash(r.Description)
}

func (r RequirementItem) DisplayQuantity() string {
	if r.Kind == KindText {
		return "-"
	}
	return orDash(r.Quantity)
}

func (r RequirementItem) DisplayUnit() string {
	if r.Kind == KindText {
		return "-"
	}
	return orDash(r.Unit)
}

func (r RequirementItem) DisplayUnitPrice() string {
	if r.Kind == KindText {
		return "-"
	}
	return orDash(r.UnitPrice)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// EmailRecord is the view model for one ingested email with its extracted
// requirement items. Requirements is never nil so length and iteration are
// always well-defined downstream.
type EmailRecord struct {
	ID            int64
	GmailID       string
	SenderEmail   string
	RecipientName string
	Subject       string
	Requirements  []RequirementItem
	Status        Status
	ReceivedAt    string
	Sender        string
}

// Stats aggregates counts over the record list. It is always derived from
// the same slice the table renders, never fetched separately.
type Stats struct {
	Total     int
	Fetched   int
	Processed int
}
