package quote

import (
	"bytes"
	"encoding/json"

	"quoteterm/internal/api"
	"quoteterm/internal/model"
)

const (
	placeholderMissing = "N/A"
	placeholderSubject = "No Subject"
)

// Transform converts raw backend records into view models. A record never
// fails wholesale: missing extraction fields degrade to placeholders, a
// missing subject becomes "No Subject", and Requirements always comes out
// as a non-nil slice so downstream length and iteration logic stays
// well-defined.
func Transform(raw []api.RawEmail) []model.EmailRecord {
	out := make([]model.EmailRecord, 0, len(raw))
	for _, r := range raw {
		rec := model.EmailRecord{
			ID:            r.ID,
			GmailID:       r.GmailID,
			SenderEmail:   placeholderMissing,
			RecipientName: placeholderMissing,
			Subject:       r.Subject,
			Requirements:  []model.RequirementItem{},
			Status:        model.StatusFetched,
			ReceivedAt:    r.ReceivedAt,
			Sender:        r.Sender,
		}
		if rec.Subject == "" {
			rec.Subject = placeholderSubject
		}
		if r.Extraction != nil {
			if r.Extraction.Email != "" {
				rec.SenderEmail = r.Extraction.Email
			}
			if r.Extraction.To != "" {
				rec.RecipientName = r.Extraction.To
			}
			rec.Requirements = parseRequirements(r.Extraction.Requirements)
		}
		out = append(out, rec)
	}
	return out
}

// DeriveStats computes the aggregate counters from the record list itself.
// There is no counting endpoint to drift out of sync with the table:
// total == fetched == len(records), processed stays 0 until the processing
// phase exists.
func DeriveStats(records []model.EmailRecord) model.Stats {
	n := len(records)
	return model.Stats{Total: n, Fetched: n, Processed: 0}
}

// parseRequirements decodes the polymorphic Requirements value. A missing or
// non-array value yields an empty slice. Elements are either bare scalars
// (shown as text) or structured line items.
func parseRequirements(raw json.RawMessage) []model.RequirementItem {
	items := []model.RequirementItem{}
	var elems []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &elems) != nil {
		return items
	}
	for _, e := range elems {
		items = append(items, parseRequirement(e))
	}
	return items
}

func parseRequirement(e json.RawMessage) model.RequirementItem {
	if isJSONObject(e) {
		var obj struct {
			Description string          `json:"Description"`
			Quantity    json.RawMessage `json:"Quantity"`
			Unit        string          `json:"Unit"`
			UnitPrice   json.RawMessage `json:"Unit price"`
		}
		if err := json.Unmarshal(e, &obj); err == nil {
			return model.RequirementItem{
				Kind:        model.KindStructured,
				Description: obj.Description,
				Quantity:    flexString(obj.Quantity),
				Unit:        obj.Unit,
				UnitPrice:   flexString(obj.UnitPrice),
			}
		}
	}
	// Bare value: strings and numbers render as text, anything else as "-".
	return model.RequirementItem{Kind: model.KindText, Text: flexString(e)}
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// flexString renders a JSON scalar as its display string. The backend emits
// quantities and prices sometimes as numbers, sometimes as strings.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
