package quote

import (
	"encoding/json"
	"testing"

	"quoteterm/internal/api"
	"quoteterm/internal/model"
)

func TestTransform_BasicRecord(t *testing.T) {
	raw := []api.RawEmail{
		{
			ID:      1,
			GmailID: "g1",
			Subject: "Q1",
			Extraction: &api.RawExtraction{
				Email:        "a@b.com",
				To:           "Alice",
				Requirements: json.RawMessage(`["Widget"]`),
			},
		},
	}

	recs := Transform(raw)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.SenderEmail != "a@b.com" {
		t.Fatalf("sender email got %q", r.SenderEmail)
	}
	if r.RecipientName != "Alice" {
		t.Fatalf("recipient got %q", r.RecipientName)
	}
	if r.Subject != "Q1" {
		t.Fatalf("subject got %q", r.Subject)
	}
	if len(r.Requirements) != 1 {
		t.Fatalf("requirements len got %d", len(r.Requirements))
	}
	if r.Status != model.StatusFetched {
		t.Fatalf("status got %q", r.Status)
	}
	req := r.Requirements[0]
	if req.Kind != model.KindText || req.Text != "Widget" {
		t.Fatalf("requirement got %+v", req)
	}
}

func TestTransform_PlaceholderDegradation(t *testing.T) {
	tests := []struct {
		name      string
		raw       api.RawEmail
		wantEmail string
		wantName  string
		wantSubj  string
		wantReqs  int
	}{
		{
			name:      "nil extraction",
			raw:       api.RawEmail{ID: 1, GmailID: "g1", Subject: "hello"},
			wantEmail: "N/A",
			wantName:  "N/A",
			wantSubj:  "hello",
			wantReqs:  0,
		},
		{
			name:      "empty fields",
			raw:       api.RawEmail{ID: 2, GmailID: "g2", Extraction: &api.RawExtraction{}},
			wantEmail: "N/A",
			wantName:  "N/A",
			wantSubj:  "No Subject",
			wantReqs:  0,
		},
		{
			name: "non-array requirements",
			raw: api.RawEmail{ID: 3, GmailID: "g3", Subject: "s", Extraction: &api.RawExtraction{
				Email:        "x@y.com",
				Requirements: json.RawMessage(`5`),
			}},
			wantEmail: "x@y.com",
			wantName:  "N/A",
			wantSubj:  "s",
			wantReqs:  0,
		},
		{
			name: "null requirements",
			raw: api.RawEmail{ID: 4, GmailID: "g4", Subject: "s", Extraction: &api.RawExtraction{
				Requirements: json.RawMessage(`null`),
			}},
			wantEmail: "N/A",
			wantName:  "N/A",
			wantSubj:  "s",
			wantReqs:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recs := Transform([]api.RawEmail{tc.raw})
			if len(recs) != 1 {
				t.Fatalf("expected 1 record, got %d", len(recs))
			}
			r := recs[0]
			if r.SenderEmail != tc.wantEmail {
				t.Errorf("email got %q want %q", r.SenderEmail, tc.wantEmail)
			}
			if r.RecipientName != tc.wantName {
				t.Errorf("name got %q want %q", r.RecipientName, tc.wantName)
			}
			if r.Subject != tc.wantSubj {
				t.Errorf("subject got %q want %q", r.Subject, tc.wantSubj)
			}
			if r.Requirements == nil {
				t.Fatal("requirements must never be nil")
			}
			if len(r.Requirements) != tc.wantReqs {
				t.Errorf("requirements len got %d want %d", len(r.Requirements), tc.wantReqs)
			}
		})
	}
}

func TestParseRequirements_Polymorphic(t *testing.T) {
	raw := json.RawMessage(`[
		"Plain text line",
		{"Description": "Steel rod", "Quantity": 12, "Unit": "pcs", "Unit price": 3.5},
		{"Description": "Cable", "Quantity": "100", "Unit": "m", "Unit price": "1.20"},
		{"Description": "Bolt"},
		null
	]`)

	items := parseRequirements(raw)
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}

	if items[0].Kind != model.KindText || items[0].Text != "Plain text line" {
		t.Fatalf("item 0: %+v", items[0])
	}
	// Bare text shows its text in the description column and "-" elsewhere.
	if items[0].DisplayDescription() != "Plain text line" {
		t.Fatalf("item 0 description: %q", items[0].DisplayDescription())
	}
	if items[0].DisplayQuantity() != "-" || items[0].DisplayUnit() != "-" || items[0].DisplayUnitPrice() != "-" {
		t.Fatalf("item 0 structured columns should display as dash")
	}

	if items[1].Kind != model.KindStructured {
		t.Fatalf("item 1 kind: %v", items[1].Kind)
	}
	if items[1].Quantity != "12" || items[1].UnitPrice != "3.5" {
		t.Fatalf("item 1 numeric normalization: %+v", items[1])
	}
	if items[1].Unit != "pcs" || items[1].Description != "Steel rod" {
		t.Fatalf("item 1: %+v", items[1])
	}

	if items[2].Quantity != "100" || items[2].UnitPrice != "1.20" {
		t.Fatalf("item 2 string scalars: %+v", items[2])
	}

	if items[3].DisplayQuantity() != "-" || items[3].DisplayUnit() != "-" || items[3].DisplayUnitPrice() != "-" {
		t.Fatalf("item 3 missing fields should display as dash: %+v", items[3])
	}

	// null is neither object nor scalar; it degrades to an empty text item.
	if items[4].Kind != model.KindText || items[4].DisplayDescription() != "-" {
		t.Fatalf("item 4: %+v", items[4])
	}
}

func TestDeriveStats_Invariant(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		records := make([]model.EmailRecord, n)
		s := DeriveStats(records)
		if s.Total != n || s.Fetched != n {
			t.Fatalf("n=%d: total=%d fetched=%d", n, s.Total, s.Fetched)
		}
		if s.Processed != 0 {
			t.Fatalf("n=%d: processed=%d", n, s.Processed)
		}
	}
}
