package patch

import (
	"encoding/json"
	"testing"
)

func TestDiffScalarOmitsUnchanged(t *testing.T) {
	p := NewPayload()
	DiffScalar(p, "quantity", 3, Set(3))
	if !p.Empty() {
		t.Fatalf("identical value must be omitted, got %v", p)
	}

	DiffScalar(p, "quantity", 3, Set(5))
	if got, ok := p["quantity"]; !ok || got != 5 {
		t.Fatalf("expected quantity=5 in payload, got %v", p)
	}
}

func TestDiffScalarIgnoresUntouched(t *testing.T) {
	p := NewPayload()
	DiffScalar(p, "quantity", 3, Field[int]{})
	if !p.Empty() {
		t.Fatalf("untouched field must produce no diff, got %v", p)
	}
}

func TestDiffOptionalClearProducesNull(t *testing.T) {
	project := "P1"
	p := NewPayload()
	DiffOptional(p, "projectId", &project, Clear[string]())

	value, ok := p["projectId"]
	if !ok {
		t.Fatal("expected projectId key for explicit clear")
	}
	if value != nil {
		t.Fatalf("expected nil value, got %v", value)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if string(raw) != `{"projectId":null}` {
		t.Fatalf("unexpected wire body %s", raw)
	}
}

func TestDiffOptionalClearOfAbsentValueIsNoop(t *testing.T) {
	p := NewPayload()
	DiffOptional[string](p, "projectId", nil, Clear[string]())
	if !p.Empty() {
		t.Fatalf("clearing an absent value must be a no-op, got %v", p)
	}
}

func TestDiffOptionalIdenticalValueIsNoop(t *testing.T) {
	notes := "restock aisle 4"
	p := NewPayload()
	DiffOptional(p, "notes", &notes, Set("restock aisle 4"))
	if !p.Empty() {
		t.Fatalf("identical optional value must be omitted, got %v", p)
	}

	DiffOptional(p, "notes", &notes, Set("restock aisle 5"))
	if p["notes"] != "restock aisle 5" {
		t.Fatalf("expected replacement value, got %v", p)
	}
}

func TestFieldUnmarshalDistinguishesNullFromValue(t *testing.T) {
	var dto struct {
		ProjectID Field[string] `json:"projectId"`
		Notes     Field[string] `json:"notes"`
		Quantity  Field[int]    `json:"quantity"`
	}

	body := []byte(`{"projectId":null,"quantity":4}`)
	if err := json.Unmarshal(body, &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !dto.ProjectID.Cleared() {
		t.Fatal("null projectId must decode as cleared")
	}
	if dto.Notes.Touched() {
		t.Fatal("absent notes must stay untouched")
	}
	qty, ok := dto.Quantity.Value()
	if !ok || qty != 4 {
		t.Fatalf("expected quantity set to 4, got %v/%v", qty, ok)
	}
}
