package wizard

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ent0n29/realtybot/internal/leads"
	"github.com/ent0n29/realtybot/internal/memory"
)

func TestStepFieldsAreDisjoint(t *testing.T) {
	seen := map[string]Step{}
	for s := FirstStep; s <= LastStep; s++ {
		for _, f := range s.Fields() {
			if prev, ok := seen[f]; ok {
				t.Fatalf("field %q collected by both %v and %v", f, prev, s)
			}
			seen[f] = s
		}
	}
	if len(seen) != 10 {
		t.Fatalf("len(fields) = %d, want 10", len(seen))
	}
}

func TestNewSeedsFromMemory(t *testing.T) {
	w := New(StepViewing, memory.Slots{Name: "Ada", Location: "lekki", Bedrooms: 3})
	if w.Step() != StepViewing {
		t.Fatalf("Step() = %v, want viewing", w.Step())
	}
	want := Draft{Name: "Ada", Location: "lekki", Bedrooms: 3}
	if diff := cmp.Diff(want, w.Draft()); diff != "" {
		t.Fatalf("Draft() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewClampsInvalidStep(t *testing.T) {
	if got := New(Step(9), memory.Slots{}).Step(); got != StepContact {
		t.Fatalf("Step() = %v, want contact", got)
	}
}

func TestNextMergesOnlyCurrentStepFields(t *testing.T) {
	w := New(StepRequirements, memory.Slots{})
	err := w.Next(Draft{PropertyType: "duplex", Bedrooms: 4, Location: "ikoyi", Budget: "200m"})
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if w.Step() != StepViewing {
		t.Fatalf("Step() = %v, want viewing", w.Step())
	}
	d := w.Draft()
	if d.PropertyType != "duplex" || d.Bedrooms != 4 || d.Location != "ikoyi" {
		t.Fatalf("requirements not merged: %+v", d)
	}
	if d.Budget != "" {
		t.Fatalf("Budget = %q, want empty (not collected by requirements step)", d.Budget)
	}
}

func TestNextFromContactRequiresValidContact(t *testing.T) {
	w := New(StepContact, memory.Slots{})
	err := w.Next(Draft{Name: "Ada", Email: "not-an-email"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Next() error = %v, want *ValidationError", err)
	}
	if diff := cmp.Diff([]string{FieldPhone}, verr.Missing); diff != "" {
		t.Fatalf("Missing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{FieldEmail}, verr.Invalid); diff != "" {
		t.Fatalf("Invalid mismatch (-want +got):\n%s", diff)
	}
	if w.Step() != StepContact {
		t.Fatalf("Step() = %v, want contact after failed Next", w.Step())
	}
	if w.Draft().Name != "Ada" {
		t.Fatalf("entered name lost after validation failure")
	}

	if err := w.Next(Draft{Email: "ada@example.com", Phone: "0803 123 4567"}); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if w.Step() != StepRequirements {
		t.Fatalf("Step() = %v, want requirements", w.Step())
	}
}

func TestNextOnLastStepStays(t *testing.T) {
	w := New(StepBudget, memory.Slots{})
	if err := w.Next(Draft{Budget: "50m"}); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if w.Step() != StepBudget || w.Draft().Budget != "50m" {
		t.Fatalf("unexpected state: step=%v draft=%+v", w.Step(), w.Draft())
	}
}

func TestBack(t *testing.T) {
	w := New(StepViewing, memory.Slots{})
	if !w.Back() || w.Step() != StepRequirements {
		t.Fatalf("Back() from viewing should land on requirements, got %v", w.Step())
	}
	w = New(StepContact, memory.Slots{})
	if w.Back() {
		t.Fatalf("Back() on first step = true, want false")
	}
}

func TestSubmitValidationFailureKeepsStepAndData(t *testing.T) {
	w := New(StepBudget, memory.Slots{Location: "yaba"})
	_, err := w.Submit(Draft{Name: "Tunde", Budget: "30m"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit() error = %v, want *ValidationError", err)
	}
	if diff := cmp.Diff([]string{FieldEmail, FieldPhone}, verr.Missing); diff != "" {
		t.Fatalf("Missing mismatch (-want +got):\n%s", diff)
	}
	if w.Step() != StepBudget {
		t.Fatalf("Step() = %v, want budget", w.Step())
	}
	if d := w.Draft(); d.Name != "Tunde" || d.Budget != "30m" || d.Location != "yaba" {
		t.Fatalf("draft lost data: %+v", d)
	}
}

func TestSubmitBuildsRecord(t *testing.T) {
	w := New(StepBudget, memory.Slots{Bedrooms: 3, PropertyType: "duplex", Location: "lekki"})
	rec, err := w.Submit(Draft{Name: " Ada Obi ", Email: "ada@example.com", Phone: "+234 803 123 4567", Budget: "50m"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	want := leads.Record{
		Name:             "Ada Obi",
		Email:            "ada@example.com",
		Phone:            "+234 803 123 4567",
		PropertyInterest: "3 bedroom duplex in lekki",
		Budget:           "50m",
		Bedrooms:         3,
		Location:         "lekki",
		Source:           "chatbot",
		Status:           "new",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("Record mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingListsCurrentStepGaps(t *testing.T) {
	w := New(StepContact, memory.Slots{Name: "Ada"})
	if diff := cmp.Diff([]string{FieldEmail, FieldPhone}, w.Missing()); diff != "" {
		t.Fatalf("Missing() mismatch (-want +got):\n%s", diff)
	}
}
