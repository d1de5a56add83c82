// Package wizard implements the four-step lead capture form.
package wizard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ent0n29/realtybot/internal/leads"
	"github.com/ent0n29/realtybot/internal/memory"
)

type Step int

const (
	StepContact Step = iota
	StepRequirements
	StepViewing
	StepBudget
)

const (
	FirstStep = StepContact
	LastStep  = StepBudget
)

func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepRequirements:
		return "requirements"
	case StepViewing:
		return "viewing"
	case StepBudget:
		return "budget"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

func (s Step) Valid() bool { return s >= FirstStep && s <= LastStep }

// Field names as they appear in the widget form.
const (
	FieldName             = "name"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldPropertyType     = "propertyType"
	FieldBedrooms         = "bedrooms"
	FieldLocation         = "location"
	FieldPropertyInterest = "propertyInterest"
	FieldTimeline         = "timeline"
	FieldBudget           = "budget"
	FieldMessage          = "message"
)

// Fields returns the disjoint subset of Draft fields a step collects.
func (s Step) Fields() []string {
	switch s {
	case StepContact:
		return []string{FieldName, FieldEmail, FieldPhone}
	case StepRequirements:
		return []string{FieldPropertyType, FieldBedrooms, FieldLocation}
	case StepViewing:
		return []string{FieldPropertyInterest, FieldTimeline}
	case StepBudget:
		return []string{FieldBudget, FieldMessage}
	default:
		return nil
	}
}

// Draft is the in-progress lead.
type Draft struct {
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	PropertyType     string `json:"propertyType,omitempty"`
	Bedrooms         int    `json:"bedrooms,omitempty"`
	Location         string `json:"location,omitempty"`
	PropertyInterest string `json:"propertyInterest,omitempty"`
	Timeline         string `json:"timeline,omitempty"`
	Budget           string `json:"budget,omitempty"`
	Message          string `json:"message,omitempty"`
}

// FromSlots seeds the memory-mirrored fields.
func FromSlots(m memory.Slots) Draft {
	return Draft{
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		PropertyType: m.PropertyType,
		Bedrooms:     m.Bedrooms,
		Location:     m.Location,
		Budget:       m.Budget,
	}
}

// Slots projects the draft back onto memory.
func (d Draft) Slots() memory.Slots {
	return memory.Slots{
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PropertyType: d.PropertyType,
		Bedrooms:     d.Bedrooms,
		Location:     d.Location,
		Budget:       d.Budget,
	}
}

func (d Draft) get(field string) string {
	switch field {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	case FieldPropertyType:
		return d.PropertyType
	case FieldBedrooms:
		if d.Bedrooms > 0 {
			return fmt.Sprint(d.Bedrooms)
		}
		return ""
	case FieldLocation:
		return d.Location
	case FieldPropertyInterest:
		return d.PropertyInterest
	case FieldTimeline:
		return d.Timeline
	case FieldBudget:
		return d.Budget
	case FieldMessage:
		return d.Message
	}
	return ""
}

// mergeFields copies the named non-empty fields of partial onto d.
func (d Draft) mergeFields(partial Draft, fields []string) Draft {
	for _, f := range fields {
		switch f {
		case FieldName:
			setString(&d.Name, partial.Name)
		case FieldEmail:
			setString(&d.Email, partial.Email)
		case FieldPhone:
			setString(&d.Phone, partial.Phone)
		case FieldPropertyType:
			setString(&d.PropertyType, partial.PropertyType)
		case FieldBedrooms:
			if partial.Bedrooms > 0 {
				d.Bedrooms = partial.Bedrooms
			}
		case FieldLocation:
			setString(&d.Location, partial.Location)
		case FieldPropertyInterest:
			setString(&d.PropertyInterest, partial.PropertyInterest)
		case FieldTimeline:
			setString(&d.Timeline, partial.Timeline)
		case FieldBudget:
			setString(&d.Budget, partial.Budget)
		case FieldMessage:
			setString(&d.Message, partial.Message)
		}
	}
	return d
}

// Merge applies every non-empty field of partial.
func (d Draft) Merge(partial Draft) Draft {
	for s := FirstStep; s <= LastStep; s++ {
		d = d.mergeFields(partial, s.Fields())
	}
	return d
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// ValidationError lists the contact fields that are missing or malformed.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "lead form: " + strings.Join(parts, "; ")
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the required contact fields. It returns nil when the
// draft can be submitted.
func Validate(d Draft) *ValidationError {
	var verr ValidationError
	if strings.TrimSpace(d.Name) == "" {
		verr.Missing = append(verr.Missing, FieldName)
	}
	switch email := strings.TrimSpace(d.Email); {
	case email == "":
		verr.Missing = append(verr.Missing, FieldEmail)
	case !emailRe.MatchString(email):
		verr.Invalid = append(verr.Invalid, FieldEmail)
	}
	switch phone := strings.TrimSpace(d.Phone); {
	case phone == "":
		verr.Missing = append(verr.Missing, FieldPhone)
	case !plausiblePhone(phone):
		verr.Invalid = append(verr.Invalid, FieldPhone)
	}
	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 {
		return nil
	}
	return &verr
}

func plausiblePhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune("+-() .", r):
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

// Wizard holds the current step and draft. It is not safe for concurrent
// use; the dialogue controller serializes access.
type Wizard struct {
	step  Step
	draft Draft
}

// New opens the wizard at step, seeding the draft from memory.
func New(step Step, m memory.Slots) *Wizard {
	if !step.Valid() {
		step = FirstStep
	}
	return &Wizard{step: step, draft: FromSlots(m)}
}

func (w *Wizard) Step() Step   { return w.step }
func (w *Wizard) Draft() Draft { return w.draft }

// Fill merges every non-empty field without moving between steps.
func (w *Wizard) Fill(partial Draft) {
	w.draft = w.draft.Merge(partial)
}

// Missing lists the current step's fields that are still empty.
func (w *Wizard) Missing() []string {
	var out []string
	for _, f := range w.step.Fields() {
		if w.draft.get(f) == "" {
			out = append(out, f)
		}
	}
	return out
}

// Next merges the current step's fields and advances. Leaving the contact
// step requires valid contact details. Next on the last step only merges.
func (w *Wizard) Next(partial Draft) error {
	w.draft = w.draft.mergeFields(partial, w.step.Fields())
	if w.step == StepContact {
		if verr := Validate(w.draft); verr != nil {
			return verr
		}
	}
	if w.step < LastStep {
		w.step++
	}
	return nil
}

// Back moves one step back. It reports false on the first step.
func (w *Wizard) Back() bool {
	if w.step <= FirstStep {
		return false
	}
	w.step--
	return true
}

// Submit merges partial and validates. On failure the wizard stays on the
// same step with every entered value kept.
func (w *Wizard) Submit(partial Draft) (leads.Record, error) {
	w.draft = w.draft.Merge(partial)
	if verr := Validate(w.draft); verr != nil {
		return leads.Record{}, verr
	}
	return w.Record(), nil
}

// Record builds the lead record for the current draft.
func (w *Wizard) Record() leads.Record {
	d := w.draft
	interest := d.PropertyInterest
	if interest == "" {
		interest = describeInterest(d)
	}
	return leads.Record{
		Name:             strings.TrimSpace(d.Name),
		Email:            strings.TrimSpace(d.Email),
		Phone:            strings.TrimSpace(d.Phone),
		PropertyInterest: interest,
		Budget:           d.Budget,
		Timeline:         d.Timeline,
		Message:          d.Message,
		Bedrooms:         d.Bedrooms,
		Location:         d.Location,
		Source:           leads.SourceChatbot,
		Status:           leads.StatusNew,
	}
}

// describeInterest summarizes requirements, e.g. "3 bedroom duplex in lekki".
func describeInterest(d Draft) string {
	var b strings.Builder
	if d.Bedrooms > 0 {
		fmt.Fprintf(&b, "%d bedroom ", d.Bedrooms)
	}
	if d.PropertyType != "" {
		b.WriteString(d.PropertyType)
	} else if b.Len() > 0 {
		b.WriteString("property")
	}
	if d.Location != "" {
		if b.Len() > 0 {
			b.WriteString(" in ")
		}
		b.WriteString(d.Location)
	}
	return strings.TrimSpace(b.String())
}
