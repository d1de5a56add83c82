package memory

import "strings"

// Slots holds everything the assistant has learned about a visitor so far.
// A zero value means the slot was never filled.
type Slots struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Bedrooms     int    `json:"bedrooms,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	Location     string `json:"location,omitempty"`
	Budget       string `json:"budget,omitempty"`
}

// Merge returns s with every non-empty field of partial applied on top.
// Empty fields in partial never clear an existing value.
func (s Slots) Merge(partial Slots) Slots {
	out := s
	if v := strings.TrimSpace(partial.Name); v != "" {
		out.Name = v
	}
	if v := strings.TrimSpace(partial.Email); v != "" {
		out.Email = v
	}
	if v := strings.TrimSpace(partial.Phone); v != "" {
		out.Phone = v
	}
	if partial.Bedrooms > 0 {
		out.Bedrooms = partial.Bedrooms
	}
	if v := strings.TrimSpace(partial.PropertyType); v != "" {
		out.PropertyType = v
	}
	if v := strings.TrimSpace(partial.Location); v != "" {
		out.Location = v
	}
	if v := strings.TrimSpace(partial.Budget); v != "" {
		out.Budget = v
	}
	return out
}

func (s Slots) IsEmpty() bool {
	return s == Slots{}
}

// HasCriteria reports whether any property-search filter is known.
func (s Slots) HasCriteria() bool {
	return s.Location != "" || s.PropertyType != "" || s.Bedrooms > 0 || s.Budget != ""
}

// FirstName returns the first word of the visitor's name, if known.
func (s Slots) FirstName() string {
	fields := strings.Fields(s.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
