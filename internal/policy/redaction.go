package policy

import (
	"regexp"
	"strings"

	"github.com/ent0n29/realtybot/internal/memory"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{8,}[0-9]`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
)

// RedactPII masks contact details before text reaches the logs. Phone
// numbers keep their last two digits so support can correlate reports.
func RedactPII(input string) (redacted string, changed bool) {
	out := input

	next := emailPattern.ReplaceAllString(out, "[REDACTED_EMAIL]")
	changed = changed || next != out
	out = next

	// Cards before phones so long digit runs are not reported as phones.
	next = cardPattern.ReplaceAllStringFunc(out, func(m string) string {
		if digitCount(m) > 15 || strings.ContainsAny(m, " -") {
			return "[REDACTED_CARD]"
		}
		return m
	})
	changed = changed || next != out
	out = next

	next = phonePattern.ReplaceAllStringFunc(out, func(m string) string {
		if digitCount(m) < 10 {
			return m
		}
		return "[REDACTED_PHONE…" + m[len(m)-2:] + "]"
	})
	changed = changed || next != out
	out = next

	return out, changed
}

// RedactSlots returns a copy safe for structured logging.
func RedactSlots(s memory.Slots) memory.Slots {
	if s.Name != "" {
		s.Name = s.FirstName()
	}
	if s.Email != "" {
		s.Email = "[REDACTED_EMAIL]"
	}
	if s.Phone != "" {
		s.Phone, _ = RedactPII(s.Phone)
	}
	return s
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
