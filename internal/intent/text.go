package intent

import (
	"strings"
	"unicode"
)

// Utterance is a pre-tokenized user message shared by every rule.
type Utterance struct {
	Raw    string
	Norm   string
	Tokens []string

	padded string
}

// Parse lowercases s, drops apostrophes ("what's" -> "whats") and splits on
// anything that is not a letter or digit.
func Parse(s string) Utterance {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	tokens := strings.Fields(b.String())
	norm := strings.Join(tokens, " ")
	return Utterance{
		Raw:    s,
		Norm:   norm,
		Tokens: tokens,
		padded: " " + norm + " ",
	}
}

// HasPhrase reports whether any phrase occurs on word boundaries.
func (u Utterance) HasPhrase(phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(u.padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// HasWord reports whether any token is in set.
func (u Utterance) HasWord(set map[string]bool) bool {
	for _, t := range u.Tokens {
		if set[t] {
			return true
		}
	}
	return false
}

// StartsWith reports whether the utterance begins with any phrase.
func (u Utterance) StartsWith(phrases ...string) bool {
	for _, p := range phrases {
		if u.Norm == p || strings.HasPrefix(u.Norm, p+" ") {
			return true
		}
	}
	return false
}

// Without returns the tokens that are not in filler, joined by spaces.
func (u Utterance) Without(filler map[string]bool) string {
	kept := make([]string, 0, len(u.Tokens))
	for _, t := range u.Tokens {
		if !filler[t] {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
