package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ent0n29/realtybot/internal/memory"
)

var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\s().\-]{8,}\d`)
	bedroomsRe = regexp.MustCompile(`(?i)\b(\d{1,2}|one|two|three|four|five|six|seven)\s*-?\s*(?:bedrooms?|beds?|bdrms?|br)\b`)
	budgetRe   = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(k|thousand|m|mn|mil|million|millions|b|bn|billion|billions)\b`)
	amountRe   = regexp.MustCompile(`(?i)(?:₦|\bngn|\bn)\s?(\d{1,3}(?:,\d{3})+|\d{5,})\b|\b(\d{1,3}(?:,\d{3})+)\s*naira\b`)
	nameRe     = regexp.MustCompile(`(?i)\b(my\s+name\s+is|my\s+names|name\s+is|i\s+am|i['’]?m|this\s+is|call\s+me)\s+([\p{L}][\p{L}'\-]*)(?:[ \t]+([\p{L}][\p{L}'\-]*))?`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
}

// propertyTypeKeys lists multi-word spellings first.
var propertyTypeKeys = func() []string {
	keys := make([]string, 0, len(propertyTypes))
	for k := range propertyTypes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		wi, wj := strings.Count(keys[i], " "), strings.Count(keys[j], " ")
		if wi != wj {
			return wi > wj
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ExtractSlots runs every extractor independently. A miss leaves the field
// empty; it is never an error.
func ExtractSlots(text string) memory.Slots {
	u := Parse(text)
	return memory.Slots{
		Name:         ExtractName(text),
		Email:        ExtractEmail(text),
		Phone:        ExtractPhone(text),
		Bedrooms:     ExtractBedrooms(text),
		PropertyType: ExtractPropertyType(u),
		Location:     FindLocation(u),
		Budget:       ExtractBudget(text),
	}
}

func ExtractEmail(text string) string {
	return strings.ToLower(emailRe.FindString(text))
}

// ExtractPhone returns the first digit run with separators holding 10 to 15
// digits. Currency-prefixed amounts are skipped.
func ExtractPhone(text string) string {
	for _, loc := range phoneRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
			if prev == '₦' || prev == '$' {
				continue
			}
		}
		candidate := strings.TrimSpace(text[loc[0]:loc[1]])
		n := countDigits(candidate)
		if n >= 10 && n <= 15 {
			return candidate
		}
		if n > 15 {
			if p := phoneWithin(candidate); p != "" {
				return p
			}
		}
	}
	return ""
}

// phoneWithin finds the first run of whitespace-separated groups holding
// 10 to 15 digits, for numbers typed back to back.
func phoneWithin(candidate string) string {
	groups := strings.Fields(candidate)
	for i := range groups {
		n := 0
		for j := i; j < len(groups); j++ {
			n += countDigits(groups[j])
			if n > 15 {
				break
			}
			if n >= 10 {
				return strings.Join(groups[i:j+1], " ")
			}
		}
	}
	return ""
}

func ExtractBedrooms(text string) int {
	m := bedroomsRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	raw := strings.ToLower(m[1])
	if n, ok := numberWords[raw]; ok {
		return n
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func ExtractPropertyType(u Utterance) string {
	for _, k := range propertyTypeKeys {
		if strings.Contains(k, " ") && u.HasPhrase(k) {
			return propertyTypes[k]
		}
	}
	for _, t := range u.Tokens {
		if v, ok := propertyTypes[t]; ok {
			return v
		}
	}
	return ""
}

// ExtractBudget returns a compact budget such as "50m" or "1.5b", or a plain
// amount such as "45000000" when the user typed a full naira figure.
func ExtractBudget(text string) string {
	if m := budgetRe.FindStringSubmatch(text); m != nil {
		return m[1] + budgetUnit(m[2])
	}
	if m := amountRe.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		return strings.ReplaceAll(raw, ",", "")
	}
	return ""
}

func budgetUnit(u string) string {
	switch strings.ToLower(u) {
	case "k", "thousand":
		return "k"
	case "b", "bn", "billion", "billions":
		return "b"
	default:
		return "m"
	}
}

// ParseBudget converts a budget slot into a naira amount.
func ParseBudget(budget string) (float64, bool) {
	budget = strings.TrimSpace(strings.ToLower(budget))
	if budget == "" {
		return 0, false
	}
	if m := budgetRe.FindStringSubmatch(budget); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		switch budgetUnit(m[2]) {
		case "k":
			return n * 1e3, true
		case "b":
			return n * 1e9, true
		default:
			return n * 1e6, true
		}
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(budget, ",", ""), 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ExtractName looks for self-introductions ("my name is", "I'm", "call me").
// After the implicit intros ("I am", "I'm", "this is") the name must be
// capitalized as typed: "I'm curious" is not a name.
func ExtractName(text string) string {
	for _, m := range nameRe.FindAllStringSubmatch(text, -1) {
		first := m[2]
		if !plausibleNameWord(first) {
			continue
		}
		lead := strings.ToLower(m[1])
		explicit := strings.Contains(lead, "name")
		if !explicit && !strings.HasPrefix(lead, "call") {
			if r, _ := utf8.DecodeRuneInString(first); !unicode.IsUpper(r) {
				continue
			}
		}
		name := titleCase(first)
		if second := m[3]; second != "" && plausibleNameWord(second) {
			r, _ := utf8.DecodeRuneInString(second)
			if explicit || unicode.IsUpper(r) {
				name += " " + titleCase(second)
			}
		}
		return name
	}
	return ""
}

// BareName reads a message typed in answer to "what's your name": once
// emails and phone numbers are removed, what is left must be one to three
// letter-only words.
func BareName(text string) string {
	rest := emailRe.ReplaceAllString(text, " ")
	rest = phoneRe.ReplaceAllString(rest, " ")
	words := strings.FieldsFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '.' || r == '/'
	})
	if len(words) == 0 || len(words) > 3 {
		return ""
	}
	for i, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) && r != '\'' && r != '-' {
				return ""
			}
		}
		if !plausibleNameWord(w) || fillerWords[strings.ToLower(w)] {
			return ""
		}
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}

func plausibleNameWord(w string) bool {
	lw := strings.ToLower(w)
	if utf8.RuneCountInString(lw) < 2 {
		return false
	}
	if nameStopwords[lw] || propertyVocab[lw] || searchVerbs[lw] || thanksWords[lw] || IsKnownLocation(lw) {
		return false
	}
	if _, ok := propertyTypes[lw]; ok {
		return false
	}
	return true
}

func titleCase(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
