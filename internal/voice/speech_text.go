package voice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	speechURLPattern          = regexp.MustCompile(`https?://\S+`)
	speechMarkdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	speechNairaPattern        = regexp.MustCompile(`₦\s?(\d[\d,]*)`)
)

// SpeechText rewrites assistant text so it reads naturally aloud: links and
// markup are dropped and naira amounts are spelled with their scale.
func SpeechText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = speechMarkdownLinkPattern.ReplaceAllString(raw, "$1")
	raw = speechURLPattern.ReplaceAllString(raw, " ")
	raw = speechNairaPattern.ReplaceAllStringFunc(raw, func(m string) string {
		return spokenNaira(speechNairaPattern.FindStringSubmatch(m)[1])
	})
	raw = strings.NewReplacer("*", " ", "_", " ", "#", " ", "|", " ", "~", " ", "\"", "").Replace(raw)

	var b strings.Builder
	b.Grow(len(raw))
	prevSpace := true
	for _, r := range raw {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsControl(r), unicode.In(r, unicode.So, unicode.Sk):
			// Emoji and decorative symbols.
			continue
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

func spokenNaira(digits string) string {
	n, err := strconv.ParseInt(strings.ReplaceAll(digits, ",", ""), 10, 64)
	if err != nil {
		return digits + " naira"
	}
	for _, u := range []struct {
		div  int64
		word string
	}{{1_000_000_000, "billion"}, {1_000_000, "million"}, {1_000, "thousand"}} {
		if n >= u.div {
			return fmt.Sprintf("%s %s naira", strconv.FormatFloat(float64(n)/float64(u.div), 'f', -1, 64), u.word)
		}
	}
	return fmt.Sprintf("%d naira", n)
}
