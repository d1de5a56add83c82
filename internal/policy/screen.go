package policy

import (
	"regexp"
	"strings"
)

// Screening is the verdict on whether free text may be forwarded to the AI
// fallback.
type Screening struct {
	Allowed bool
	Reason  string
}

var (
	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(ignore|disregard|forget)\b.{0,30}\b(previous|prior|above|all)\b.{0,20}\b(instructions?|rules?|prompts?)\b`),
		regexp.MustCompile(`(?i)\b(system prompt|developer message|jailbreak|dan mode)\b`),
		regexp.MustCompile(`(?i)\b(print|show|reveal|repeat)\b.*\b(api[_ -]?key|token|password|secret|instructions)\b`),
		regexp.MustCompile(`(?i)\bpretend (to be|you are)\b`),
	}
	offTopicKeywords = []string{
		"write code", "python script", "javascript", "homework", "essay",
		"bitcoin", "crypto", "forex", "betting", "lottery", "recipe",
	}
)

// ScreenForAI blocks prompt-injection attempts and obvious off-topic
// requests. Blocked input is answered from the templates instead.
func ScreenForAI(text string) Screening {
	in := strings.ToLower(strings.TrimSpace(text))
	if in == "" {
		return Screening{Allowed: false, Reason: "empty"}
	}
	for _, re := range injectionPatterns {
		if re.MatchString(in) {
			return Screening{Allowed: false, Reason: "injection"}
		}
	}
	for _, kw := range offTopicKeywords {
		if strings.Contains(in, kw) {
			return Screening{Allowed: false, Reason: "off_topic"}
		}
	}
	return Screening{Allowed: true}
}
