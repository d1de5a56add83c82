package intent

import (
	"strings"

	"github.com/ent0n29/realtybot/internal/memory"
)

// Label identifies the purpose of one user utterance.
type Label string

const (
	Greeting        Label = "greeting"
	Thanks          Label = "thanks"
	PropertySearch  Label = "property_search"
	LocationSearch  Label = "location_search"
	ScheduleViewing Label = "schedule_viewing"
	ContactAgent    Label = "contact_agent"
	BudgetInfo      Label = "budget_info"
	ClearChat       Label = "clear_chat"
	Help            Label = "help"
	ShareName       Label = "share_name"
	ShareContact    Label = "share_contact"
	PropertyDetails Label = "property_details"
	BasicQA         Label = "basic_qa"
	Unknown         Label = "unknown"
)

// Rule pairs a label with its predicate.
type Rule struct {
	Label Label
	Match func(u Utterance, m memory.Slots) bool
}

// cascade is evaluated top to bottom; the first match wins. Order is the
// tie-break between overlapping rules.
var cascade = []Rule{
	{BasicQA, isBasicQA},
	{LocationSearch, isLocationSearch},
	{Greeting, isGreeting},
	{Thanks, isThanks},
	{PropertySearch, isPropertySearch},
	{ScheduleViewing, isScheduleViewing},
	{ContactAgent, isContactAgent},
	{BudgetInfo, isBudgetInfo},
	{ClearChat, isClearChat},
	{Help, isHelp},
	{ShareName, isShareName},
	{ShareContact, isShareContact},
	{PropertyDetails, isPropertyDetails},
}

// Rules returns a copy of the cascade in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(cascade))
	copy(out, cascade)
	return out
}

// Classify returns exactly one label for any input.
func Classify(text string, m memory.Slots) Label {
	u := Parse(text)
	if len(u.Tokens) == 0 && ExtractEmail(text) == "" {
		return Unknown
	}
	for _, r := range cascade {
		if r.Match(u, m) {
			return r.Label
		}
	}
	return Unknown
}

func isBasicQA(u Utterance, _ memory.Slots) bool {
	return u.HasPhrase(
		"who are you", "what are you", "whats your name", "what is your name",
		"are you a bot", "are you a robot", "are you human", "are you a human",
		"are you real", "are you an ai", "are you ai", "are you a person",
		"what can you do", "how can you help", "what do you do",
		"how do you work", "who made you", "who built you", "who created you",
		"tell me about yourself", "how does this work", "what is this chat",
		"is this a bot", "am i talking to",
	)
}

func isLocationSearch(u Utterance, _ memory.Slots) bool {
	if FindLocation(u) == "" {
		return false
	}
	if u.HasWord(propertyVocab) {
		return true
	}
	return IsKnownLocation(u.Without(locationFiller))
}

func isGreeting(u Utterance, _ memory.Slots) bool {
	return u.StartsWith(greetingStarts...) && len(u.Tokens) <= 6 && !u.HasWord(propertyVocab)
}

func isThanks(u Utterance, _ memory.Slots) bool {
	return (u.HasWord(thanksWords) || u.HasPhrase("thank you")) && len(u.Tokens) <= 8 && !u.HasWord(propertyVocab)
}

func isPropertySearch(u Utterance, m memory.Slots) bool {
	if u.HasWord(propertyVocab) && u.HasWord(searchVerbs) {
		return true
	}
	if ExtractBedrooms(u.Raw) > 0 {
		return true
	}
	if rest := u.Without(typeFiller); rest != "" {
		if _, ok := propertyTypes[rest]; ok {
			return true
		}
		if rest == "properties" || rest == "listings" {
			return true
		}
	}
	return m.HasCriteria() && isAffirmation(u)
}

func isAffirmation(u Utterance) bool {
	if len(u.Tokens) == 0 || len(u.Tokens) > 5 {
		return false
	}
	for _, t := range u.Tokens {
		if !affirmations[t] {
			return false
		}
	}
	return true
}

func isScheduleViewing(u Utterance, _ memory.Slots) bool {
	return u.HasWord(wordSet("schedule", "viewing", "inspection", "inspect", "tour", "appointment")) ||
		u.HasPhrase("book a visit", "visit the", "see the house", "see the property",
			"see the apartment", "see it", "come and see", "view the", "view it")
}

func isContactAgent(u Utterance, _ memory.Slots) bool {
	return u.HasWord(wordSet("agent", "agents", "realtor", "realtors", "representative", "consultant", "human")) ||
		u.HasPhrase("speak to", "speak with", "talk to", "talk with", "contact an",
			"contact agent", "contact you", "contact someone", "contact the", "contact me",
			"customer care", "call me back", "give me a call", "phone call", "get in touch",
			"reach out", "whatsapp me")
}

func isBudgetInfo(u Utterance, _ memory.Slots) bool {
	return u.HasWord(wordSet("budget", "afford", "affordable", "mortgage", "financing",
		"finance", "installment", "installments", "pricing", "loan", "cost", "costs")) ||
		u.HasPhrase("price range", "payment plan", "how much")
}

func isClearChat(u Utterance, _ memory.Slots) bool {
	if len(u.Tokens) == 0 || len(u.Tokens) > 5 {
		return false
	}
	switch u.Tokens[0] {
	case "clear", "reset", "restart", "wipe", "erase", "delete":
		return true
	}
	return u.StartsWith("start over", "start again", "new chat", "new conversation", "please clear", "please reset")
}

func isHelp(u Utterance, _ memory.Slots) bool {
	return u.HasWord(wordSet("help", "menu", "options", "commands", "assist", "support", "confused")) ||
		u.HasPhrase("what can i ask", "what can i say", "how do i", "guide me")
}

func isShareName(u Utterance, _ memory.Slots) bool {
	return ExtractName(u.Raw) != ""
}

func isShareContact(u Utterance, _ memory.Slots) bool {
	return ExtractEmail(u.Raw) != "" || ExtractPhone(u.Raw) != ""
}

func isPropertyDetails(u Utterance, _ memory.Slots) bool {
	return u.HasWord(wordSet("details", "detail", "features", "amenities", "bathrooms",
		"sqm", "size", "photos", "pictures", "describe", "description", "parking",
		"furnished", "serviced")) ||
		u.HasPhrase("more info", "more information", "tell me more", "more about",
			"floor plan", "about this", "about that", "about the property", "still available",
			"is it", "does it")
}

// String satisfies fmt.Stringer for log fields.
func (l Label) String() string { return string(l) }

// ParseLabel maps a quick-reply action such as "schedule_viewing" to a label.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range cascade {
		if r.Label == l {
			return l, true
		}
	}
	return Unknown, l == Unknown
}
