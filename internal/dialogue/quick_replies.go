package dialogue

import (
	"strings"

	"github.com/ent0n29/realtybot/internal/intent"
	"github.com/ent0n29/realtybot/internal/session"
)

// Quick-reply actions that are not intent labels.
const (
	ActionCancel      = "cancel"
	ActionAnotherArea = "another_area"
	// ActionViewPrefix is followed by a listing id from the latest results.
	ActionViewPrefix = "view:"
)

var (
	menuReplies = []session.QuickReply{
		{Label: "Find a property", Action: string(intent.PropertySearch)},
		{Label: "Schedule a viewing", Action: string(intent.ScheduleViewing)},
		{Label: "Talk to an agent", Action: string(intent.ContactAgent)},
	}
	areaReplies = []session.QuickReply{
		{Label: "Lekki", Action: "lekki"},
		{Label: "Ikoyi", Action: "ikoyi"},
		{Label: "Yaba", Action: "yaba"},
		{Label: "Abuja", Action: "abuja"},
	}
	noResultReplies = []session.QuickReply{
		{Label: "Try another area", Action: ActionAnotherArea},
		{Label: "Talk to an agent", Action: string(intent.ContactAgent)},
		{Label: "Start over", Action: string(intent.ClearChat)},
	}
	leadReplies = []session.QuickReply{
		{Label: "Cancel", Action: ActionCancel},
	}
)

// repliesFor picks the suggestions shown under a templated reply.
func repliesFor(label intent.Label) []session.QuickReply {
	switch label {
	case intent.Greeting, intent.Help, intent.BasicQA, intent.Unknown, intent.Thanks:
		return menuReplies
	case intent.ShareName, intent.ShareContact, intent.PropertyDetails:
		return []session.QuickReply{menuReplies[0], menuReplies[1]}
	}
	return nil
}

func cardReplies(id string) []session.QuickReply {
	return []session.QuickReply{{Label: "Schedule a viewing", Action: ActionViewPrefix + id}}
}

func isCancel(text string) bool {
	u := intent.Parse(text)
	if len(u.Tokens) > 4 {
		return false
	}
	return u.HasPhrase("cancel", "never mind", "nevermind", "forget it", "stop", "exit")
}

// labelFor finds the visible label of action in the most recent assistant
// turn, so the transcript shows what was tapped.
func labelFor(turns []session.Turn, action string) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Speaker != session.SpeakerAssistant {
			continue
		}
		for _, qr := range turns[i].QuickReplies {
			if qr.Action == action {
				return qr.Label
			}
		}
	}
	return strings.ReplaceAll(action, "_", " ")
}
