package reply

import "github.com/ent0n29/realtybot/internal/intent"

// Kind names a template pool. Intent labels double as kinds for the
// conversational replies.
type Kind string

const (
	KindWelcome        Kind = "welcome"
	KindHowCanIHelp    Kind = "how_can_i_help"
	KindSearchFound    Kind = "search_found"
	KindSearchNone     Kind = "search_none"
	KindSearchError    Kind = "search_error"
	KindLeadSaved      Kind = "lead_saved"
	KindLeadRetry      Kind = "lead_retry"
	KindLeadCancelled  Kind = "lead_cancelled"
	KindLeadInvalid    Kind = "lead_invalid"
	KindSearchAsk      Kind = "search_ask"
	KindLeadContact    Kind = "lead_contact"
	KindLeadNeeds      Kind = "lead_requirements"
	KindLeadViewing    Kind = "lead_viewing"
	KindLeadBudget     Kind = "lead_budget"
)

func KindOf(l intent.Label) Kind { return Kind(l) }

// Placeholders: {name} renders as ", Ada" or nothing; {first} as "Ada" or
// "there"; {count}, {noun} and {where} are filled for search summaries.
var pools = map[Kind][]string{
	KindOf(intent.Greeting): {
		"Hello{name}! Looking to buy or rent? Tell me the area and the kind of home you have in mind.",
		"Hi{name}! I can help you find a property, book a viewing or reach an agent. Where would you like to live?",
		"Hey{name}! What kind of property are you looking for today?",
	},
	KindOf(intent.Thanks): {
		"You're welcome{name}! Anything else I can help you find?",
		"Happy to help{name}. Let me know if you want to see more listings.",
		"Anytime{name}! Would you like to book a viewing or speak with an agent?",
	},
	KindOf(intent.Help): {
		"I can search listings by area, type, bedrooms and budget, book viewings and connect you with an agent. Try \"3 bedroom flat in Lekki\".",
		"Here's what I can do: find properties (\"duplex in Ikoyi\"), schedule a viewing, or pass your details to an agent. Type \"clear\" to start over.",
	},
	KindOf(intent.BasicQA): {
		"I'm the virtual property assistant for this marketplace. I match you with listings and get you in touch with our agents.",
		"I'm an automated assistant, not a person, but I can find homes for you and hand you over to a human agent anytime.",
	},
	KindOf(intent.PropertyDetails): {
		"Each listing card shows the price, bedrooms and bathrooms. For floor plans, photos or availability, an agent can share the full details. Shall I book a viewing?",
		"I only have the summary details here. Would you like me to arrange a viewing or have an agent call you with more information?",
	},
	KindOf(intent.ShareName): {
		"Nice to meet you, {first}! What kind of property are you looking for?",
		"Thanks, {first}. Which area are you interested in?",
	},
	KindOf(intent.ShareContact): {
		"Thanks{name}, I've noted your contact details. An agent can reach you there. Want me to book a viewing?",
		"Got it{name}. Your details are saved for an agent to follow up. Anything specific you'd like to see?",
	},
	KindOf(intent.Unknown): {
		"I'm not sure I followed that. You can ask me for properties by area, bedrooms or budget, or type \"help\".",
		"Sorry, I didn't catch that. Could you tell me the location or type of property you want?",
		"I can help with finding and viewing properties. Try something like \"2 bedroom apartment in Yaba under 30m\".",
	},

	KindWelcome: {
		"Welcome to our property marketplace{name}! I'm your virtual assistant.",
		"Hi there{name}, welcome! I'm here to help you find your next home.",
	},
	KindHowCanIHelp: {
		"How can I help you today?",
		"What would you like to do?",
	},
	KindSearchFound: {
		"I found {count} {noun}{where}. Here are the top matches:",
		"Good news{name}: {count} {noun}{where}. Take a look:",
	},
	KindSearchNone: {
		"I couldn't find any properties{where} right now. Try another area, a different type or a higher budget.",
		"No matches{where} at the moment. Would you like to try a nearby area or adjust the filters?",
	},
	KindSearchError: {
		"Sorry, I couldn't reach our listings just now. Please try again in a moment.",
		"Our property search is having a hiccup. Give it another try shortly.",
	},
	KindLeadContact: {
		"Let's connect you with an agent. What's your name, email and phone number?",
	},
	KindLeadNeeds: {
		"What are you looking for? Tell me the property type, bedrooms and preferred location.",
	},
	KindLeadViewing: {
		"Let's book a viewing. Which property are you interested in, and when would suit you?",
	},
	KindLeadBudget: {
		"Let's talk budget. What price range are you working with, and is there anything else the agent should know?",
	},
	KindLeadSaved: {
		"Thanks{name}! Your request is in. Your reference is {ref} and an agent will contact you shortly.",
		"All set{name}. An agent will be in touch soon. Quote {ref} if you contact us.",
	},
	KindLeadRetry: {
		"Sorry, I couldn't send your details just now. Everything you entered is kept, please try submitting again.",
	},
	KindLeadCancelled: {
		"No problem, I've closed the form. What else can I help you with?",
	},
	KindLeadInvalid: {
		"I still need {fields} before I can send this to an agent.",
	},
	KindSearchAsk: {
		"Happy to help you search{name}. Which area are you interested in? For example Lekki, Ikoyi or Yaba.",
		"Sure! Which neighbourhood should I look in, and how many bedrooms do you need?",
	},
}

// Pool returns the variants for kind.
func Pool(kind Kind) []string {
	out := make([]string, len(pools[kind]))
	copy(out, pools[kind])
	return out
}
