package intent

var propertyVocab = wordSet(
	"property", "properties", "house", "houses", "home", "homes",
	"apartment", "apartments", "flat", "flats", "duplex", "duplexes",
	"bungalow", "bungalows", "terrace", "terraced", "penthouse", "penthouses",
	"studio", "studios", "land", "plot", "plots", "mansion", "mansions",
	"listing", "listings", "bedroom", "bedrooms", "bed", "beds", "rent",
	"renting", "buy", "buying", "lease", "sale", "shortlet", "condo",
	"townhouse", "estate", "realestate",
)

var searchVerbs = wordSet(
	"find", "search", "searching", "look", "looking", "show", "need", "want",
	"buy", "rent", "lease", "get", "available", "see", "list", "any",
	"recommend", "suggest", "options", "interested", "purchase", "browse",
	"hunting", "seeking",
)

// propertyTypes maps spellings to the canonical type used by search.
var propertyTypes = map[string]string{
	"apartment":     "apartment",
	"apartments":    "apartment",
	"flat":          "apartment",
	"flats":         "apartment",
	"condo":         "apartment",
	"house":         "house",
	"houses":        "house",
	"detached":      "house",
	"mansion":       "house",
	"mansions":      "house",
	"duplex":        "duplex",
	"duplexes":      "duplex",
	"bungalow":      "bungalow",
	"bungalows":     "bungalow",
	"terrace":       "terrace",
	"terraced":      "terrace",
	"townhouse":     "terrace",
	"penthouse":     "penthouse",
	"penthouses":    "penthouse",
	"studio":        "studio",
	"studios":       "studio",
	"land":          "land",
	"plot":          "land",
	"plots":         "land",
	"semi detached": "duplex",
	"mini flat":     "apartment",
}

var locationFiller = wordSet(
	"in", "at", "around", "near", "please", "what", "about", "how",
	"anything", "any", "ok", "okay", "and", "the", "area", "side", "pls",
)

var typeFiller = wordSet("a", "an", "the", "some", "please", "pls", "any", "ok", "okay")

var affirmations = wordSet(
	"yes", "yeah", "yep", "yup", "sure", "ok", "okay", "go", "ahead", "please",
	"do", "it", "search", "alright", "pls", "absolutely", "definitely",
)

var greetingStarts = []string{
	"hi", "hello", "hey", "hiya", "howdy", "greetings", "yo", "good morning",
	"good afternoon", "good evening", "good day", "how are you", "whats up",
	"sup",
}

var thanksWords = wordSet(
	"thanks", "thank", "thx", "ty", "appreciate", "appreciated", "cheers",
	"grateful",
)

// nameStopwords are words that follow "I am"/"I'm" without being a name.
var nameStopwords = wordSet(
	"a", "an", "the", "in", "at", "from", "on", "with", "for", "to", "of",
	"not", "fine", "good", "great", "ok", "okay", "well", "here", "just",
	"new", "very", "so", "also", "and", "but", "or", "still", "currently",
	"back", "ready", "happy", "glad", "sure", "looking", "interested",
	"searching", "trying", "planning", "thinking", "hoping", "wondering",
	"calling", "writing", "asking", "moving", "relocating", "buying",
	"renting", "selling", "going", "done", "excited", "available", "free",
	"busy", "married", "single", "agent", "investor", "student", "your",
	"you", "it", "that", "this", "there", "what", "how", "who", "later",
	"now", "today", "tomorrow", "me", "my", "is", "am", "are", "really",
	"quite", "only", "bit", "little", "sorry", "confused", "lost", "unsure",
	"tired", "hungry", "based", "living", "staying", "working", "open",
	"willing", "able", "about", "after", "into", "considering", "hunting",
	"seeking", "searching", "down", "up", "out", "over", "alone",
	"curious", "too", "perfect", "expensive", "cheap", "nice", "fair",
)

// fillerWords are replies that carry no name when typed on their own.
var fillerWords = wordSet(
	"hmm", "hm", "hmmm", "um", "umm", "uh", "uhm", "erm", "er", "huh", "eh",
	"idk", "yes", "yeah", "yep", "yup", "no", "nope", "nah", "ok", "okay",
	"hi", "hello", "hey", "hiya", "yo", "sup", "what", "why", "wait", "hold",
	"please", "pls", "help", "sorry", "again", "sure", "fine", "whatever",
)
