package assistant

import "regexp"

type intent struct {
	name    string
	pattern *regexp.Regexp
	reply   string
}

// intents are checked in order before the knowledge base.
var intents = []intent{
	{
		name:    "greeting",
		pattern: regexp.MustCompile(`(?i)^\s*(hi|hello|hey|hiya|howdy|good (morning|afternoon|evening))\b`),
		reply:   "Hi! I can help with swaps, listings, your plan and your account. What would you like to know?",
	},
	{
		name:    "thanks",
		pattern: regexp.MustCompile(`(?i)\b(thanks|thank you|thx|cheers|appreciate it)\b`),
		reply:   "You're welcome! Anything else I can help with?",
	},
	{
		name:    "goodbye",
		pattern: regexp.MustCompile(`(?i)\b(bye|goodbye|see you|see ya|farewell)\b`),
		reply:   "Goodbye, and happy swapping!",
	},
	{
		name:    "human",
		pattern: regexp.MustCompile(`(?i)\b(human|real person|agent|support team|customer (service|support)|talk to (someone|a person)|contact support)\b`),
		reply:   "You can reach our support team at support@servswap.app. We usually reply within one business day.",
	},
}

var followUp = regexp.MustCompile(`(?i)^\s*(tell me more|more( info(rmation)?)?|go on|elaborate|explain (that |it )?more|what else)\W*$`)

func matchIntent(text string) (intent, bool) {
	for _, in := range intents {
		if in.pattern.MatchString(text) {
			return in, true
		}
	}
	return intent{}, false
}
