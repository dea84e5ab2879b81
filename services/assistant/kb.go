package assistant

// Entry is one knowledge-base topic.
type Entry struct {
	ID       string
	Title    string
	Keywords []string
	Answer   string
	FollowUp string
}

func (e Entry) keywordSet() map[string]bool {
	set := make(map[string]bool, len(e.Keywords))
	for _, k := range e.Keywords {
		set[k] = true
	}
	return set
}

// KnowledgeBase returns the built-in help topics. Order breaks score ties.
func KnowledgeBase() []Entry {
	return []Entry{
		{
			ID:       "how_swaps_work",
			Title:    "How swaps work",
			Keywords: []string{"swap", "swaps", "work", "works", "exchange", "barter", "trade", "trading", "servswap", "idea"},
			Answer:   "ServSwap lets members trade services instead of money. You list what you can do, find someone offering what you need, and propose a swap of your service for theirs.",
			FollowUp: "Every swap moves from pending to accepted, and is completed once both of you mark it done. Declined and cancelled swaps simply end.",
		},
		{
			ID:       "proposing_swap",
			Title:    "Proposing a swap",
			Keywords: []string{"propose", "proposal", "proposals", "offer", "request", "send", "start", "new", "swap", "limit"},
			Answer:   "Open a service you want, choose one of your own active services to offer, add a short message and send the proposal. The other member is notified right away.",
			FollowUp: "Free members can send 3 proposals per calendar month. Premium members can send as many as they like.",
		},
		{
			ID:       "responding_swap",
			Title:    "Accepting or declining",
			Keywords: []string{"accept", "accepting", "decline", "declining", "reject", "respond", "answer", "incoming", "received", "cancel"},
			Answer:   "Proposals you receive appear under Swaps > Received. Accept to agree on the exchange or decline if it does not suit you.",
			FollowUp: "The member who proposed can cancel while it is pending, and either of you can cancel an accepted swap if plans change.",
		},
		{
			ID:       "completing_reviewing",
			Title:    "Completing and reviewing",
			Keywords: []string{"complete", "completed", "finish", "done", "review", "reviews", "rating", "rate", "stars", "feedback"},
			Answer:   "When your part of the exchange is done, mark the swap complete. Once both of you have marked it, the swap is completed and you can each leave a 1 to 5 star review.",
			FollowUp: "Each member can review a completed swap once. Reviews feed the average rating shown on profiles.",
		},
		{
			ID:       "listing_service",
			Title:    "Listing a service",
			Keywords: []string{"list", "listing", "listings", "service", "services", "create", "add", "post", "category", "photos"},
			Answer:   "Go to My Services and add a title, description, category, tags and an estimate of the hours involved. You can upload up to 5 photos.",
			FollowUp: "Free members can keep 3 listings active at a time. Deactivate one or upgrade to premium to add more.",
		},
		{
			ID:       "premium_plan",
			Title:    "Premium plan",
			Keywords: []string{"premium", "upgrade", "plan", "subscription", "unlimited", "price", "cost", "pay", "benefits", "features"},
			Answer:   "Premium removes the free limits: unlimited swap proposals, unlimited active listings and more swap matches.",
			FollowUp: "Premium is billed monthly through Stripe. You can manage payment details from the billing portal.",
		},
		{
			ID:       "verification_badge",
			Title:    "Verification badge",
			Keywords: []string{"verification", "verified", "verify", "badge", "trust", "checkmark", "identity", "addon"},
			Answer:   "The verification badge is a paid add-on. While it is active, a badge shows on your profile so other members know you are verified.",
			FollowUp: "The badge is removed automatically if the add-on lapses, with a short grace period for failed payments.",
		},
		{
			ID:       "cancel_subscription",
			Title:    "Cancelling a subscription",
			Keywords: []string{"cancel", "cancelling", "cancellation", "subscription", "unsubscribe", "stop", "billing", "refund", "end", "downgrade"},
			Answer:   "Go to Settings > Subscription and choose Cancel. Your plan stays active until the end of the current billing period.",
			FollowUp: "After the period ends you move back to the free plan. Your listings and swaps are kept.",
		},
		{
			ID:       "messaging_connections",
			Title:    "Messaging and connections",
			Keywords: []string{"message", "messages", "messaging", "chat", "connect", "connection", "connections", "contact", "talk", "friend"},
			Answer:   "You can message members you are connected with or share a swap with. Send a connection request from any profile.",
			FollowUp: "If the other member already sent you a request, sending one back connects you immediately.",
		},
		{
			ID:       "notifications",
			Title:    "Notifications",
			Keywords: []string{"notification", "notifications", "push", "alerts", "alert", "email", "mute", "settings", "unread"},
			Answer:   "You get notifications for swap activity, messages, connection requests, likes and comments. Push can be switched off in your profile settings.",
			FollowUp: "Your inbox keeps every notification until you delete it, and you can mark them all read at once.",
		},
		{
			ID:       "safety_reporting",
			Title:    "Safety and reporting",
			Keywords: []string{"safety", "safe", "report", "scam", "abuse", "harassment", "block", "fraud", "problem", "unsafe"},
			Answer:   "Meet in public places, agree on details in chat and check reviews before swapping. Report anything suspicious to support and we will investigate.",
			FollowUp: "Accounts that break the rules can be suspended, which hides their listings and signs them out everywhere.",
		},
		{
			ID:       "account_deletion",
			Title:    "Deleting your account",
			Keywords: []string{"delete", "deleting", "deletion", "remove", "close", "account", "data", "erase", "leave"},
			Answer:   "Go to Settings > Account and choose Delete account. Any paid plan is cancelled and your open swaps are cancelled.",
			FollowUp: "Deleting is permanent. Your connections, notifications and listings are removed with the account.",
		},
		{
			ID:       "profile_editing",
			Title:    "Editing your profile",
			Keywords: []string{"profile", "edit", "update", "bio", "avatar", "photo", "picture", "skills", "name", "location"},
			Answer:   "Open your profile and tap Edit to change your name, bio, location, avatar and the skills you offer or want.",
			FollowUp: "The skills you want drive your swap matches, so keep them up to date.",
		},
	}
}
