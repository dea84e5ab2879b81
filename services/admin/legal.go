package admin

import (
	"servswap/models"
)

const legalUpdated = "2025-01-15"

// LegalSections returns the published policies.
func (s *DefaultAdminService) LegalSections() []models.LegalSection {
	return []models.LegalSection{
		{
			ID:      "tos",
			Title:   "Terms of Service",
			Summary: "These terms govern your use of ServSwap.",
			Content: termsOfService,
			Version: "v1.0",
			Updated: legalUpdated,
		},
		{
			ID:      "privacy",
			Title:   "Privacy Policy",
			Summary: "How ServSwap collects and uses personal data.",
			Content: privacyPolicy,
			Version: "v1.0",
			Updated: legalUpdated,
		},
		{
			ID:      "conduct",
			Title:   "Community Guidelines",
			Summary: "Rules every member follows so swaps stay safe and fair.",
			Content: codeOfConduct,
			Version: "v1.0",
			Updated: legalUpdated,
		},
		{
			ID:      "billing",
			Title:   "Subscription & Cancellation Policy",
			Summary: "How premium plans and the verification add-on are billed and cancelled.",
			Content: billingPolicy,
			Version: "v1.0",
			Updated: legalUpdated,
		},
	}
}

const termsOfService = `Welcome to ServSwap. By using the platform you agree to these Terms of Service.

1. Eligibility: You must be 18+ to use ServSwap.
2. Platform Use: ServSwap connects members who trade services with each other. No money changes hands for a swap.
3. Liability: ServSwap is a facilitator; members are responsible for the services they provide.
4. Swaps: A swap is an agreement between two members. Either member may cancel an accepted swap.
5. Reviews: Reviews must reflect a real, completed swap.
6. Disputes: Report problems with a swap to support within 7 days of completion.`

const privacyPolicy = `ServSwap collects only the data needed to run the community.

1. Data We Collect: Name, email, profile details, skills, messages and billing identifiers.
2. How We Use It: Matching swaps, notifications, billing and safety.
3. Third Parties: Firebase (sign-in, push), Stripe (billing), Google (assistant and speech).
4. Rights: You can delete your account and its data at any time from Settings.`

const codeOfConduct = `All ServSwap members agree to:

- Be respectful and honest about their skills.
- Deliver what they agreed to in a swap.
- Avoid discriminatory or harassing behavior.
- Keep payments and personal contact details out of public posts.

Violations may result in suspension.`

const billingPolicy = `1. Premium and the verification add-on are monthly subscriptions billed through Stripe.
2. You can cancel at any time; the plan stays active until the end of the paid period.
3. If a payment fails, paid features stay on during a short grace period while Stripe retries.
4. Deleting your account cancels every paid subscription immediately.`
