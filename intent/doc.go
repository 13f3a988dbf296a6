// Package intent maps a free-text message to a core.Intent by keyword
// presence.
//
// Each domain owns a keyword vocabulary. A domain is present when any of its
// keywords occurs as a substring of the lower-cased message. No presence
// yields ambiguous, one yields that domain and several yield multi_domain.
// Classification is deterministic; there is no scoring or negation handling.
//
// Example:
//
//	intent.Classify("Create a 5-day vegetarian meal plan") // meal_planning
//	intent.Classify("Plan meals and buy groceries")        // multi_domain
package intent
