package core

// Intent is the classified purpose of a user message. It is derived per
// message and never persisted.
type Intent string

const (
	IntentMealPlanning Intent = "meal_planning"
	IntentShopping     Intent = "shopping"
	IntentTravel       Intent = "travel"
	IntentMultiDomain  Intent = "multi_domain"
	IntentAmbiguous    Intent = "ambiguous"
)

// AllIntents returns every valid intent.
func AllIntents() []Intent {
	return []Intent{IntentMealPlanning, IntentShopping, IntentTravel, IntentMultiDomain, IntentAmbiguous}
}

// DomainIntents returns the single-domain intents in routing priority order.
func DomainIntents() []Intent {
	return []Intent{IntentMealPlanning, IntentShopping, IntentTravel}
}

// String returns the wire label of the intent.
func (i Intent) String() string { return string(i) }

// IsValid reports whether i is a known intent.
func (i Intent) IsValid() bool {
	for _, v := range AllIntents() {
		if i == v {
			return true
		}
	}
	return false
}
