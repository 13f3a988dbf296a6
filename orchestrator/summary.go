package orchestrator

import (
	"fmt"
	"strings"

	"github.com/hupe1980/planmesh/core"
)

// ClarificationText is returned for messages that match no domain.
const ClarificationText = "I'm not sure what you'd like help with. I can assist with:\n" +
	"- Meal planning (creating weekly meal plans)\n" +
	"- Shopping lists (generating grocery lists)\n" +
	"- Travel planning (planning trips and itineraries)\n\n" +
	"What would you like to do?"

// Summarize renders the user-facing text for a routed intent. Failed results
// surface the router message verbatim; a successful result without the
// expected payload falls back to the router message.
func Summarize(intent core.Intent, res core.RouteResult) string {
	if !res.Success {
		return res.Message
	}
	switch intent {
	case core.IntentMealPlanning:
		if plan, ok := res.Data.(*core.MealPlan); ok && plan != nil {
			return fmt.Sprintf("✓ Created a %d-day meal plan with %d meals using %d recipes.",
				plan.DurationDays(), len(plan.Meals), plan.TotalRecipes)
		}
	case core.IntentShopping:
		if list, ok := res.Data.(*core.ShoppingList); ok && list != nil {
			return fmt.Sprintf("✓ Generated shopping list with %d items across %d categories. Estimated total: $%.2f",
				len(list.Items), len(list.Categories), list.EstimatedTotal)
		}
	case core.IntentTravel:
		if trip, ok := res.Data.(*core.TripPlan); ok && trip != nil {
			return fmt.Sprintf("✓ Planned %d-day trip to %s. Accommodation: %s. Estimated cost: $%.2f",
				trip.DurationDays(), trip.Destination, trip.Accommodation.Name, trip.EstimatedCost)
		}
	case core.IntentMultiDomain:
		var b strings.Builder
		b.WriteString("✓ Completed multiple tasks:\n")
		var lines []string
		for _, sub := range res.SubResults() {
			if sub.Success {
				lines = append(lines, "  - "+sub.Message)
			}
		}
		b.WriteString(strings.Join(lines, "\n"))
		return b.String()
	}
	return res.Message
}
