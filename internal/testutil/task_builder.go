package testutil

import (
	"time"

	"github.com/hupe1980/planmesh/core"
)

// TaskStateBuilder constructs valid task states for store tests.
// Example:
//
//	st := NewTaskStateBuilder("u1").Agent("travel").Step(2, 4).Context("dest", "Rome").Build()
type TaskStateBuilder struct {
	st core.TaskState
}

// NewTaskStateBuilder creates a paused one-step task owned by userID.
func NewTaskStateBuilder(userID string) *TaskStateBuilder {
	return &TaskStateBuilder{st: core.TaskState{
		UserID:     userID,
		AgentType:  "meal_planning",
		Status:     core.TaskPaused,
		TotalSteps: 1,
		Context:    map[string]any{},
		CreatedAt:  Epoch,
	}}
}

// Agent sets the agent type (chainable).
func (b *TaskStateBuilder) Agent(agentType string) *TaskStateBuilder {
	b.st.AgentType = agentType
	return b
}

// Status sets the lifecycle status (chainable).
func (b *TaskStateBuilder) Status(s core.TaskStatus) *TaskStateBuilder { b.st.Status = s; return b }

// Step sets current and total steps (chainable).
func (b *TaskStateBuilder) Step(current, total int) *TaskStateBuilder {
	b.st.CurrentStep, b.st.TotalSteps = current, total
	return b
}

// Context sets a context key (chainable).
func (b *TaskStateBuilder) Context(key string, val any) *TaskStateBuilder {
	b.st.Context[key] = val
	return b
}

// Build returns a copy of the built state.
func (b *TaskStateBuilder) Build() core.TaskState { return *b.st.Clone() }

// MealPlan returns a plan spanning days days with one dinner per day drawn
// from recipes distinct recipes.
func MealPlan(userID string, days, recipes int) *core.MealPlan {
	plan := &core.MealPlan{
		PlanID:       "plan-" + userID,
		UserID:       userID,
		StartDate:    Epoch,
		EndDate:      Epoch.AddDate(0, 0, days-1),
		TotalRecipes: recipes,
	}
	for d := 0; d < days; d++ {
		plan.Meals = append(plan.Meals, core.Meal{
			MealType:   "dinner",
			RecipeID:   "r" + string(rune('a'+d%max(recipes, 1))),
			RecipeName: "Recipe",
		})
	}
	return plan
}

// ShoppingList returns a list with items spread over the named categories.
func ShoppingList(userID string, total float64, categories ...string) *core.ShoppingList {
	l := &core.ShoppingList{
		ListID:         "list-" + userID,
		UserID:         userID,
		CreatedDate:    Epoch,
		Categories:     map[string][]core.ShoppingItem{},
		EstimatedTotal: total,
	}
	for _, c := range categories {
		item := core.ShoppingItem{Name: c + " item", Quantity: 1, Unit: "pc", Category: c}
		l.Items = append(l.Items, item)
		l.Categories[c] = append(l.Categories[c], item)
	}
	return l
}

// TripPlan returns a plan for destination between start and end.
func TripPlan(userID, destination string, start, end time.Time, hotel string, cost float64) *core.TripPlan {
	return &core.TripPlan{
		TripID:        "trip-" + userID,
		UserID:        userID,
		Destination:   destination,
		StartDate:     start,
		EndDate:       end,
		Accommodation: core.Accommodation{Name: hotel, Type: "hotel", Location: destination},
		EstimatedCost: cost,
	}
}
