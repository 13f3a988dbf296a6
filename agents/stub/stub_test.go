package stub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/planmesh/core"
)

var clock = func() time.Time { return time.Date(2026, 2, 3, 18, 0, 0, 0, time.UTC) }

func TestMealPlanner_GeneratesDays(t *testing.T) {
	p := NewMealPlanner(clock)
	plan, err := p.GenerateMealPlan(context.Background(), "u1", 5, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, plan.DurationDays())
	assert.Len(t, plan.Meals, 15)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), plan.StartDate)
	assert.Equal(t, "breakfast", plan.Meals[0].MealType)
	assert.LessOrEqual(t, plan.TotalRecipes, len(recipes))
	assert.Positive(t, plan.TotalRecipes)
}

func TestMealPlanner_Preferences(t *testing.T) {
	p := NewMealPlanner(clock)
	plan, err := p.GenerateMealPlan(context.Background(), "u1", 2, map[string]any{
		"dietary_restrictions": []any{"vegan"},
		"meals_per_day":        1.0,
	})
	require.NoError(t, err)
	require.Len(t, plan.Meals, 2)
	for _, m := range plan.Meals {
		assert.Equal(t, "dinner", m.MealType)
		assert.Contains(t, []string{"r001", "r002", "r007"}, m.RecipeID)
	}

	plan, err = p.GenerateMealPlan(context.Background(), "u1", 1, map[string]any{"cuisine_preferences": []string{"italian"}})
	require.NoError(t, err)
	for _, m := range plan.Meals {
		assert.Equal(t, "r006", m.RecipeID)
	}
	assert.Equal(t, 1, plan.TotalRecipes)
}

func TestMealPlanner_Errors(t *testing.T) {
	p := NewMealPlanner(clock)
	_, err := p.GenerateMealPlan(context.Background(), "u1", 0, nil)
	assert.True(t, core.IsValidation(err))

	_, err = p.GenerateMealPlan(context.Background(), "u1", MaxDays+1, nil)
	assert.True(t, core.IsValidation(err))
	assert.ErrorContains(t, err, "at most 365")

	plan, err := p.GenerateMealPlan(context.Background(), "u1", MaxDays, map[string]any{"meals_per_day": 1})
	require.NoError(t, err)
	assert.Len(t, plan.Meals, MaxDays)

	_, err = p.GenerateMealPlan(context.Background(), "u1", 3, map[string]any{"dietary_restrictions": []string{"carnivore"}})
	assert.True(t, errors.Is(err, ErrNoRecipes))
}

type pantry []string

func (p pantry) Pantry(context.Context, string) ([]string, error) { return p, nil }

func TestShoppingPlanner_ConsolidatesAndSkipsPantry(t *testing.T) {
	plan := &core.MealPlan{Meals: []core.Meal{
		{Ingredients: []core.Ingredient{ing("rice", 1, "cup"), ing("garlic", 2, "cloves")}},
		{Ingredients: []core.Ingredient{ing("Rice", 2, "cup"), ing("eggs", 3, "pcs"), ing("saffron", 1, "pinch")}},
	}}
	s := NewShoppingPlanner(pantry{"Garlic"}, clock)
	list, err := s.GenerateShoppingList(context.Background(), "u1", plan, nil)
	require.NoError(t, err)

	require.Len(t, list.Items, 3)
	assert.Equal(t, "rice", list.Items[0].Name)
	assert.Equal(t, 3.0, list.Items[0].Quantity)
	assert.Equal(t, 1.8, list.Items[0].EstimatedPrice)
	assert.Len(t, list.Categories, 3)
	assert.Equal(t, "Other", list.Items[2].Category)
	assert.InDelta(t, 1.8+2.7+1.0, list.EstimatedTotal, 1e-9)

	_, err = s.GenerateShoppingList(context.Background(), "u1", nil, nil)
	assert.True(t, core.IsValidation(err))
}

func TestTravelPlanner_PlanTrip(t *testing.T) {
	start := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)
	req := core.TripRequest{Destination: "Tokyo", StartDate: start, EndDate: start.AddDate(0, 0, 7), Budget: 2000}

	trip, err := NewTravelPlanner().PlanTrip(context.Background(), "u1", req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Grand Central Hotel", trip.Accommodation.Name)
	assert.Equal(t, 8, trip.DurationDays())
	assert.Len(t, trip.Itinerary, 8)
	assert.Greater(t, trip.EstimatedCost, trip.Accommodation.TotalCost)

	trip, err = NewTravelPlanner().PlanTrip(context.Background(), "u1", req, map[string]any{"budget_per_night": 100.0})
	require.NoError(t, err)
	assert.Equal(t, "Backpackers Inn", trip.Accommodation.Name)
}

func TestTravelPlanner_Errors(t *testing.T) {
	start := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)
	tp := NewTravelPlanner()
	ctx := context.Background()

	_, err := tp.PlanTrip(ctx, "u1", core.TripRequest{Destination: "Rome", StartDate: start, EndDate: start, Budget: -1}, nil)
	assert.True(t, core.IsValidation(err))

	_, err = tp.PlanTrip(ctx, "u1", core.TripRequest{Destination: "Rome", StartDate: start, EndDate: start.AddDate(0, 0, -1)}, nil)
	assert.True(t, core.IsValidation(err))

	_, err = tp.PlanTrip(ctx, "u1", core.TripRequest{Destination: "Rome", StartDate: start, EndDate: start.AddDate(0, 0, MaxDays), Budget: 1e9}, nil)
	assert.True(t, core.IsValidation(err))

	_, err = tp.PlanTrip(ctx, "u1", core.TripRequest{Destination: "Rome", StartDate: start, EndDate: start.AddDate(0, 0, 7), Budget: 100}, nil)
	assert.ErrorContains(t, err, "no accommodations found in Rome")
}
