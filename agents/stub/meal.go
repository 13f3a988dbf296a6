package stub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/planmesh/core"
)

// MaxDays bounds the length of a meal plan or trip.
const MaxDays = 365

// ErrNoRecipes is returned when no recipe satisfies the dietary restrictions.
var ErrNoRecipes = errors.New("no recipes match the dietary restrictions")

// MealPlanner builds meal plans from the built-in recipe catalog.
//
// Recognized preferences: dietary_restrictions ([]string), cuisine_preferences
// ([]string) and meals_per_day (number, default 3).
type MealPlanner struct {
	now func() time.Time
}

var _ core.MealPlanner = (*MealPlanner)(nil)

// NewMealPlanner creates a MealPlanner using now for the plan start date.
func NewMealPlanner(now func() time.Time) *MealPlanner {
	if now == nil {
		now = time.Now
	}
	return &MealPlanner{now: now}
}

// GenerateMealPlan returns a plan starting today covering days days.
func (p *MealPlanner) GenerateMealPlan(ctx context.Context, userID string, days int, prefs map[string]any) (*core.MealPlan, error) {
	if days < 1 {
		return nil, core.NewValidationError("days", "must be at least 1")
	}
	if days > MaxDays {
		return nil, core.NewValidationError("days", fmt.Sprintf("must be at most %d", MaxDays))
	}
	restrictions := stringList(prefs["dietary_restrictions"])
	cuisines := stringList(prefs["cuisine_preferences"])
	mealTypes := mealTypesFor(intValue(prefs["meals_per_day"], 3))

	var pool []recipe
	for _, r := range recipes {
		if r.satisfies(restrictions) {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoRecipes
	}

	start := today(p.now())
	plan := &core.MealPlan{
		PlanID:    "plan_" + core.NewID()[:8],
		UserID:    userID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, days-1),
	}
	used := map[string]bool{}
	for d := 0; d < days; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, mt := range mealTypes {
			r := pick(pool, cuisines, len(plan.Meals))
			used[r.id] = true
			plan.Meals = append(plan.Meals, core.Meal{
				MealType:    mt,
				RecipeID:    r.id,
				RecipeName:  r.name,
				Ingredients: append([]core.Ingredient(nil), r.ingredients...),
				PrepTime:    r.prepTime,
				CookTime:    r.cookTime,
			})
		}
	}
	plan.TotalRecipes = len(used)
	return plan, nil
}

// pick rotates through the pool, preferring the cuisine whose turn it is.
func pick(pool []recipe, cuisines []string, n int) recipe {
	if len(cuisines) > 0 {
		want := cuisines[n%len(cuisines)]
		var matches []recipe
		for _, r := range pool {
			if r.cuisine == want {
				matches = append(matches, r)
			}
		}
		if len(matches) > 0 {
			return matches[(n/len(cuisines))%len(matches)]
		}
	}
	return pool[n%len(pool)]
}

func mealTypesFor(perDay int) []string {
	switch {
	case perDay <= 1:
		return []string{"dinner"}
	case perDay == 2:
		return []string{"lunch", "dinner"}
	case perDay == 3:
		return []string{"breakfast", "lunch", "dinner"}
	default:
		return []string{"breakfast", "lunch", "snack", "dinner"}
	}
}

func today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// stringList accepts []string or the []any produced by JSON decoding.
func stringList(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	default:
		return nil
	}
}

func intValue(v any, def int) int {
	switch x := v.(type) {
	case int:
		return x
	case float64:
		return int(x)
	default:
		return def
	}
}

func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
