package core

import (
	"context"
	"time"
)

// MealPlanner generates meal plans. It returns a domain error for invalid
// input such as a non-positive day count.
type MealPlanner interface {
	GenerateMealPlan(ctx context.Context, userID string, days int, preferences map[string]any) (*MealPlan, error)
}

// ShoppingPlanner turns a meal plan into a categorized shopping list.
type ShoppingPlanner interface {
	GenerateShoppingList(ctx context.Context, userID string, plan *MealPlan, preferences map[string]any) (*ShoppingList, error)
}

// TripRequest holds the structured parameters of a travel dispatch.
type TripRequest struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Budget      float64
}

// TravelPlanner produces trip plans.
type TravelPlanner interface {
	PlanTrip(ctx context.Context, userID string, req TripRequest, preferences map[string]any) (*TripPlan, error)
}

// Agents bundles the domain agents consumed by the router. Nil members make
// the corresponding route fail with a descriptive message.
type Agents struct {
	Meal     MealPlanner
	Shopping ShoppingPlanner
	Travel   TravelPlanner
}
