package core

import "time"

// Ingredient is a quantity of a named ingredient.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Meal is one scheduled recipe within a meal plan.
type Meal struct {
	MealType     string       `json:"meal_type"`
	RecipeID     string       `json:"recipe_id"`
	RecipeName   string       `json:"recipe_name"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions,omitempty"`
	PrepTime     int          `json:"prep_time"`
	CookTime     int          `json:"cook_time"`
}

// MealPlan is produced by a MealPlanner.
type MealPlan struct {
	PlanID       string    `json:"plan_id"`
	UserID       string    `json:"user_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Meals        []Meal    `json:"meals"`
	TotalRecipes int       `json:"total_recipes"`
}

// DurationDays returns the inclusive number of days covered by the plan.
func (p *MealPlan) DurationDays() int { return inclusiveDays(p.StartDate, p.EndDate) }

// ShoppingItem is a consolidated shopping list line.
type ShoppingItem struct {
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	EstimatedPrice float64 `json:"estimated_price"`
}

// ShoppingList is produced by a ShoppingPlanner from a meal plan.
type ShoppingList struct {
	ListID         string                    `json:"list_id"`
	UserID         string                    `json:"user_id"`
	CreatedDate    time.Time                 `json:"created_date"`
	Items          []ShoppingItem            `json:"items"`
	Categories     map[string][]ShoppingItem `json:"categories"`
	EstimatedTotal float64                   `json:"estimated_total"`
}

// Accommodation is the lodging chosen for a trip.
type Accommodation struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Location     string   `json:"location"`
	CostPerNight float64  `json:"cost_per_night"`
	TotalCost    float64  `json:"total_cost"`
	Amenities    []string `json:"amenities,omitempty"`
}

// Activity is an itinerary item.
type Activity struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Duration      int     `json:"duration"`
	EstimatedCost float64 `json:"estimated_cost"`
	Location      string  `json:"location,omitempty"`
}

// DayPlan is one day of a trip itinerary.
type DayPlan struct {
	DayNumber  int        `json:"day_number"`
	Date       time.Time  `json:"date"`
	Activities []Activity `json:"activities"`
	Notes      string     `json:"notes,omitempty"`
}

// TripPlan is produced by a TravelPlanner.
type TripPlan struct {
	TripID        string        `json:"trip_id"`
	UserID        string        `json:"user_id"`
	Destination   string        `json:"destination"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Accommodation Accommodation `json:"accommodation"`
	Itinerary     []DayPlan     `json:"itinerary"`
	EstimatedCost float64       `json:"estimated_cost"`
}

// DurationDays returns the inclusive number of days covered by the trip.
func (p *TripPlan) DurationDays() int { return inclusiveDays(p.StartDate, p.EndDate) }

func inclusiveDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
