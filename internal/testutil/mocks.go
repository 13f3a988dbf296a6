package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/planmesh/core"
)

// MockMealPlanner is a testify mock of core.MealPlanner.
type MockMealPlanner struct{ mock.Mock }

func (m *MockMealPlanner) GenerateMealPlan(ctx context.Context, userID string, days int, prefs map[string]any) (*core.MealPlan, error) {
	args := m.Called(ctx, userID, days, prefs)
	plan, _ := args.Get(0).(*core.MealPlan)
	return plan, args.Error(1)
}

// MockShoppingPlanner is a testify mock of core.ShoppingPlanner.
type MockShoppingPlanner struct{ mock.Mock }

func (m *MockShoppingPlanner) GenerateShoppingList(ctx context.Context, userID string, plan *core.MealPlan, prefs map[string]any) (*core.ShoppingList, error) {
	args := m.Called(ctx, userID, plan, prefs)
	list, _ := args.Get(0).(*core.ShoppingList)
	return list, args.Error(1)
}

// MockTravelPlanner is a testify mock of core.TravelPlanner.
type MockTravelPlanner struct{ mock.Mock }

func (m *MockTravelPlanner) PlanTrip(ctx context.Context, userID string, req core.TripRequest, prefs map[string]any) (*core.TripPlan, error) {
	args := m.Called(ctx, userID, req, prefs)
	trip, _ := args.Get(0).(*core.TripPlan)
	return trip, args.Error(1)
}

// MockAgents bundles fresh mocks for every domain.
type MockAgents struct {
	Meal     *MockMealPlanner
	Shopping *MockShoppingPlanner
	Travel   *MockTravelPlanner
}

// NewMockAgents creates a MockAgents.
func NewMockAgents() *MockAgents {
	return &MockAgents{Meal: &MockMealPlanner{}, Shopping: &MockShoppingPlanner{}, Travel: &MockTravelPlanner{}}
}

// Agents returns the mocks as core.Agents.
func (m *MockAgents) Agents() core.Agents {
	return core.Agents{Meal: m.Meal, Shopping: m.Shopping, Travel: m.Travel}
}

// AssertExpectations asserts every mock's expectations.
func (m *MockAgents) AssertExpectations(t mock.TestingT) {
	m.Meal.AssertExpectations(t)
	m.Shopping.AssertExpectations(t)
	m.Travel.AssertExpectations(t)
}

// FuncMealPlanner adapts a function to core.MealPlanner.
type FuncMealPlanner func(ctx context.Context, userID string, days int, prefs map[string]any) (*core.MealPlan, error)

func (f FuncMealPlanner) GenerateMealPlan(ctx context.Context, userID string, days int, prefs map[string]any) (*core.MealPlan, error) {
	return f(ctx, userID, days, prefs)
}
