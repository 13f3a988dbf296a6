package stub

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/planmesh/core"
)

// PantryLookup returns the items a user already has.
type PantryLookup interface {
	Pantry(ctx context.Context, userID string) ([]string, error)
}

// ShoppingPlanner consolidates meal plan ingredients into a priced list.
// Items found in the user's pantry are left off.
type ShoppingPlanner struct {
	pantry PantryLookup
	now    func() time.Time
}

var _ core.ShoppingPlanner = (*ShoppingPlanner)(nil)

// NewShoppingPlanner creates a ShoppingPlanner. pantry may be nil.
func NewShoppingPlanner(pantry PantryLookup, now func() time.Time) *ShoppingPlanner {
	if now == nil {
		now = time.Now
	}
	return &ShoppingPlanner{pantry: pantry, now: now}
}

// GenerateShoppingList builds the list for plan.
func (s *ShoppingPlanner) GenerateShoppingList(ctx context.Context, userID string, plan *core.MealPlan, _ map[string]any) (*core.ShoppingList, error) {
	if plan == nil {
		return nil, core.NewValidationError("meal_plan", "required")
	}
	have := map[string]bool{}
	if s.pantry != nil {
		items, err := s.pantry.Pantry(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			have[strings.ToLower(it)] = true
		}
	}

	type key struct{ name, unit string }
	totals := map[key]float64{}
	var order []key
	for _, m := range plan.Meals {
		for _, in := range m.Ingredients {
			k := key{strings.ToLower(in.Name), in.Unit}
			if have[k.name] {
				continue
			}
			if _, seen := totals[k]; !seen {
				order = append(order, k)
			}
			totals[k] += in.Quantity
		}
	}

	list := &core.ShoppingList{
		ListID:      "list_" + core.NewID()[:8],
		UserID:      userID,
		CreatedDate: today(s.now()),
		Categories:  map[string][]core.ShoppingItem{},
		Items:       []core.ShoppingItem{},
	}
	var total float64
	for _, k := range order {
		item := core.ShoppingItem{
			Name:           k.name,
			Quantity:       totals[k],
			Unit:           k.unit,
			Category:       categorize(k.name),
			EstimatedPrice: round2(totals[k] * unitPrice(k.unit)),
		}
		total += item.EstimatedPrice
		list.Items = append(list.Items, item)
		list.Categories[item.Category] = append(list.Categories[item.Category], item)
	}
	for _, items := range list.Categories {
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	}
	list.EstimatedTotal = round2(total)
	return list, nil
}

func categorize(name string) string {
	if c, ok := categories[name]; ok {
		return c
	}
	return defaultCategory
}

func unitPrice(unit string) float64 {
	if p, ok := unitPrices[unit]; ok {
		return p
	}
	return defaultUnitPrice
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
