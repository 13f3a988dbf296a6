package stub

import (
	"context"
	"fmt"

	"github.com/hupe1980/planmesh/core"
)

// TravelPlanner picks the first affordable lodging and fills each day with
// two activities.
//
// Recognized preferences: accommodation_type (string) and budget_per_night
// (number).
type TravelPlanner struct{}

var _ core.TravelPlanner = (*TravelPlanner)(nil)

// NewTravelPlanner creates a TravelPlanner.
func NewTravelPlanner() *TravelPlanner { return &TravelPlanner{} }

// PlanTrip validates req and builds the trip.
func (TravelPlanner) PlanTrip(_ context.Context, userID string, req core.TripRequest, prefs map[string]any) (*core.TripPlan, error) {
	if req.Destination == "" {
		return nil, core.NewValidationError("destination", "required")
	}
	if req.Budget < 0 {
		return nil, core.NewValidationError("budget", "must be non-negative")
	}
	if req.StartDate.After(req.EndDate) {
		return nil, core.NewValidationError("dates", "start date must be before or equal to end date")
	}

	nights := int(req.EndDate.Sub(req.StartDate).Hours() / 24)
	days := nights + 1
	if days > MaxDays {
		return nil, core.NewValidationError("dates", fmt.Sprintf("trip must not exceed %d days", MaxDays))
	}
	kind, _ := prefs["accommodation_type"].(string)
	perNight, capped := floatValue(prefs["budget_per_night"])

	var chosen *lodging
	for i := range lodgings {
		l := lodgings[i]
		if kind != "" && l.kind != kind {
			continue
		}
		if capped && l.costPerNight > perNight {
			continue
		}
		if l.costPerNight*float64(nights) > req.Budget {
			continue
		}
		chosen = &l
		break
	}
	if chosen == nil {
		return nil, fmt.Errorf("no accommodations found in %s within budget", req.Destination)
	}

	trip := &core.TripPlan{
		TripID:      "trip_" + core.NewID()[:8],
		UserID:      userID,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Accommodation: core.Accommodation{
			Name:         chosen.name,
			Type:         chosen.kind,
			Location:     req.Destination,
			CostPerNight: chosen.costPerNight,
			TotalCost:    chosen.costPerNight * float64(nights),
			Amenities:    append([]string(nil), chosen.amenities...),
		},
	}
	cost := trip.Accommodation.TotalCost
	for d := 0; d < days; d++ {
		day := core.DayPlan{DayNumber: d + 1, Date: req.StartDate.AddDate(0, 0, d)}
		for j := 0; j < 2; j++ {
			a := activities[(2*d+j)%len(activities)]
			a.Location = req.Destination
			day.Activities = append(day.Activities, a)
			cost += a.EstimatedCost
		}
		trip.Itinerary = append(trip.Itinerary, day)
	}
	trip.EstimatedCost = round2(cost)
	return trip, nil
}
