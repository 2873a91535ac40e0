package domain

import "time"

// StopDwellSeconds is the fixed per-stop dwell added to a vehicle's total
// driving time (reported upstream as pitStopTime).
const StopDwellSeconds = 60

// Vehicle is a capacity-bounded resource with a depot origin and an ordered
// visit sequence.
//
// Visits holds arena indices into the owning RoutePlan and is the single
// source of truth for the per-visit Prev/Next links: every structural change
// goes through the RoutePlan mutation operations, which keep the links and
// arrival times mirrored.
type Vehicle struct {
	ID            string
	VehicleType   string
	VehicleNo     string
	Capacity      int
	Mileage       int
	DepartureTime time.Time
	Depot         Depot

	Visits []int
}
