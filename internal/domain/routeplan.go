package domain

import (
	"fmt"
	"time"
)

// RoutePlan owns the full entity graph for one planning request: depots,
// vehicles, visits and the travel matrix. Vehicles and visits live in dense
// arenas and reference each other by index, so the propagation pass never
// chases object cycles.
//
// A plan is built once per request, mutated in place move-by-move by the
// search, and discarded when cleared or superseded. It is not safe for
// concurrent use; callers serialize access per plan.
type RoutePlan struct {
	Name               string
	Depots             []Depot
	SouthWestCorner    Coordinates
	NorthEastCorner    Coordinates
	Vehicles           []*Vehicle
	Visits             []*Visit
	Matrix             *TravelMatrix
	StartDateTime      time.Time
	EndDateTime        time.Time
	ExtraLocationCount int
	Score              Score
}

// NewRoutePlan validates referential integrity across the vehicle sequences
// and visit arena, then derives the prev/next links and arrival times for
// any pre-assigned sequences.
//
// Rejected with ErrDanglingReference: a sequence index outside the visit
// arena, and a visit claimed by more than one vehicle.
func NewRoutePlan(
	name string,
	depots []Depot,
	vehicles []*Vehicle,
	visits []*Visit,
	matrix *TravelMatrix,
) (*RoutePlan, error) {
	p := &RoutePlan{
		Name:     name,
		Depots:   depots,
		Vehicles: vehicles,
		Visits:   visits,
		Matrix:   matrix,
	}

	claimed := make(map[int]int, len(visits))
	for vi, vehicle := range vehicles {
		for _, visitIdx := range vehicle.Visits {
			if visitIdx < 0 || visitIdx >= len(visits) {
				return nil, fmt.Errorf(
					"new route plan: %w: vehicle %q references visit index %d (have %d visits)",
					ErrDanglingReference, vehicle.ID, visitIdx, len(visits),
				)
			}
			if owner, ok := claimed[visitIdx]; ok {
				return nil, fmt.Errorf(
					"new route plan: %w: visit %d claimed by vehicles %q and %q",
					ErrDanglingReference, visits[visitIdx].ID, vehicles[owner].ID, vehicle.ID,
				)
			}
			claimed[visitIdx] = vi
		}
	}

	for _, v := range visits {
		v.clearDerived()
	}
	for vi := range vehicles {
		p.relink(vi)
		p.propagateFrom(vi, 0)
	}

	return p, nil
}

// VisitIndex resolves a visit id to its arena index.
func (p *RoutePlan) VisitIndex(id int) (int, bool) {
	for i, v := range p.Visits {
		if v.ID == id {
			return i, true
		}
	}
	return NoIndex, false
}

// VisitDrivingTimeFromPrevious is the travel time from the previous
// standstill (depot for the first stop). ok is false when unassigned.
func (p *RoutePlan) VisitDrivingTimeFromPrevious(visit int) (int, bool) {
	v := p.Visits[visit]
	if !v.Assigned() {
		return 0, false
	}
	if v.Prev == NoIndex {
		depot := p.Vehicles[v.Vehicle].Depot
		return p.Matrix.DrivingTimeSeconds(depot.Location.ID, v.Location.ID), true
	}
	return p.Matrix.DrivingTimeSeconds(p.Visits[v.Prev].Location.ID, v.Location.ID), true
}

// VisitDrivingTimeToDepot is the terminal leg back to the vehicle's depot.
// Reporting only; it is not part of the schedule chain. ok is false when
// unassigned.
func (p *RoutePlan) VisitDrivingTimeToDepot(visit int) (int, bool) {
	v := p.Visits[visit]
	if !v.Assigned() {
		return 0, false
	}
	depot := p.Vehicles[v.Vehicle].Depot
	return p.Matrix.DrivingTimeSeconds(v.Location.ID, depot.Location.ID), true
}

// VehicleTotalDemand sums the demand of the vehicle's assigned visits.
func (p *RoutePlan) VehicleTotalDemand(vehicle int) int {
	total := 0
	for _, vi := range p.Vehicles[vehicle].Visits {
		total += p.Visits[vi].Demand
	}
	return total
}

// VehicleTotalDrivingTimeSeconds sums every leg depot -> v1 -> ... -> vn ->
// depot, each visit's service duration, and the fixed per-stop dwell.
func (p *RoutePlan) VehicleTotalDrivingTimeSeconds(vehicle int) int {
	veh := p.Vehicles[vehicle]
	if len(veh.Visits) == 0 {
		return 0
	}

	total := 0
	prev := veh.Depot.Location.ID
	for _, vi := range veh.Visits {
		v := p.Visits[vi]
		total += p.Matrix.DrivingTimeSeconds(prev, v.Location.ID)
		total += int(v.ServiceDuration / time.Second)
		total += StopDwellSeconds
		prev = v.Location.ID
	}
	total += p.Matrix.DrivingTimeSeconds(prev, veh.Depot.Location.ID)

	return total
}

// VehicleTotalDrivingDistanceMeters sums the same legs without service or
// dwell additions.
func (p *RoutePlan) VehicleTotalDrivingDistanceMeters(vehicle int) int {
	veh := p.Vehicles[vehicle]
	if len(veh.Visits) == 0 {
		return 0
	}

	total := 0
	prev := veh.Depot.Location.ID
	for _, vi := range veh.Visits {
		v := p.Visits[vi]
		total += p.Matrix.DrivingDistanceMeters(prev, v.Location.ID)
		prev = v.Location.ID
	}
	total += p.Matrix.DrivingDistanceMeters(prev, veh.Depot.Location.ID)

	return total
}

// VehicleTotalFuelLitre is driving distance over mileage, integer division.
// Zero mileage reports zero fuel rather than dividing by it.
func (p *RoutePlan) VehicleTotalFuelLitre(vehicle int) int {
	mileage := p.Vehicles[vehicle].Mileage
	if mileage <= 0 {
		return 0
	}
	return p.VehicleTotalDrivingDistanceMeters(vehicle) / mileage
}

// VehicleArrivalTime is the arrival back at the depot: the last visit's
// departure plus the return leg, or the departure time itself for an empty
// vehicle. nil while the chain is unresolved.
func (p *RoutePlan) VehicleArrivalTime(vehicle int) *time.Time {
	veh := p.Vehicles[vehicle]
	if len(veh.Visits) == 0 {
		t := veh.DepartureTime
		return &t
	}

	last := p.Visits[veh.Visits[len(veh.Visits)-1]]
	dep := last.DepartureTime()
	if dep == nil {
		return nil
	}
	back := p.Matrix.DrivingTimeSeconds(last.Location.ID, veh.Depot.Location.ID)
	t := dep.Add(time.Duration(back) * time.Second)
	return &t
}

// TotalDrivingTimeSeconds is the plan-level driving time: the vehicle totals
// plus every visit's service duration.
func (p *RoutePlan) TotalDrivingTimeSeconds() int {
	total := 0
	for vi := range p.Vehicles {
		total += p.VehicleTotalDrivingTimeSeconds(vi)
	}
	for _, v := range p.Visits {
		total += int(v.ServiceDuration / time.Second)
	}
	return total
}

// TotalDrivingDistanceMeters sums the vehicle distances.
func (p *RoutePlan) TotalDrivingDistanceMeters() int {
	total := 0
	for vi := range p.Vehicles {
		total += p.VehicleTotalDrivingDistanceMeters(vi)
	}
	return total
}

// TotalFuelLitre sums the vehicle fuel totals.
func (p *RoutePlan) TotalFuelLitre() int {
	total := 0
	for vi := range p.Vehicles {
		total += p.VehicleTotalFuelLitre(vi)
	}
	return total
}

// UnassignedVisitCount counts visits not yet placed on any vehicle.
func (p *RoutePlan) UnassignedVisitCount() int {
	n := 0
	for _, v := range p.Visits {
		if !v.Assigned() {
			n++
		}
	}
	return n
}
