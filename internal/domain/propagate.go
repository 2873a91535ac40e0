package domain

import (
	"fmt"
	"time"
)

// Structural mutation operations and the arrival-time cascade.
//
// The search applies exactly one mutation at a time; each mutation relinks
// the affected sequence and recomputes arrival times forward from the first
// changed position, stopping at the first visit whose arrival is unchanged
// (a local fixed point). Nothing outside this file writes Prev, Next,
// Vehicle or ArrivalTime.

// InsertVisitAt splices an unassigned visit into a vehicle's sequence at
// position pos (0 = first stop, len(sequence) = append).
func (p *RoutePlan) InsertVisitAt(vehicle, pos, visit int) error {
	if vehicle < 0 || vehicle >= len(p.Vehicles) {
		return fmt.Errorf("insert visit: vehicle index %d out of range", vehicle)
	}
	if visit < 0 || visit >= len(p.Visits) {
		return fmt.Errorf("insert visit: %w: visit index %d out of range", ErrDanglingReference, visit)
	}
	if p.Visits[visit].Assigned() {
		return fmt.Errorf("insert visit: visit %d already assigned to vehicle %q",
			p.Visits[visit].ID, p.Vehicles[p.Visits[visit].Vehicle].ID)
	}

	veh := p.Vehicles[vehicle]
	if pos < 0 || pos > len(veh.Visits) {
		return fmt.Errorf("insert visit: position %d out of range for %d stops", pos, len(veh.Visits))
	}

	veh.Visits = append(veh.Visits, 0)
	copy(veh.Visits[pos+1:], veh.Visits[pos:])
	veh.Visits[pos] = visit

	p.relink(vehicle)
	p.propagateFrom(vehicle, pos)
	return nil
}

// RemoveVisit takes a visit out of its vehicle's sequence and clears its
// derived state. A no-op error-free call requires the visit to be assigned.
func (p *RoutePlan) RemoveVisit(visit int) error {
	if visit < 0 || visit >= len(p.Visits) {
		return fmt.Errorf("remove visit: %w: visit index %d out of range", ErrDanglingReference, visit)
	}
	v := p.Visits[visit]
	if !v.Assigned() {
		return fmt.Errorf("remove visit: visit %d is not assigned", v.ID)
	}

	vehicle := v.Vehicle
	veh := p.Vehicles[vehicle]
	pos := NoIndex
	for i, vi := range veh.Visits {
		if vi == visit {
			pos = i
			break
		}
	}
	if pos == NoIndex {
		return fmt.Errorf("remove visit: %w: visit %d claims vehicle %q but is absent from its sequence",
			ErrDanglingReference, v.ID, veh.ID)
	}

	veh.Visits = append(veh.Visits[:pos], veh.Visits[pos+1:]...)
	v.clearDerived()

	p.relink(vehicle)
	p.propagateFrom(vehicle, pos)
	return nil
}

// Recompute re-derives every vehicle chain end to end. Running it twice
// without an intervening mutation yields identical arrival times.
func (p *RoutePlan) Recompute() {
	for vi := range p.Vehicles {
		p.propagateFrom(vi, 0)
	}
}

// relink rewrites Vehicle/Prev/Next for every visit in the sequence so the
// links mirror it exactly: first.Prev and last.Next are NoIndex, interior
// links are adjacent pairs.
func (p *RoutePlan) relink(vehicle int) {
	seq := p.Vehicles[vehicle].Visits
	for i, vi := range seq {
		v := p.Visits[vi]
		v.Vehicle = vehicle
		if i == 0 {
			v.Prev = NoIndex
		} else {
			v.Prev = seq[i-1]
		}
		if i == len(seq)-1 {
			v.Next = NoIndex
		} else {
			v.Next = seq[i+1]
		}
	}
}

// propagateFrom recomputes arrival times forward from sequence position pos.
// Work is bounded to the affected suffix: the walk stops as soon as a
// recomputed arrival equals the stored one.
func (p *RoutePlan) propagateFrom(vehicle, pos int) {
	seq := p.Vehicles[vehicle].Visits
	for i := pos; i < len(seq); i++ {
		v := p.Visits[seq[i]]
		next := p.computeArrival(v)
		if timePtrEqual(next, v.ArrivalTime) {
			return
		}
		v.ArrivalTime = next
	}
}

// computeArrival applies the single-visit recompute rule:
//   - unassigned, or an unresolved previous visit: undefined;
//   - first stop: vehicle departure plus the depot leg;
//   - otherwise: previous departure plus the connecting leg.
func (p *RoutePlan) computeArrival(v *Visit) *time.Time {
	if !v.Assigned() {
		return nil
	}
	if v.Prev == NoIndex {
		veh := p.Vehicles[v.Vehicle]
		leg := p.Matrix.DrivingTimeSeconds(veh.Depot.Location.ID, v.Location.ID)
		t := veh.DepartureTime.Add(time.Duration(leg) * time.Second)
		return &t
	}

	prev := p.Visits[v.Prev]
	dep := prev.DepartureTime()
	if dep == nil {
		return nil
	}
	leg := p.Matrix.DrivingTimeSeconds(prev.Location.ID, v.Location.ID)
	t := dep.Add(time.Duration(leg) * time.Second)
	return &t
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
