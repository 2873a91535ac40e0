package services

import (
	"context"
	"sort"
	"sync"

	"vehicle-route-service/internal/domain"
)

// Hard-score weight per unit of capacity excess.
const capacityPenaltyWeight = 5

// Safety bound on accepted moves per solve.
const defaultMoveLimit = 20000

// ScorePlan evaluates the current entity graph:
//
//	hard   -5 per unit a vehicle's demand exceeds its capacity;
//	medium -1 per unassigned visit;
//	soft   -1 per second of vehicle driving time.
func ScorePlan(p *domain.RoutePlan) domain.Score {
	var sc domain.Score
	for i, veh := range p.Vehicles {
		if excess := p.VehicleTotalDemand(i) - veh.Capacity; excess > 0 {
			sc.Hard -= capacityPenaltyWeight * excess
		}
		sc.Soft -= p.VehicleTotalDrivingTimeSeconds(i)
	}
	sc.Medium -= p.UnassignedVisitCount()
	return sc
}

// SolveControl lets the owner of a plan interleave with the search. Both
// hooks are invoked only at recompute fixed points, never mid-cascade.
type SolveControl struct {
	// ShouldStop requests early termination; the best plan found so far is
	// kept.
	ShouldStop func() bool
	// Drain applies pending structural changes (e.g. dynamic visit
	// insertion) between search iterations.
	Drain func(*domain.RoutePlan)
}

// Solver runs an iterative-improvement search over a single plan: greedy
// cheapest-insertion construction followed by relocate moves, accepting only
// strict score improvements.
//
// Every structural change goes through the plan's mutation operations, so
// the arrival-time cascade runs after each trial and the scorer never sees
// an inconsistent graph. Locker, when set, is held around every evaluated
// move so concurrent readers also only observe fixed points.
type Solver struct {
	MoveLimit int
	Locker    sync.Locker
}

func (s *Solver) Solve(ctx context.Context, plan *domain.RoutePlan, ctl SolveControl) domain.Score {
	limit := s.MoveLimit
	if limit <= 0 {
		limit = defaultMoveLimit
	}

	moves := 0
	for moves < limit {
		if stopRequested(ctx, ctl) {
			break
		}
		if ctl.Drain != nil {
			ctl.Drain(plan)
		}

		assigned := s.assignmentPass(ctx, plan, ctl, &moves, limit)
		improved := s.improvementPass(ctx, plan, ctl, &moves, limit)
		if !assigned && !improved {
			break
		}
	}

	s.lock()
	plan.Score = ScorePlan(plan)
	s.unlock()
	return plan.Score
}

// assignmentPass places unassigned visits, cheapest feasible slot first.
// Visits are attempted in ready-time order for determinism.
func (s *Solver) assignmentPass(ctx context.Context, plan *domain.RoutePlan, ctl SolveControl, moves *int, limit int) bool {
	progressed := false
	for _, vi := range unassignedVisits(plan) {
		if *moves >= limit || stopRequested(ctx, ctl) {
			return progressed
		}

		s.lock()
		cur := ScorePlan(plan)
		vehicle, pos, best, ok := bestInsertion(plan, vi)
		if ok && best.Better(cur) {
			mustMutate(plan.InsertVisitAt(vehicle, pos, vi))
			progressed = true
			*moves++
		}
		s.unlock()
	}
	return progressed
}

// improvementPass relocates each assigned visit to its best alternative
// slot, keeping the move only when the score strictly improves.
func (s *Solver) improvementPass(ctx context.Context, plan *domain.RoutePlan, ctl SolveControl, moves *int, limit int) bool {
	improved := false
	for _, vi := range assignedVisits(plan) {
		if *moves >= limit || stopRequested(ctx, ctl) {
			return improved
		}

		s.lock()
		v := plan.Visits[vi]
		if !v.Assigned() {
			s.unlock()
			continue
		}

		cur := ScorePlan(plan)
		homeVehicle := v.Vehicle
		homePos := sequencePosition(plan, vi)

		mustMutate(plan.RemoveVisit(vi))
		vehicle, pos, best, ok := bestInsertion(plan, vi)
		if ok && best.Better(cur) {
			mustMutate(plan.InsertVisitAt(vehicle, pos, vi))
			improved = true
			*moves++
		} else {
			mustMutate(plan.InsertVisitAt(homeVehicle, homePos, vi))
		}
		s.unlock()
	}
	return improved
}

// bestInsertion trials the visit in every position of every vehicle and
// returns the placement with the best resulting score. The plan is restored
// before returning.
func bestInsertion(plan *domain.RoutePlan, visit int) (vehicle, pos int, best domain.Score, ok bool) {
	for vehIdx, veh := range plan.Vehicles {
		for p := 0; p <= len(veh.Visits); p++ {
			mustMutate(plan.InsertVisitAt(vehIdx, p, visit))
			sc := ScorePlan(plan)
			mustMutate(plan.RemoveVisit(visit))

			if !ok || sc.Better(best) {
				vehicle, pos, best, ok = vehIdx, p, sc, true
			}
		}
	}
	return vehicle, pos, best, ok
}

func unassignedVisits(p *domain.RoutePlan) []int {
	out := make([]int, 0, len(p.Visits))
	for i, v := range p.Visits {
		if !v.Assigned() {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		va, vb := p.Visits[out[a]], p.Visits[out[b]]
		if !va.ReadyTime.Equal(vb.ReadyTime) {
			return va.ReadyTime.Before(vb.ReadyTime)
		}
		return va.ID < vb.ID
	})
	return out
}

func assignedVisits(p *domain.RoutePlan) []int {
	out := make([]int, 0, len(p.Visits))
	for i, v := range p.Visits {
		if v.Assigned() {
			out = append(out, i)
		}
	}
	return out
}

func sequencePosition(p *domain.RoutePlan, visit int) int {
	for i, vi := range p.Vehicles[p.Visits[visit].Vehicle].Visits {
		if vi == visit {
			return i
		}
	}
	return domain.NoIndex
}

func stopRequested(ctx context.Context, ctl SolveControl) bool {
	if ctx.Err() != nil {
		return true
	}
	return ctl.ShouldStop != nil && ctl.ShouldStop()
}

func (s *Solver) lock() {
	if s.Locker != nil {
		s.Locker.Lock()
	}
}

func (s *Solver) unlock() {
	if s.Locker != nil {
		s.Locker.Unlock()
	}
}

// mustMutate panics on mutation errors inside the search. Every index the
// solver passes comes from the plan itself, so a failure here is a
// programming error, not an input error.
func mustMutate(err error) {
	if err != nil {
		panic(err)
	}
}
