package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vehicle-route-service/internal/domain"
)

// solverTestPlan builds a plan with vehicleCount vehicles (all capacity cap,
// departing 08:00 from location 0) and demands-many unassigned visits at
// locations 1..n. Every leg costs 300s / 1000m.
func solverTestPlan(t *testing.T, vehicleCount, cap int, demands []int) *domain.RoutePlan {
	t.Helper()

	n := 1 + len(demands)
	durations := make([][]float64, n)
	distances := make([][]float64, n)
	for i := 0; i < n; i++ {
		durations[i] = make([]float64, n)
		distances[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				durations[i][j] = 300
				distances[i][j] = 1000
			}
		}
	}
	matrix, err := domain.NewTravelMatrix(durations, distances, n)
	require.NoError(t, err)

	depart := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	depot := domain.Depot{ID: "d1", Location: domain.Location{ID: 0}}

	vehicles := make([]*domain.Vehicle, 0, vehicleCount)
	for i := 0; i < vehicleCount; i++ {
		vehicles = append(vehicles, &domain.Vehicle{
			ID:            "v" + string(rune('1'+i)),
			Capacity:      cap,
			Mileage:       10,
			DepartureTime: depart,
			Depot:         depot,
		})
	}

	visits := make([]*domain.Visit, 0, len(demands))
	for i, d := range demands {
		visits = append(visits, &domain.Visit{
			ID:              i + 1,
			Location:        domain.Location{ID: domain.LocationID(i + 1)},
			ReadyTime:       depart,
			DueTime:         depart.Add(10 * time.Hour),
			ServiceDuration: 600 * time.Second,
			Demand:          d,
		})
	}

	plan, err := domain.NewRoutePlan("solver-test", []domain.Depot{depot}, vehicles, visits, matrix)
	require.NoError(t, err)
	return plan
}

func TestSolveAssignsAllVisitsWhenCapacityAllows(t *testing.T) {
	plan := solverTestPlan(t, 2, 10, []int{4, 4, 4})

	solver := &Solver{}
	score := solver.Solve(context.Background(), plan, SolveControl{})

	require.Zero(t, plan.UnassignedVisitCount())
	require.True(t, score.Feasible(), "score %v", score)
	require.Equal(t, 0, score.Medium)

	for vi, veh := range plan.Vehicles {
		require.LessOrEqual(t, plan.VehicleTotalDemand(vi), veh.Capacity)
	}
}

func TestSolveLeavesVisitUnassignedOverHardViolation(t *testing.T) {
	// Total demand 12 against a single capacity of 8: one visit has to stay
	// unassigned (medium) rather than breach capacity (hard).
	plan := solverTestPlan(t, 1, 8, []int{4, 4, 4})

	solver := &Solver{}
	score := solver.Solve(context.Background(), plan, SolveControl{})

	require.True(t, score.Feasible(), "score %v", score)
	require.Equal(t, 1, plan.UnassignedVisitCount())
	require.Equal(t, -1, score.Medium)
	require.LessOrEqual(t, plan.VehicleTotalDemand(0), 8)
}

func TestSolveStopsAtFixedPointOnRequest(t *testing.T) {
	plan := solverTestPlan(t, 1, 100, []int{1, 1, 1})

	solver := &Solver{}
	score := solver.Solve(context.Background(), plan, SolveControl{
		ShouldStop: func() bool { return true },
	})

	// Terminated before any move: nothing assigned, but the plan is still
	// internally consistent and scored.
	require.Equal(t, 3, plan.UnassignedVisitCount())
	require.Equal(t, -3, score.Medium)
	for _, v := range plan.Visits {
		require.Nil(t, v.ArrivalTime)
	}
}

func TestSolveRespectsContextCancellation(t *testing.T) {
	plan := solverTestPlan(t, 1, 100, []int{1, 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solver := &Solver{}
	solver.Solve(ctx, plan, SolveControl{})
	require.Equal(t, 2, plan.UnassignedVisitCount())
}

func TestSolveDrainsPendingChangesBetweenIterations(t *testing.T) {
	plan := solverTestPlan(t, 1, 100, []int{1})

	drained := false
	solver := &Solver{}
	solver.Solve(context.Background(), plan, SolveControl{
		Drain: func(p *domain.RoutePlan) {
			if !drained {
				drained = true
				err := AddVisit{Visit: domain.Visit{
					ID:              99,
					Location:        domain.Location{Coord: domain.Coordinates{Lon: 77.6, Lat: 12.9}},
					ReadyTime:       p.Vehicles[0].DepartureTime,
					DueTime:         p.Vehicles[0].DepartureTime.Add(12 * time.Hour),
					ServiceDuration: 600 * time.Second,
					Demand:          1,
				}}.Apply(p)
				require.NoError(t, err)
			}
		},
	})

	require.True(t, drained)
	// The dynamically added visit was picked up by a later assignment pass.
	require.Zero(t, plan.UnassignedVisitCount())
	idx, ok := plan.VisitIndex(99)
	require.True(t, ok)
	require.True(t, plan.Visits[idx].Assigned())
}

func TestScorePlanCapacityPenalty(t *testing.T) {
	plan := solverTestPlan(t, 1, 10, []int{4, 4, 4})
	for _, vi := range []int{0, 1, 2} {
		require.NoError(t, plan.InsertVisitAt(0, len(plan.Vehicles[0].Visits), vi))
	}

	sc := ScorePlan(plan)
	// Demand 12 over capacity 10: -5 * 2 hard.
	require.Equal(t, -10, sc.Hard)
	require.Equal(t, 0, sc.Medium)
	require.Equal(t, -plan.VehicleTotalDrivingTimeSeconds(0), sc.Soft)
	require.False(t, sc.Feasible())
}
