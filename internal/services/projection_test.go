package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vehicle-route-service/internal/domain"
)

// projectionTestPlan assigns one visit to each of two vehicles, both
// departing 08:00. Legs are 300s, service 600s, so each vehicle is back at
// its depot at 08:20.
func projectionTestPlan(t *testing.T) *domain.RoutePlan {
	t.Helper()
	plan := solverTestPlan(t, 2, 10, []int{4, 4})
	require.NoError(t, plan.InsertVisitAt(0, 0, 0))
	require.NoError(t, plan.InsertVisitAt(1, 0, 1))
	plan.Score = ScorePlan(plan)
	return plan
}

func TestProjectStaggersLaterVehicleDepartures(t *testing.T) {
	plan := projectionTestPlan(t)
	proj := ProjectRoutePlan(plan, StatusNotSolving, DefaultDepartureBuffer)

	depart := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	// Vehicle 0 keeps its solved schedule.
	v0 := proj.Vehicles[0]
	require.True(t, v0.DepartureTime.Equal(depart))
	require.NotNil(t, v0.ArrivalTime)
	require.True(t, v0.ArrivalTime.Equal(depart.Add(20*time.Minute)))

	// Vehicle 1 departs once vehicle 0 is back plus the buffer.
	v1 := proj.Vehicles[1]
	wantDepart := depart.Add(20*time.Minute + time.Minute)
	require.True(t, v1.DepartureTime.Equal(wantDepart))

	// Internal span is preserved by the shift.
	require.NotNil(t, v1.ArrivalTime)
	require.Equal(t, 20*time.Minute, v1.ArrivalTime.Sub(v1.DepartureTime))
}

func TestProjectShiftsVisitTimesWithTheirVehicle(t *testing.T) {
	plan := projectionTestPlan(t)
	proj := ProjectRoutePlan(plan, StatusNotSolving, DefaultDepartureBuffer)

	depart := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	first := proj.Customers[0]
	require.NotNil(t, first.ArrivalTime)
	require.True(t, first.ArrivalTime.Equal(depart.Add(5*time.Minute)))

	second := proj.Customers[1]
	require.NotNil(t, second.ArrivalTime)
	require.True(t, second.ArrivalTime.Equal(depart.Add(21*time.Minute+5*time.Minute)))
	require.NotNil(t, second.DepartureTime)
	require.Equal(t, 10*time.Minute, second.DepartureTime.Sub(*second.ArrivalTime))
}

func TestProjectLeavesAlreadyLateDeparturesAlone(t *testing.T) {
	plan := projectionTestPlan(t)
	late := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	plan.Vehicles[1].DepartureTime = late
	plan.Recompute()

	proj := ProjectRoutePlan(plan, StatusNotSolving, DefaultDepartureBuffer)
	require.True(t, proj.Vehicles[1].DepartureTime.Equal(late))
}

func TestProjectDoesNotMutateSolvingState(t *testing.T) {
	plan := projectionTestPlan(t)
	arrivalBefore := *plan.Visits[1].ArrivalTime

	_ = ProjectRoutePlan(plan, StatusSolving, DefaultDepartureBuffer)

	require.True(t, plan.Visits[1].ArrivalTime.Equal(arrivalBefore))
	require.True(t, plan.Vehicles[1].DepartureTime.Equal(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)))
}

func TestProjectCustomBuffer(t *testing.T) {
	plan := projectionTestPlan(t)
	proj := ProjectRoutePlan(plan, StatusNotSolving, 5*time.Minute)

	depart := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	require.True(t, proj.Vehicles[1].DepartureTime.Equal(depart.Add(25*time.Minute)))
}

func TestProjectLinksAndAggregates(t *testing.T) {
	plan := solverTestPlan(t, 1, 10, []int{4, 3})
	require.NoError(t, plan.InsertVisitAt(0, 0, 0))
	require.NoError(t, plan.InsertVisitAt(0, 1, 1))
	plan.Score = ScorePlan(plan)

	proj := ProjectRoutePlan(plan, StatusNotSolving, DefaultDepartureBuffer)

	veh := proj.Vehicles[0]
	require.Equal(t, []int{1, 2}, veh.Customers)
	require.Equal(t, 7, veh.TotalDemand)
	// depot->1->2->depot legs plus two services plus two dwells.
	require.Equal(t, 3*300+2*600+2*60, veh.TotalDrivingTimeSeconds)
	require.Equal(t, 3000, veh.TotalDrivingDistanceMeters)
	require.Equal(t, 120, veh.PitStopTimeSeconds)
	require.Len(t, veh.Route, 4)

	first := proj.Customers[0]
	require.Nil(t, first.PreviousCustomer)
	require.NotNil(t, first.NextCustomer)
	require.Equal(t, 2, *first.NextCustomer)
	require.NotNil(t, first.DrivingTimeFromPrevious)
	require.Equal(t, 300, *first.DrivingTimeFromPrevious)

	last := proj.Customers[1]
	require.NotNil(t, last.PreviousCustomer)
	require.Equal(t, 1, *last.PreviousCustomer)
	require.Nil(t, last.NextCustomer)
	require.NotNil(t, last.DrivingTimeToDepot)
	require.Equal(t, 300, *last.DrivingTimeToDepot)

	require.Equal(t, string(StatusNotSolving), proj.SolverStatus)
	require.Equal(t, plan.Score.String(), proj.Score)
}

func TestProjectIdleVehicle(t *testing.T) {
	plan := solverTestPlan(t, 1, 10, []int{4})
	plan.Score = ScorePlan(plan)

	proj := ProjectRoutePlan(plan, StatusNotSolving, DefaultDepartureBuffer)
	veh := proj.Vehicles[0]
	require.Empty(t, veh.Route)
	require.NotNil(t, veh.ArrivalTime)
	require.True(t, veh.ArrivalTime.Equal(veh.DepartureTime))

	unassigned := proj.Customers[0]
	require.Nil(t, unassigned.Vehicle)
	require.Nil(t, unassigned.ArrivalTime)
	require.Nil(t, unassigned.DrivingTimeFromPrevious)
}
