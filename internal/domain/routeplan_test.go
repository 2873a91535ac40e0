package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewRoutePlanRejectsDanglingReference(t *testing.T) {
	matrix, err := NewTravelMatrix(nil, nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	depot := Depot{ID: "d1", Location: Location{ID: 0}}
	vehicle := &Vehicle{ID: "v1", Depot: depot, Visits: []int{5}}
	visit := &Visit{ID: 1, Location: Location{ID: 1}}

	_, err = NewRoutePlan("test", []Depot{depot}, []*Vehicle{vehicle}, []*Visit{visit}, matrix)
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("error = %v, want ErrDanglingReference", err)
	}
}

func TestNewRoutePlanRejectsDoubleClaim(t *testing.T) {
	matrix, err := NewTravelMatrix(nil, nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	depot := Depot{ID: "d1", Location: Location{ID: 0}}
	v1 := &Vehicle{ID: "v1", Depot: depot, Visits: []int{0}}
	v2 := &Vehicle{ID: "v2", Depot: depot, Visits: []int{0}}
	visit := &Visit{ID: 1, Location: Location{ID: 2}}

	_, err = NewRoutePlan("test", []Depot{depot}, []*Vehicle{v1, v2}, []*Visit{visit}, matrix)
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("error = %v, want ErrDanglingReference", err)
	}
}

func TestNewRoutePlanDerivesPreAssignedChains(t *testing.T) {
	plan := testPlan(t)
	// Rebuild the same plan with a pre-assigned sequence.
	plan.Vehicles[0].Visits = nil
	rebuilt, err := NewRoutePlan(
		plan.Name,
		plan.Depots,
		[]*Vehicle{{
			ID:            "v1",
			Capacity:      10,
			Mileage:       10,
			DepartureTime: plan.Vehicles[0].DepartureTime,
			Depot:         plan.Vehicles[0].Depot,
			Visits:        []int{0, 1},
		}},
		plan.Visits,
		plan.Matrix,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rebuilt.Visits[0].Vehicle != 0 || rebuilt.Visits[1].Vehicle != 0 {
		t.Errorf("pre-assigned visits not linked to vehicle")
	}
	if rebuilt.Visits[0].ArrivalTime == nil || rebuilt.Visits[1].ArrivalTime == nil {
		t.Errorf("pre-assigned chain arrival times not derived")
	}
	if rebuilt.Visits[2].Assigned() {
		t.Errorf("unreferenced visit should stay unassigned")
	}
}

func TestVehicleTotalDemandReportsOverCapacity(t *testing.T) {
	plan := testPlan(t)
	for _, visit := range []int{0, 1, 2} {
		if err := plan.InsertVisitAt(0, len(plan.Vehicles[0].Visits), visit); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Three demands of 4 against capacity 10: the aggregate still reports 12;
	// flagging the excess is the scorer's job.
	if got := plan.VehicleTotalDemand(0); got != 12 {
		t.Errorf("total demand = %d, want 12", got)
	}
}

func TestVehicleDrivingAggregates(t *testing.T) {
	plan := testPlan(t)
	for _, visit := range []int{0, 1} {
		if err := plan.InsertVisitAt(0, len(plan.Vehicles[0].Visits), visit); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Legs: depot->A->B->depot = 3 * 600s. Service: 2 * 600s. Dwell: 2 * 60s.
	if got, want := plan.VehicleTotalDrivingTimeSeconds(0), 3*600+2*600+2*60; got != want {
		t.Errorf("total driving time = %d, want %d", got, want)
	}
	if got, want := plan.VehicleTotalDrivingDistanceMeters(0), 3000; got != want {
		t.Errorf("total driving distance = %d, want %d", got, want)
	}
	if got, want := plan.VehicleTotalFuelLitre(0), 300; got != want {
		t.Errorf("total fuel = %d, want %d", got, want)
	}

	depart := plan.Vehicles[0].DepartureTime
	back := plan.VehicleArrivalTime(0)
	if back == nil {
		t.Fatal("vehicle arrival is nil")
	}
	// B departs at depart+2400s, return leg 600s.
	if want := depart.Add(3000 * time.Second); !back.Equal(want) {
		t.Errorf("vehicle arrival = %v, want %v", back, want)
	}
}

func TestVehicleArrivalTimeEmptyVehicle(t *testing.T) {
	plan := testPlan(t)
	back := plan.VehicleArrivalTime(0)
	if back == nil || !back.Equal(plan.Vehicles[0].DepartureTime) {
		t.Errorf("empty vehicle arrival = %v, want departure time", back)
	}
}

func TestPlanTotalsSumVehiclesAndService(t *testing.T) {
	plan := testPlan(t)
	for _, visit := range []int{0, 1} {
		if err := plan.InsertVisitAt(0, len(plan.Vehicles[0].Visits), visit); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Vehicle total plus every visit's service duration, assigned or not.
	want := plan.VehicleTotalDrivingTimeSeconds(0) + 3*600
	if got := plan.TotalDrivingTimeSeconds(); got != want {
		t.Errorf("plan driving time = %d, want %d", got, want)
	}
	if got, want := plan.TotalDrivingDistanceMeters(), 3000; got != want {
		t.Errorf("plan distance = %d, want %d", got, want)
	}
	if got := plan.UnassignedVisitCount(); got != 1 {
		t.Errorf("unassigned count = %d, want 1", got)
	}
}

func TestStartServiceTimeHonorsReadyTime(t *testing.T) {
	ready := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	arrival := ready.Add(-10 * time.Minute)
	v := &Visit{ID: 1, ReadyTime: ready, ArrivalTime: &arrival}

	got := v.StartServiceTime()
	if got == nil || !got.Equal(ready) {
		t.Errorf("start of service = %v, want %v", got, ready)
	}
}

func TestServiceFinishedDelayMinutes(t *testing.T) {
	due := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	arrival := due.Add(-5 * time.Minute)
	v := &Visit{ID: 1, DueTime: due, ServiceDuration: 10 * time.Minute, ArrivalTime: &arrival}

	// Departs at 12:05, five minutes past due.
	if got := v.ServiceFinishedDelayMinutes(); got != 5 {
		t.Errorf("delay = %d, want 5", got)
	}

	onTime := due.Add(-30 * time.Minute)
	v.ArrivalTime = &onTime
	if got := v.ServiceFinishedDelayMinutes(); got != 0 {
		t.Errorf("delay = %d, want 0", got)
	}

	v.ArrivalTime = nil
	if got := v.ServiceFinishedDelayMinutes(); got != 0 {
		t.Errorf("delay for unresolved arrival = %d, want 0", got)
	}
}
