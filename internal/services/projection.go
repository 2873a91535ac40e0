package services

import (
	"time"

	"vehicle-route-service/internal/domain"
)

// DefaultDepartureBuffer is the minimum gap between one vehicle's arrival
// back at the depot and the next vehicle's reported departure.
const DefaultDepartureBuffer = 60 * time.Second

// Reporting view of one visit. Field names follow the upstream reporting
// contract (camelCase, customers terminology).
type VisitProjection struct {
	ID                       int        `json:"id"`
	Name                     string     `json:"name,omitempty"`
	Location                 []float64  `json:"location"`
	ReadyTime                time.Time  `json:"readyTime"`
	DueTime                  time.Time  `json:"dueTime"`
	ServiceDurationSeconds   int        `json:"serviceDuration"`
	Demand                   int        `json:"demand"`
	Vehicle                  *string    `json:"vehicle"`
	PreviousCustomer         *int       `json:"previousCustomer"`
	NextCustomer             *int       `json:"nextCustomer"`
	ArrivalTime              *time.Time `json:"arrivalTime"`
	DepartureTime            *time.Time `json:"departureTime"`
	StartServiceTime         *time.Time `json:"startServiceTime"`
	DrivingTimeFromPrevious  *int       `json:"drivingTimeSecondsFromPreviousStandstill"`
	DrivingTimeToDepot       *int       `json:"drivingTimeSecondsToDepot"`
	ServiceFinishedDelayMins int        `json:"serviceFinishedDelayInMinutes"`
	PitStopTimeSeconds       int        `json:"pitStopTime"`
}

// Reporting view of one vehicle with its aggregates.
type VehicleProjection struct {
	ID                         string      `json:"id"`
	VehicleType                string      `json:"vehicleType,omitempty"`
	VehicleNo                  string      `json:"vehicleNo,omitempty"`
	Capacity                   int         `json:"capacity"`
	Mileage                    int         `json:"mileage"`
	Depot                      string      `json:"depot"`
	DepartureTime              time.Time   `json:"departureTime"`
	ArrivalTime                *time.Time  `json:"arrivalTime"`
	Customers                  []int       `json:"customers"`
	Route                      [][]float64 `json:"route"`
	TotalDemand                int         `json:"totalDemand"`
	TotalDrivingTimeSeconds    int         `json:"totalDrivingTimeSeconds"`
	TotalDrivingDistanceMeters int         `json:"totalDrivingDistanceMeters"`
	TotalFuelLitre             int         `json:"totalFuelLitre"`
	PitStopTimeSeconds         int         `json:"pitStopTime"`
}

// Reporting view of the whole plan.
type PlanProjection struct {
	Name                       string              `json:"name"`
	SolverStatus               string              `json:"solverStatus"`
	Score                      string              `json:"score"`
	StartDateTime              time.Time           `json:"startDateTime"`
	EndDateTime                time.Time           `json:"endDateTime"`
	ExtraLocationCount         int                 `json:"extraLocationCount"`
	Vehicles                   []VehicleProjection `json:"vehicles"`
	Customers                  []VisitProjection   `json:"customers"`
	TotalDrivingTimeSeconds    int                 `json:"totalDrivingTimeSeconds"`
	TotalDrivingDistanceMeters int                 `json:"totalDrivingDistanceMeters"`
	TotalFuelLiter             int                 `json:"totalFuelLiter"`
}

// ProjectRoutePlan builds the reporting view of a plan.
//
// Departures are staggered for presentation: vehicle 0 keeps its solved
// schedule; every later vehicle is shifted forward in absolute time until
// its departure is at least buffer after the previous vehicle's arrival
// back at the depot. Each vehicle's internal span is preserved exactly, and
// nothing here feeds back into the solving state.
func ProjectRoutePlan(p *domain.RoutePlan, status SolverStatus, buffer time.Duration) PlanProjection {
	shifts := departureShifts(p, buffer)

	out := PlanProjection{
		Name:                       p.Name,
		SolverStatus:               string(status),
		Score:                      p.Score.String(),
		StartDateTime:              p.StartDateTime,
		EndDateTime:                p.EndDateTime,
		ExtraLocationCount:         p.ExtraLocationCount,
		Vehicles:                   make([]VehicleProjection, 0, len(p.Vehicles)),
		Customers:                  make([]VisitProjection, 0, len(p.Visits)),
		TotalDrivingTimeSeconds:    p.TotalDrivingTimeSeconds(),
		TotalDrivingDistanceMeters: p.TotalDrivingDistanceMeters(),
		TotalFuelLiter:             p.TotalFuelLitre(),
	}

	for vi, veh := range p.Vehicles {
		vp := VehicleProjection{
			ID:                         veh.ID,
			VehicleType:                veh.VehicleType,
			VehicleNo:                  veh.VehicleNo,
			Capacity:                   veh.Capacity,
			Mileage:                    veh.Mileage,
			Depot:                      veh.Depot.ID,
			DepartureTime:              veh.DepartureTime.Add(shifts[vi]),
			ArrivalTime:                shiftTime(p.VehicleArrivalTime(vi), shifts[vi]),
			Customers:                  make([]int, 0, len(veh.Visits)),
			Route:                      vehicleRoute(p, vi),
			TotalDemand:                p.VehicleTotalDemand(vi),
			TotalDrivingTimeSeconds:    p.VehicleTotalDrivingTimeSeconds(vi),
			TotalDrivingDistanceMeters: p.VehicleTotalDrivingDistanceMeters(vi),
			TotalFuelLitre:             p.VehicleTotalFuelLitre(vi),
			PitStopTimeSeconds:         domain.StopDwellSeconds * len(veh.Visits),
		}
		for _, visitIdx := range veh.Visits {
			vp.Customers = append(vp.Customers, p.Visits[visitIdx].ID)
		}
		out.Vehicles = append(out.Vehicles, vp)
	}

	for vi, v := range p.Visits {
		shift := time.Duration(0)
		var vehicleID *string
		if v.Assigned() {
			shift = shifts[v.Vehicle]
			id := p.Vehicles[v.Vehicle].ID
			vehicleID = &id
		}

		proj := VisitProjection{
			ID:                       v.ID,
			Name:                     v.Name,
			Location:                 v.Location.Coord.CoordsToList(),
			ReadyTime:                v.ReadyTime,
			DueTime:                  v.DueTime,
			ServiceDurationSeconds:   int(v.ServiceDuration / time.Second),
			Demand:                   v.Demand,
			Vehicle:                  vehicleID,
			PreviousCustomer:         visitID(p, v.Prev),
			NextCustomer:             visitID(p, v.Next),
			ArrivalTime:              shiftTime(v.ArrivalTime, shift),
			DepartureTime:            shiftTime(v.DepartureTime(), shift),
			StartServiceTime:         shiftTime(v.StartServiceTime(), shift),
			ServiceFinishedDelayMins: v.ServiceFinishedDelayMinutes(),
			PitStopTimeSeconds:       domain.StopDwellSeconds,
		}
		if sec, ok := p.VisitDrivingTimeFromPrevious(vi); ok {
			proj.DrivingTimeFromPrevious = &sec
		}
		if sec, ok := p.VisitDrivingTimeToDepot(vi); ok {
			proj.DrivingTimeToDepot = &sec
		}
		out.Customers = append(out.Customers, proj)
	}

	return out
}

// departureShifts computes the forward shift per vehicle so that each
// departure starts at least buffer after the previous vehicle's (already
// shifted) arrival back at the depot.
func departureShifts(p *domain.RoutePlan, buffer time.Duration) []time.Duration {
	shifts := make([]time.Duration, len(p.Vehicles))
	var prevAnchor *time.Time

	for vi, veh := range p.Vehicles {
		if vi > 0 && prevAnchor != nil {
			desired := prevAnchor.Add(buffer)
			if dep := veh.DepartureTime; dep.Before(desired) {
				shifts[vi] = desired.Sub(dep)
			}
		}

		anchor := p.VehicleArrivalTime(vi)
		if anchor == nil {
			// Unresolved chain: anchor on the departure so later vehicles
			// still stagger deterministically.
			t := veh.DepartureTime
			anchor = &t
		}
		shifted := anchor.Add(shifts[vi])
		prevAnchor = &shifted
	}

	return shifts
}

// vehicleRoute is the depot -> stops -> depot coordinate trace, empty for an
// idle vehicle.
func vehicleRoute(p *domain.RoutePlan, vehicle int) [][]float64 {
	veh := p.Vehicles[vehicle]
	if len(veh.Visits) == 0 {
		return [][]float64{}
	}

	route := make([][]float64, 0, len(veh.Visits)+2)
	route = append(route, veh.Depot.Location.Coord.CoordsToList())
	for _, vi := range veh.Visits {
		route = append(route, p.Visits[vi].Location.Coord.CoordsToList())
	}
	route = append(route, veh.Depot.Location.Coord.CoordsToList())
	return route
}

func visitID(p *domain.RoutePlan, idx int) *int {
	if idx == domain.NoIndex {
		return nil
	}
	id := p.Visits[idx].ID
	return &id
}

func shiftTime(t *time.Time, d time.Duration) *time.Time {
	if t == nil {
		return nil
	}
	shifted := t.Add(d)
	return &shifted
}
