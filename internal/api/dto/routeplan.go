package dto

import "time"

// Locations on the wire are [lon, lat] pairs.

type DepotRequest struct {
	ID       string    `json:"id"`
	Address  string    `json:"address,omitempty"`
	Location []float64 `json:"location"`
}

type VehicleRequest struct {
	ID                      string    `json:"id"`
	VehicleType             string    `json:"vehicleType,omitempty"`
	VehicleNo               string    `json:"vehicleNo,omitempty"`
	Capacity                int       `json:"capacity"`
	AdditionalCapacityUnit  string    `json:"additionalCapacityUnit,omitempty"`
	AdditionalCapacityValue int       `json:"additionalCapacityValue,omitempty"`
	Mileage                 int       `json:"mileage"`
	DepartureTime           time.Time `json:"departureTime"`
	Depot                   string    `json:"depot"`
	Customers               []int     `json:"customers,omitempty"`
}

type CustomerRequest struct {
	ID              int        `json:"id"`
	Name            string     `json:"name,omitempty"`
	Location        []float64  `json:"location"`
	ReadyTime       time.Time  `json:"readyTime"`
	DueTime         time.Time  `json:"dueTime"`
	ServiceDuration int        `json:"serviceDuration,omitempty"`
	Demand          int        `json:"demand"`
	BookingDate     *time.Time `json:"bookingDate,omitempty"`
}

// DurationResponse carries precomputed raw matrices ordered
// [depot, customer1, customer2, ...]. When absent the server fetches them
// from the routing provider.
type DurationResponse struct {
	Durations [][]float64 `json:"durations"`
	Distances [][]float64 `json:"distances"`
}

type RoutePlanRequest struct {
	Name               string            `json:"name"`
	Depots             []DepotRequest    `json:"depots"`
	Vehicles           []VehicleRequest  `json:"vehicles"`
	Customers          []CustomerRequest `json:"customers"`
	DurationResponse   *DurationResponse `json:"durationResponse,omitempty"`
	SouthWestCorner    []float64         `json:"southWestCorner,omitempty"`
	NorthEastCorner    []float64         `json:"northEastCorner,omitempty"`
	StartDateTime      time.Time         `json:"startDateTime"`
	EndDateTime        time.Time         `json:"endDateTime"`
	ExtraLocationCount int               `json:"extraLocationCount,omitempty"`
}

type MatrixLegRequest struct {
	DurationSeconds int `json:"durationSeconds"`
	DistanceMeters  int `json:"distanceMeters"`
}

// AddCustomerRequest queues one dynamic customer insertion into a plan that
// may currently be solving.
type AddCustomerRequest struct {
	Customer CustomerRequest   `json:"customer"`
	ToNew    *MatrixLegRequest `json:"toNew,omitempty"`
	FromNew  *MatrixLegRequest `json:"fromNew,omitempty"`
}

type SolverStatusResponse struct {
	ID           string `json:"id"`
	SolverStatus string `json:"solverStatus"`
}
