package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"vehicle-route-service/internal/domain"
	"vehicle-route-service/internal/ports"
)

// Fallback service duration when the request does not carry one.
const defaultServiceDuration = 600 * time.Second

// Headroom added to every vehicle capacity at ingestion.
const defaultCapacityHeadroom = 0.10

type DepotInput struct {
	ID      string
	Address string
	Coord   domain.Coordinates
}

type VehicleInput struct {
	ID                      string
	VehicleType             string
	VehicleNo               string
	Capacity                int
	AdditionalCapacityUnit  string // "percent" (default) or "number"
	AdditionalCapacityValue int
	Mileage                 int
	DepartureTime           time.Time
	DepotID                 string
	Customers               []int // pre-assigned visit ids, in order
}

type VisitInput struct {
	ID                     int
	Name                   string
	Coord                  domain.Coordinates
	ReadyTime              time.Time
	DueTime                time.Time
	ServiceDurationSeconds int
	Demand                 int
}

// BuildPlanInput is the ingestion form of one planning request: raw entity
// data plus the provider's raw travel matrices ordered
// [depot, customer1, customer2, ...].
type BuildPlanInput struct {
	Name               string
	Depots             []DepotInput
	Vehicles           []VehicleInput
	Customers          []VisitInput
	Durations          [][]float64
	Distances          [][]float64
	SouthWestCorner    domain.Coordinates
	NorthEastCorner    domain.Coordinates
	StartDateTime      time.Time
	EndDateTime        time.Time
	ExtraLocationCount int
}

// BuildRoutePlan turns a planning request into a validated entity graph:
// fetch raw matrices from the provider when the request carries none,
// preprocess them, assign dense location ids (one depot node per vehicle,
// then customers in request order), and construct the aggregate.
func BuildRoutePlan(ctx context.Context, in BuildPlanInput, provider ports.TravelMatrixProvider) (*domain.RoutePlan, error) {
	if len(in.Depots) == 0 {
		return nil, errors.New("build route plan: at least one depot is required")
	}
	for _, d := range in.Depots {
		if !d.Coord.Valid() {
			return nil, fmt.Errorf("build route plan: depot %q: %w", d.ID, domain.ErrInvalidLocation)
		}
	}
	for _, c := range in.Customers {
		if !c.Coord.Valid() {
			return nil, fmt.Errorf("build route plan: customer %d: %w", c.ID, domain.ErrInvalidLocation)
		}
	}

	durations, distances := in.Durations, in.Distances
	if len(durations) == 0 && provider != nil {
		coords := make([]domain.Coordinates, 0, 1+len(in.Customers))
		coords = append(coords, in.Depots[0].Coord)
		for _, c := range in.Customers {
			coords = append(coords, c.Coord)
		}

		raw, err := provider.Table(ctx, coords)
		if err != nil {
			return nil, fmt.Errorf("build route plan: fetch travel matrix: %w", err)
		}
		durations, distances = raw.Durations, raw.Distances
	}

	vehicleCount := len(in.Vehicles)
	pre, err := PreprocessTravelMatrix(durations, distances, vehicleCount)
	if err != nil {
		return nil, fmt.Errorf("build route plan: %w", err)
	}

	// One matrix node per vehicle depot, then one per customer.
	depotNodes := vehicleCount
	if depotNodes == 0 {
		depotNodes = 1
	}
	locationCount := depotNodes + len(in.Customers)

	matrix, err := domain.NewTravelMatrix(pre.Durations, pre.Distances, locationCount)
	if err != nil {
		return nil, fmt.Errorf("build route plan: %w", err)
	}

	depots := make([]domain.Depot, 0, len(in.Depots))
	depotByID := make(map[string]DepotInput, len(in.Depots))
	for _, d := range in.Depots {
		depotByID[d.ID] = d
		depots = append(depots, domain.Depot{
			ID:       d.ID,
			Address:  d.Address,
			Location: domain.Location{ID: 0, Coord: d.Coord},
		})
	}

	visits := make([]*domain.Visit, 0, len(in.Customers))
	indexByID := make(map[int]int, len(in.Customers))
	for i, c := range in.Customers {
		if _, dup := indexByID[c.ID]; dup {
			return nil, fmt.Errorf("build route plan: duplicate customer id %d", c.ID)
		}
		indexByID[c.ID] = i

		service := time.Duration(c.ServiceDurationSeconds) * time.Second
		if service <= 0 {
			service = defaultServiceDuration
		}

		visits = append(visits, &domain.Visit{
			ID:              c.ID,
			Name:            c.Name,
			Location:        domain.Location{ID: domain.LocationID(depotNodes + i), Coord: c.Coord},
			ReadyTime:       c.ReadyTime,
			DueTime:         c.DueTime,
			ServiceDuration: service,
			Demand:          c.Demand,
			IsExtra:         i >= len(in.Customers)-in.ExtraLocationCount,
		})
	}

	vehicles := make([]*domain.Vehicle, 0, vehicleCount)
	for vi, v := range in.Vehicles {
		depotIn, ok := depotByID[v.DepotID]
		if !ok {
			return nil, fmt.Errorf(
				"build route plan: %w: vehicle %q references unknown depot %q",
				domain.ErrDanglingReference, v.ID, v.DepotID,
			)
		}

		seq := make([]int, 0, len(v.Customers))
		for _, id := range v.Customers {
			idx, ok := indexByID[id]
			if !ok {
				return nil, fmt.Errorf(
					"build route plan: %w: vehicle %q references unknown customer %d",
					domain.ErrDanglingReference, v.ID, id,
				)
			}
			seq = append(seq, idx)
		}

		vehicles = append(vehicles, &domain.Vehicle{
			ID:            v.ID,
			VehicleType:   v.VehicleType,
			VehicleNo:     v.VehicleNo,
			Capacity:      bumpCapacity(v),
			Mileage:       v.Mileage,
			DepartureTime: v.DepartureTime,
			Depot: domain.Depot{
				ID:      depotIn.ID,
				Address: depotIn.Address,
				// Each vehicle owns its duplicated depot node.
				Location: domain.Location{ID: domain.LocationID(vi), Coord: depotIn.Coord},
			},
			Visits: seq,
		})
	}

	plan, err := domain.NewRoutePlan(in.Name, depots, vehicles, visits, matrix)
	if err != nil {
		return nil, fmt.Errorf("build route plan: %w", err)
	}
	plan.SouthWestCorner = in.SouthWestCorner
	plan.NorthEastCorner = in.NorthEastCorner
	plan.StartDateTime = in.StartDateTime
	plan.EndDateTime = in.EndDateTime
	plan.ExtraLocationCount = in.ExtraLocationCount

	return plan, nil
}

// bumpCapacity applies the ingestion headroom: an explicit unit override
// when the request carries one, otherwise the default percentage.
func bumpCapacity(v VehicleInput) int {
	if v.AdditionalCapacityUnit == "number" {
		return v.Capacity + v.AdditionalCapacityValue
	}
	return v.Capacity + int(math.Ceil(float64(v.Capacity)*defaultCapacityHeadroom))
}
