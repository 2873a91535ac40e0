package ports

import (
	"context"

	"vehicle-route-service/internal/domain"
)

// Raw N x N travel matrices for an ordered location list, durations in
// seconds and distances in meters. Rows may be shorter than N when the
// provider had no data; the core zero-fills those entries.
type RawTravelMatrix struct {
	Durations [][]float64
	Distances [][]float64
}

// Contract for retrieving the full travel matrix for a location list.
type TravelMatrixProvider interface {
	// Return travel durations and distances between every ordered pair.
	Table(ctx context.Context, coords []domain.Coordinates) (RawTravelMatrix, error)
}
