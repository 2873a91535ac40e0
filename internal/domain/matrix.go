package domain

import (
	"fmt"
	"math"
)

// One directed travel leg between two locations.
type MatrixLeg struct {
	DurationSeconds float64
	DistanceMeters  float64
}

// TravelMatrix holds driving durations (seconds) and distances (meters)
// between every pair of known locations, densely indexed by LocationID.
//
// The matrix is built once per plan from preprocessed provider output and is
// only ever grown (one row and column per dynamically inserted location).
// Entries the provider omitted are zero, not an error.
type TravelMatrix struct {
	durations [][]float64
	distances [][]float64
}

// NewTravelMatrix builds a dense locationCount x locationCount matrix from
// provider output. Rows or columns beyond the provided data are zero-filled;
// data larger than locationCount means the input was assembled for a
// different location set and is rejected.
func NewTravelMatrix(durations, distances [][]float64, locationCount int) (*TravelMatrix, error) {
	if locationCount < 0 {
		return nil, fmt.Errorf("new travel matrix: negative location count %d", locationCount)
	}
	if len(durations) > locationCount || len(distances) > locationCount {
		return nil, fmt.Errorf(
			"new travel matrix: %w: durations=%d distances=%d locations=%d",
			ErrMatrixShapeMismatch, len(durations), len(distances), locationCount,
		)
	}
	for i, row := range durations {
		if len(row) > locationCount {
			return nil, fmt.Errorf(
				"new travel matrix: %w: duration row %d has %d entries for %d locations",
				ErrMatrixShapeMismatch, i, len(row), locationCount,
			)
		}
	}
	for i, row := range distances {
		if len(row) > locationCount {
			return nil, fmt.Errorf(
				"new travel matrix: %w: distance row %d has %d entries for %d locations",
				ErrMatrixShapeMismatch, i, len(row), locationCount,
			)
		}
	}

	m := &TravelMatrix{
		durations: dense(durations, locationCount),
		distances: dense(distances, locationCount),
	}
	return m, nil
}

// dense copies src into a n x n zero-filled grid.
func dense(src [][]float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		if i < len(src) {
			copy(out[i], src[i])
		}
	}
	return out
}

// Size returns the number of locations the matrix covers.
func (m *TravelMatrix) Size() int { return len(m.durations) }

func (m *TravelMatrix) contains(id LocationID) bool {
	return id >= 0 && int(id) < len(m.durations)
}

// DrivingTimeSeconds returns the travel time between two locations, rounded
// to the nearest second.
func (m *TravelMatrix) DrivingTimeSeconds(from, to LocationID) int {
	if !m.contains(from) || !m.contains(to) {
		return 0
	}
	return int(math.Round(m.durations[from][to]))
}

// DrivingDistanceMeters returns the travel distance between two locations,
// rounded to the nearest meter.
func (m *TravelMatrix) DrivingDistanceMeters(from, to LocationID) int {
	if !m.contains(from) || !m.contains(to) {
		return 0
	}
	return int(math.Round(m.distances[from][to]))
}

// Extend grows the matrix by one location and returns its new id.
//
// to[i] is the leg from existing location i to the new one, from[i] the leg
// back. All legs are validated before any row is touched, so a failed Extend
// leaves the matrix exactly as it was.
func (m *TravelMatrix) Extend(to, from []MatrixLeg) (LocationID, error) {
	n := m.Size()
	if len(to) != n || len(from) != n {
		return 0, fmt.Errorf(
			"extend travel matrix: %w: got %d/%d legs for %d locations",
			ErrMatrixShapeMismatch, len(to), len(from), n,
		)
	}
	for i := 0; i < n; i++ {
		if !to[i].Valid() || !from[i].Valid() {
			return 0, fmt.Errorf("extend travel matrix: invalid leg for location %d", i)
		}
	}

	for i := 0; i < n; i++ {
		m.durations[i] = append(m.durations[i], to[i].DurationSeconds)
		m.distances[i] = append(m.distances[i], to[i].DistanceMeters)
	}

	durRow := make([]float64, n+1)
	distRow := make([]float64, n+1)
	for i := 0; i < n; i++ {
		durRow[i] = from[i].DurationSeconds
		distRow[i] = from[i].DistanceMeters
	}
	m.durations = append(m.durations, durRow)
	m.distances = append(m.distances, distRow)

	return LocationID(n), nil
}

// Valid reports whether the leg is a usable matrix entry: finite and
// non-negative in both dimensions.
func (l MatrixLeg) Valid() bool {
	return !math.IsNaN(l.DurationSeconds) && !math.IsInf(l.DurationSeconds, 0) && l.DurationSeconds >= 0 &&
		!math.IsNaN(l.DistanceMeters) && !math.IsInf(l.DistanceMeters, 0) && l.DistanceMeters >= 0
}
