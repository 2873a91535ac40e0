package services

import (
	"fmt"
	"math"

	"vehicle-route-service/internal/domain"
)

// Minimum realistic duration for any nonzero travel leg, in seconds.
const minLegSeconds = 60

// Buffer applied to every nonzero duration to model real-world traffic.
const durationInflationFactor = 1.8

// Preprocessed travel matrices, one row and column per distinct planning
// location with the depot replicated per vehicle.
type PreprocessedMatrix struct {
	Durations [][]float64
	Distances [][]float64
}

// PreprocessTravelMatrix normalizes a raw provider matrix into the form the
// domain consumes. The pipeline order is fixed and load-bearing:
//
//  1. round every duration to the nearest integer;
//  2. clamp nonzero durations below 60s up to 60s (zero self-legs untouched);
//  3. replicate the depot row and column (index 0) vehicleCount-1 extra
//     times at the front of both matrices, so each vehicle owns its own
//     depot node with identical travel costs;
//  4. inflate every nonzero duration by 1.8, rounded to one decimal.
//
// Inflation runs after duplication, so replicated depot entries are inflated
// independently of the original row. Distances are duplicated but never
// inflated. Input slices are not mutated.
func PreprocessTravelMatrix(durations, distances [][]float64, vehicleCount int) (PreprocessedMatrix, error) {
	if err := validateSquare("duration", durations); err != nil {
		return PreprocessedMatrix{}, err
	}
	if err := validateSquare("distance", distances); err != nil {
		return PreprocessedMatrix{}, err
	}
	if len(durations) != len(distances) {
		return PreprocessedMatrix{}, fmt.Errorf(
			"preprocess travel matrix: %w: durations %dx%d vs distances %dx%d",
			domain.ErrMatrixShapeMismatch, len(durations), len(durations), len(distances), len(distances),
		)
	}
	if vehicleCount < 0 {
		return PreprocessedMatrix{}, fmt.Errorf("preprocess travel matrix: negative vehicle count %d", vehicleCount)
	}

	dur := copyMatrix(durations)
	for i := range dur {
		for j := range dur[i] {
			d := math.Round(dur[i][j])
			if d != 0 && d < minLegSeconds {
				d = minLegSeconds
			}
			dur[i][j] = d
		}
	}

	extra := vehicleCount - 1
	if extra < 0 {
		extra = 0
	}
	dur = duplicateDepot(dur, extra)
	dist := duplicateDepot(copyMatrix(distances), extra)

	for i := range dur {
		for j := range dur[i] {
			if dur[i][j] != 0 {
				dur[i][j] = math.Round(dur[i][j]*durationInflationFactor*10) / 10
			}
		}
	}

	return PreprocessedMatrix{Durations: dur, Distances: dist}, nil
}

func validateSquare(name string, m [][]float64) error {
	for i, row := range m {
		if len(row) != len(m) {
			return fmt.Errorf(
				"preprocess travel matrix: %w: %s row %d has %d entries for %d rows",
				domain.ErrMatrixShapeMismatch, name, i, len(row), len(m),
			)
		}
	}
	return nil
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// duplicateDepot inserts extra copies of row and column 0 at the front, so
// indices 0..extra all address the original depot.
func duplicateDepot(m [][]float64, extra int) [][]float64 {
	if extra == 0 || len(m) == 0 {
		return m
	}

	n := len(m) + extra
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		src := 0
		if i > extra {
			src = i - extra
		}
		row := make([]float64, 0, n)
		for j := 0; j < n; j++ {
			col := 0
			if j > extra {
				col = j - extra
			}
			row = append(row, m[src][col])
		}
		out[i] = row
	}
	return out
}
