package domain

import (
	"errors"
	"testing"
)

func TestNewTravelMatrixZeroFillsMissingEntries(t *testing.T) {
	durations := [][]float64{{0, 120}}
	distances := [][]float64{{0}}

	m, err := NewTravelMatrix(durations, distances, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := m.DrivingTimeSeconds(0, 1); got != 120 {
		t.Errorf("duration (0,1) = %d, want 120", got)
	}
	if got := m.DrivingTimeSeconds(2, 1); got != 0 {
		t.Errorf("missing duration (2,1) = %d, want 0", got)
	}
	if got := m.DrivingDistanceMeters(0, 2); got != 0 {
		t.Errorf("missing distance (0,2) = %d, want 0", got)
	}
}

func TestNewTravelMatrixRejectsOversizedInput(t *testing.T) {
	durations := [][]float64{{0, 1, 2}, {1, 0, 2}, {2, 1, 0}}

	_, err := NewTravelMatrix(durations, nil, 2)
	if !errors.Is(err, ErrMatrixShapeMismatch) {
		t.Fatalf("error = %v, want ErrMatrixShapeMismatch", err)
	}

	_, err = NewTravelMatrix([][]float64{{0, 1, 2}}, nil, 2)
	if !errors.Is(err, ErrMatrixShapeMismatch) {
		t.Fatalf("error = %v, want ErrMatrixShapeMismatch", err)
	}
}

func TestTravelMatrixLookupRounds(t *testing.T) {
	m, err := NewTravelMatrix([][]float64{{0, 108.4}, {107.5, 0}}, [][]float64{{0, 999.6}, {999.4, 0}}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := m.DrivingTimeSeconds(0, 1); got != 108 {
		t.Errorf("duration = %d, want 108", got)
	}
	if got := m.DrivingTimeSeconds(1, 0); got != 108 {
		t.Errorf("duration = %d, want 108 (round half up)", got)
	}
	if got := m.DrivingDistanceMeters(0, 1); got != 1000 {
		t.Errorf("distance = %d, want 1000", got)
	}
}

func TestTravelMatrixExtend(t *testing.T) {
	m, err := NewTravelMatrix([][]float64{{0, 60}, {60, 0}}, [][]float64{{0, 500}, {500, 0}}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	to := []MatrixLeg{{DurationSeconds: 100, DistanceMeters: 900}, {DurationSeconds: 110, DistanceMeters: 950}}
	from := []MatrixLeg{{DurationSeconds: 101, DistanceMeters: 901}, {DurationSeconds: 111, DistanceMeters: 951}}

	id, err := m.Extend(to, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Fatalf("new location id = %d, want 2", id)
	}
	if m.Size() != 3 {
		t.Fatalf("size = %d, want 3", m.Size())
	}

	if got := m.DrivingTimeSeconds(0, 2); got != 100 {
		t.Errorf("duration (0,2) = %d, want 100", got)
	}
	if got := m.DrivingTimeSeconds(2, 1); got != 111 {
		t.Errorf("duration (2,1) = %d, want 111", got)
	}
	if got := m.DrivingDistanceMeters(1, 2); got != 950 {
		t.Errorf("distance (1,2) = %d, want 950", got)
	}
	if got := m.DrivingTimeSeconds(2, 2); got != 0 {
		t.Errorf("self duration = %d, want 0", got)
	}
}

func TestTravelMatrixExtendRejectsWithoutMutation(t *testing.T) {
	m, err := NewTravelMatrix([][]float64{{0, 60}, {60, 0}}, nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Wrong leg count: the matrix must stay untouched.
	_, err = m.Extend([]MatrixLeg{{DurationSeconds: 1}}, []MatrixLeg{{DurationSeconds: 1}})
	if !errors.Is(err, ErrMatrixShapeMismatch) {
		t.Fatalf("error = %v, want ErrMatrixShapeMismatch", err)
	}
	if m.Size() != 2 {
		t.Errorf("size changed after rejected extend: %d", m.Size())
	}
	if got := m.DrivingTimeSeconds(0, 1); got != 60 {
		t.Errorf("duration (0,1) = %d, want 60", got)
	}
}
