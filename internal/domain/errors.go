package domain

import "errors"

var (
	// ErrInvalidLocation marks non-numeric or missing coordinates in the
	// planning input. The whole plan is rejected before entity construction.
	ErrInvalidLocation = errors.New("invalid location coordinates")

	// ErrMatrixShapeMismatch marks duration/distance matrices whose
	// dimensions are inconsistent with the expected location count.
	// Input is rejected, never padded or truncated.
	ErrMatrixShapeMismatch = errors.New("travel matrix shape mismatch")

	// ErrDanglingReference marks a vehicle sequence that references a visit
	// absent from the canonical visit set, or vice versa.
	ErrDanglingReference = errors.New("dangling visit reference")

	// ErrInsertionUnresolvable marks a dynamically inserted visit whose
	// location cannot be resolved against the existing matrix. The insertion
	// is rejected as a whole and the plan is left unchanged.
	ErrInsertionUnresolvable = errors.New("inserted visit location unresolvable")
)
