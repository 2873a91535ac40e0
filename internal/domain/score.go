package domain

import "fmt"

// Score ranks candidate plans. Levels compare lexicographically: hard
// violations dominate medium ones, medium dominate soft. All penalty levels
// are negative-is-worse, matching the upstream hard/medium/soft convention.
type Score struct {
	Hard   int
	Medium int
	Soft   int
}

// Compare returns -1 if s is worse than other, 0 if equal, 1 if better.
func (s Score) Compare(other Score) int {
	if s.Hard != other.Hard {
		return sign(s.Hard - other.Hard)
	}
	if s.Medium != other.Medium {
		return sign(s.Medium - other.Medium)
	}
	return sign(s.Soft - other.Soft)
}

// Better reports whether s strictly improves on other.
func (s Score) Better(other Score) bool { return s.Compare(other) > 0 }

// Feasible reports whether no hard constraint is violated.
func (s Score) Feasible() bool { return s.Hard >= 0 }

func (s Score) String() string {
	return fmt.Sprintf("%dhard/%dmedium/%dsoft", s.Hard, s.Medium, s.Soft)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
