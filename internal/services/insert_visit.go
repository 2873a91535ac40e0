package services

import (
	"fmt"

	"vehicle-route-service/internal/domain"
)

// Placeholder matrix legs for a dynamically inserted location when no live
// provider estimate is available.
const (
	placeholderToDurationSeconds   = 1653
	placeholderFromDurationSeconds = 1652
	placeholderToDistanceMeters    = 21544
	placeholderFromDistanceMeters  = 21543
)

// AddVisit inserts a new visit into a plan mid-solve: the visit joins the
// canonical set and the travel matrix gains a row and column for its
// location. Vehicle assignment is left to the search.
//
// The operation is atomic: any validation or matrix failure leaves the visit
// set and matrix exactly as they were.
type AddVisit struct {
	Visit domain.Visit
	// Leg overrides; the placeholder constants are used when nil.
	ToNew   *domain.MatrixLeg
	FromNew *domain.MatrixLeg
}

// Validate checks everything that can be checked without the plan: finite
// coordinates and usable leg overrides. The session runs it at queue time,
// so a rejection reaches the caller even when the change itself is applied
// later, between solver iterations.
func (c AddVisit) Validate() error {
	if !c.Visit.Location.Coord.Valid() {
		return fmt.Errorf(
			"add visit %d: %w: %w",
			c.Visit.ID, domain.ErrInsertionUnresolvable, domain.ErrInvalidLocation,
		)
	}
	for _, leg := range []*domain.MatrixLeg{c.ToNew, c.FromNew} {
		if leg != nil && !leg.Valid() {
			return fmt.Errorf("add visit %d: %w: invalid travel leg", c.Visit.ID, domain.ErrInsertionUnresolvable)
		}
	}
	return nil
}

func (c AddVisit) Apply(p *domain.RoutePlan) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, v := range p.Visits {
		if v.ID == c.Visit.ID {
			return fmt.Errorf("add visit: visit id %d already exists", c.Visit.ID)
		}
	}

	toLeg := domain.MatrixLeg{
		DurationSeconds: placeholderToDurationSeconds,
		DistanceMeters:  placeholderToDistanceMeters,
	}
	if c.ToNew != nil {
		toLeg = *c.ToNew
	}
	fromLeg := domain.MatrixLeg{
		DurationSeconds: placeholderFromDurationSeconds,
		DistanceMeters:  placeholderFromDistanceMeters,
	}
	if c.FromNew != nil {
		fromLeg = *c.FromNew
	}

	n := p.Matrix.Size()
	to := make([]domain.MatrixLeg, n)
	from := make([]domain.MatrixLeg, n)
	for i := 0; i < n; i++ {
		to[i] = toLeg
		from[i] = fromLeg
	}

	// Extend validates every leg before touching a row; a failure here means
	// nothing was committed.
	id, err := p.Matrix.Extend(to, from)
	if err != nil {
		return fmt.Errorf("add visit %d: %w: %w", c.Visit.ID, domain.ErrInsertionUnresolvable, err)
	}

	v := c.Visit
	v.Location.ID = id
	v.Vehicle = domain.NoIndex
	v.Prev = domain.NoIndex
	v.Next = domain.NoIndex
	v.ArrivalTime = nil
	p.Visits = append(p.Visits, &v)

	return nil
}
