package domain

import "time"

// NoIndex marks an absent arena reference (no vehicle, no previous or next
// visit).
const NoIndex = -1

// Visit is a time-windowed stop with demand and a service duration
// (the upstream system calls these customers).
//
// Vehicle, Prev and Next are arena indices into the owning RoutePlan and are
// derived from the vehicle sequences; they are never set directly by the
// search. ArrivalTime is the cascading derived field: nil while the schedule
// upstream of this visit is unresolved.
type Visit struct {
	ID              int
	Name            string
	Location        Location
	ReadyTime       time.Time
	DueTime         time.Time
	ServiceDuration time.Duration
	Demand          int
	IsExtra         bool
	BookingDate     *time.Time

	Vehicle int // index into RoutePlan.Vehicles, NoIndex when unassigned
	Prev    int // index into RoutePlan.Visits, NoIndex when first or unassigned
	Next    int // index into RoutePlan.Visits, NoIndex when last or unassigned

	ArrivalTime *time.Time
}

// Assigned reports whether the visit currently belongs to a vehicle sequence.
func (v *Visit) Assigned() bool { return v.Vehicle != NoIndex }

// DepartureTime is arrival plus service; nil propagates.
func (v *Visit) DepartureTime() *time.Time {
	if v.ArrivalTime == nil {
		return nil
	}
	t := v.ArrivalTime.Add(v.ServiceDuration)
	return &t
}

// StartServiceTime is the later of arrival and the ready time; nil while the
// arrival is unresolved.
func (v *Visit) StartServiceTime() *time.Time {
	if v.ArrivalTime == nil {
		return nil
	}
	if v.ArrivalTime.Before(v.ReadyTime) {
		t := v.ReadyTime
		return &t
	}
	t := *v.ArrivalTime
	return &t
}

// ServiceFinishedAfterDueTime reports whether service would end past the due
// time.
func (v *Visit) ServiceFinishedAfterDueTime() bool {
	dep := v.DepartureTime()
	return dep != nil && dep.After(v.DueTime)
}

// ServiceFinishedDelayMinutes is the lateness of the service end in whole
// minutes, rounded up. Zero when on time or unresolved.
func (v *Visit) ServiceFinishedDelayMinutes() int {
	dep := v.DepartureTime()
	if dep == nil {
		return 0
	}
	late := dep.Sub(v.DueTime)
	if late <= 0 {
		return 0
	}
	return int((late + time.Minute - 1) / time.Minute)
}

// clearDerived resets every field the propagation pass owns.
func (v *Visit) clearDerived() {
	v.Vehicle = NoIndex
	v.Prev = NoIndex
	v.Next = NoIndex
	v.ArrivalTime = nil
}
