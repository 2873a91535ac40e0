package domain

// Depot is a vehicle's start and end location.
type Depot struct {
	ID       string
	Address  string
	Location Location
}
