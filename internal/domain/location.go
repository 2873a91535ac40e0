package domain

import "math"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether both components are finite numbers.
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0) &&
		!math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0)
}

// LocationID is a dense index into the plan's TravelMatrix, assigned once
// at ingestion. Travel lookups go through the id rather than coordinate
// equality, so float comparison never decides a matrix lookup.
type LocationID int

// A planning location: stable integer identity plus the raw coordinates
// it was ingested with. Coordinates are kept for reporting only.
type Location struct {
	ID    LocationID
	Coord Coordinates
}
