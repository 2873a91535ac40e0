package ports

import "context"

// Port: a boundary for caching provider table responses keyed by the
// normalized coordinate list. Keys are expected to be consistent (already
// normalized) by the caller.
type MatrixCache interface {
	// Get returns the cached matrix and whether the key was present.
	Get(ctx context.Context, key string) (RawTravelMatrix, bool, error)
	// Put stores the matrix for the key, overwriting any previous value.
	Put(ctx context.Context, key string, m RawTravelMatrix) error
}
