package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"vehicle-route-service/internal/domain"
	"vehicle-route-service/internal/platform/obs"
	"vehicle-route-service/internal/ports"
)

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// Table fetches the full duration and distance matrices for the given
// coordinate list from the OSRM table endpoint.
//
// The coordinate string doubles as the cache key: the same request always
// serves from the persistent matrix cache when one is configured. Snapped
// node pairs OSRM cannot route between come back as null and are stored as
// zero legs.
func (o *OSRMProvider) Table(ctx context.Context, coords []domain.Coordinates) (_ ports.RawTravelMatrix, err error) {
	defer obs.Time(ctx, "osrm.Table")(&err)

	if len(coords) == 0 {
		return ports.RawTravelMatrix{}, errors.New("coordinate list is empty")
	}
	for i, c := range coords {
		if !c.Valid() {
			return ports.RawTravelMatrix{}, fmt.Errorf("coordinate %d: %w", i, domain.ErrInvalidLocation)
		}
	}

	key := coordinateString(coords)

	if o.cache != nil {
		cached, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			return ports.RawTravelMatrix{}, fmt.Errorf("matrix cache get: %w", err)
		}
		if ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf(
		"%s/table/v1/%s/%s?annotations=duration,distance",
		o.baseURL, o.profile, key,
	)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, endpoint)
	})
	if err != nil {
		return ports.RawTravelMatrix{}, fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return ports.RawTravelMatrix{}, fmt.Errorf("decode table response: %w", err)
	}

	if tr.Code != "Ok" {
		return ports.RawTravelMatrix{}, fmt.Errorf("table returned %q: %s", tr.Code, tr.Message)
	}

	durations, err := denseRows(tr.Durations, len(coords))
	if err != nil {
		return ports.RawTravelMatrix{}, fmt.Errorf("durations: %w", err)
	}
	distances, err := denseRows(tr.Distances, len(coords))
	if err != nil {
		return ports.RawTravelMatrix{}, fmt.Errorf("distances: %w", err)
	}

	raw := ports.RawTravelMatrix{Durations: durations, Distances: distances}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, raw); err != nil {
			log.Printf("matrix cache write failed: %v", err)
		}
	}

	return raw, nil
}

// coordinateString renders coords in OSRM path order: lon,lat pairs joined
// with semicolons.
func coordinateString(coords []domain.Coordinates) string {
	var b strings.Builder
	for i, c := range coords {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatFloat(c.Lon, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(c.Lat, 'f', -1, 64))
	}
	return b.String()
}

func denseRows(rows [][]*float64, n int) ([][]float64, error) {
	if len(rows) != n {
		return nil, fmt.Errorf("expected %d rows; got %d", n, len(rows))
	}

	out := make([][]float64, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d: expected %d entries; got %d", i, n, len(row))
		}
		out[i] = make([]float64, n)
		for j, v := range row {
			if v != nil {
				out[i][j] = *v
			}
		}
	}
	return out, nil
}
