// README: Distance matrix client over the Google Maps API with an in-process cache.
package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"googlemaps.github.io/maps"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/geo"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/observability"
)

// MaxPoints bounds a single matrix request: one customer plus at most
// 24 shops. The provider enforces a similar per-request element limit.
const MaxPoints = 25

const requestTimeout = 10 * time.Second

var (
	// ErrRateLimited means the provider rejected the call for quota
	// reasons; callers may retry later.
	ErrRateLimited = errors.New("routing provider rate limited")
	// ErrUnavailable covers every other provider failure: timeouts,
	// malformed responses, unroutable points.
	ErrUnavailable = errors.New("routing provider unavailable")
	// ErrBadPoints is returned when the input point list violates the
	// client's preconditions.
	ErrBadPoints = errors.New("invalid matrix points")
)

// Matrix holds all-pairs travel metrics for a point list. Index 0 is the
// customer, 1..n-1 are shops in cart-group order. Consumers must not
// assume symmetry.
type Matrix struct {
	Distances [][]float64 // meters
	Durations [][]float64 // seconds
}

// Len returns the number of points covered by the matrix.
func (m *Matrix) Len() int { return len(m.Distances) }

// DistanceMatrixAPI is the slice of *maps.Client the matrix client needs.
type DistanceMatrixAPI interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
}

// Client fetches distance matrices and memoizes them by rounded
// coordinates. Entries are immutable once inserted and kept for the
// process lifetime; shop and customer locations rarely move within a
// session, and ClearCache exists for operators. Safe for concurrent use.
type Client struct {
	api DistanceMatrixAPI

	mu    sync.Mutex
	cache map[string]*Matrix
}

// NewClient builds a Client talking to the Google Distance Matrix API.
func NewClient(apiKey string) (*Client, error) {
	api, err := maps.NewClient(
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return NewClientWithAPI(api), nil
}

// NewClientWithAPI wires an explicit API implementation (tests).
func NewClientWithAPI(api DistanceMatrixAPI) *Client {
	return &Client{api: api, cache: make(map[string]*Matrix)}
}

// GetMatrix returns the all-pairs matrix for the given points. points[0]
// must be the customer and points[1:] the shops in a stable order. No
// retries happen here; retry policy belongs to the caller.
func (c *Client) GetMatrix(ctx context.Context, points []geo.Coordinate) (*Matrix, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrBadPoints, len(points))
	}
	if len(points) > MaxPoints {
		return nil, fmt.Errorf("%w: %d points exceeds limit of %d", ErrBadPoints, len(points), MaxPoints)
	}
	keys := make([]string, len(points))
	for i, p := range points {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: point %d is not a valid coordinate", ErrBadPoints, i)
		}
		keys[i] = p.Key()
	}

	cacheKey := strings.Join(keys, ";")
	c.mu.Lock()
	if m, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		observability.MatrixCacheHits.Inc()
		return m, nil
	}
	c.mu.Unlock()
	observability.MatrixCacheMisses.Inc()

	resp, err := c.api.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      keys,
		Destinations: keys,
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return nil, classify(err)
	}

	m, err := fromResponse(resp, len(points))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[cacheKey] = m
	c.mu.Unlock()
	return m, nil
}

// ClearCache drops every memoized matrix.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]*Matrix)
	c.mu.Unlock()
}

func fromResponse(resp *maps.DistanceMatrixResponse, n int) (*Matrix, error) {
	if resp == nil || len(resp.Rows) != n {
		return nil, fmt.Errorf("%w: expected %d rows", ErrUnavailable, n)
	}
	m := &Matrix{
		Distances: make([][]float64, n),
		Durations: make([][]float64, n),
	}
	for i, row := range resp.Rows {
		if len(row.Elements) != n {
			return nil, fmt.Errorf("%w: row %d has %d elements, expected %d", ErrUnavailable, i, len(row.Elements), n)
		}
		m.Distances[i] = make([]float64, n)
		m.Durations[i] = make([]float64, n)
		for j, el := range row.Elements {
			if el.Status != "OK" {
				return nil, fmt.Errorf("%w: element %d,%d status %s", ErrUnavailable, i, j, el.Status)
			}
			m.Distances[i][j] = float64(el.Distance.Meters)
			m.Durations[i][j] = el.Duration.Seconds()
		}
	}
	return m, nil
}

// classify maps provider errors onto the two failure classes callers
// switch on. The maps library surfaces API statuses as error text, so the
// string matching is confined here.
func classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "OVER_QUERY_LIMIT") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "429") {
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, msg)
}
