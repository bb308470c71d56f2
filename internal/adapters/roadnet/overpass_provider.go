package roadnet

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/metrics"
	"ambulance-route-service/internal/platform/obs"
	"ambulance-route-service/internal/ports"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// PayloadCache stores raw network payloads by key. Implementations report a
// miss with ok=false and a nil error.
type PayloadCache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}

// OverpassProvider implements ports.NetworkProvider using the Overpass API.
//
// It coordinates:
//   - Drive-network query construction for a search area
//   - Optional payload caching (see PayloadCache)
//   - Rate-limited HTTP calls with retry/backoff
//   - Reduction to the largest strongly connected component
//
// The provider is safe for concurrent use.
type OverpassProvider struct {
	session     *http.Client
	baseURL     string
	userAgent   string
	limiter     *rate.Limiter
	cache       PayloadCache
	maxAttempts int
	backoff     time.Duration
}

// OverpassOption customises an OverpassProvider.
type OverpassOption func(*OverpassProvider)

// WithPayloadCache enables payload caching.
func WithPayloadCache(c PayloadCache) OverpassOption {
	return func(o *OverpassProvider) { o.cache = c }
}

// WithHTTPClient replaces the default client (60s timeout).
func WithHTTPClient(c *http.Client) OverpassOption {
	return func(o *OverpassProvider) { o.session = c }
}

// WithRetry sets the attempt budget and first backoff for transient failures.
func WithRetry(maxAttempts int, backoff time.Duration) OverpassOption {
	return func(o *OverpassProvider) {
		o.maxAttempts = maxAttempts
		o.backoff = backoff
	}
}

func NewOverpassProvider(baseURL string, requestsPerSecond float64, opts ...OverpassOption) (*OverpassProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("overpass base url is empty")
	}
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("overpass rate must be positive, got %v", requestsPerSecond)
	}

	o := &OverpassProvider{
		session:     &http.Client{Timeout: 60 * time.Second},
		baseURL:     baseURL,
		userAgent:   "ambulance-route-service/1.0",
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		maxAttempts: 4,
		backoff:     500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxAttempts < 1 {
		o.maxAttempts = 1
	}
	return o, nil
}

// Fetch downloads the drive network around area and returns its largest
// strongly connected component. Failures wrap domain.ErrNetworkAcquisition.
func (o *OverpassProvider) Fetch(ctx context.Context, area ports.SearchArea) (_ ports.RoadNetwork, err error) {
	defer obs.Time(ctx, "overpass.Fetch")(&err)

	if area.RadiusMeters <= 0 {
		return nil, fmt.Errorf("overpass fetch: %w: radius must be positive", domain.ErrInvalidInput)
	}

	query := DriveQuery(area)
	payload, err := o.payload(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("overpass fetch: %w: %w", domain.ErrNetworkAcquisition, err)
	}

	g, err := ParseOverpass(payload)
	if err != nil {
		return nil, fmt.Errorf("overpass fetch: %w: %w", domain.ErrNetworkAcquisition, err)
	}

	reduced := g.LargestStronglyConnected()
	if reduced.NodeCount() == 0 {
		return nil, fmt.Errorf("overpass fetch: %w: no drivable roads within %.0fm", domain.ErrNetworkAcquisition, area.RadiusMeters)
	}
	log.Printf("overpass: radius_m=%.0f nodes=%d edges=%d scc_nodes=%d scc_edges=%d",
		area.RadiusMeters, g.NodeCount(), g.EdgeCount(), reduced.NodeCount(), reduced.EdgeCount())

	return reduced, nil
}

// payload returns the raw response for query, from cache when possible.
func (o *OverpassProvider) payload(ctx context.Context, query string) ([]byte, error) {
	key := CacheKey(query)

	if o.cache != nil {
		data, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			log.Printf("network cache read failed: %v", err)
		} else if ok {
			metrics.NetworkFetches.WithLabelValues("cache", "hit").Inc()
			return data, nil
		}
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, query)
	})
	if err != nil {
		metrics.NetworkFetches.WithLabelValues("remote", "error").Inc()
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.NetworkFetches.WithLabelValues("remote", "error").Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}
	metrics.NetworkFetches.WithLabelValues("remote", "ok").Inc()

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, data); err != nil {
			log.Printf("network cache write failed: %v", err)
		}
	}

	return data, nil
}

// DriveQuery returns the Overpass QL selecting drivable ways (and their nodes)
// within area.
func DriveQuery(area ports.SearchArea) string {
	highways := make([]string, 0, len(drivableHighways))
	for h := range drivableHighways {
		highways = append(highways, h)
	}
	sort.Strings(highways)

	return fmt.Sprintf(
		`[out:json][timeout:90];way["highway"~"^(%s)$"]["area"!~"yes"]["access"!~"private|no"](around:%.0f,%.6f,%.6f);(._;>;);out body;`,
		strings.Join(highways, "|"), area.RadiusMeters, area.Anchor.Lat, area.Anchor.Lon,
	)
}

// CacheKey derives the payload cache key for query.
func CacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "overpass:" + hex.EncodeToString(sum[:])
}
