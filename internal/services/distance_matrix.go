package services

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/obs"
	"ambulance-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// MatrixOptions tunes BuildDistanceMatrix.
type MatrixOptions struct {
	// Origins searched concurrently. Values <= 1 build the matrix sequentially.
	Workers int
}

// BuildDistanceMatrix resolves each location to its nearest network node and
// fills an (N+1)×(N+1) matrix of shortest-path lengths in kilometers.
//
// Pairs with no path hold the unreachable sentinel. In that case the complete
// matrix is still returned, together with an *domain.UnreachableError that
// matches domain.ErrMatrixIncomplete. The result depends only on the network
// snapshot and the locations.
func BuildDistanceMatrix(
	ctx context.Context,
	network ports.RoadNetwork,
	locations []domain.Location,
	opts MatrixOptions,
) (_ *domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "matrix.Build")(&err)

	if network == nil {
		return nil, errors.New("build distance matrix: network must be non-nil")
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("build distance matrix: %w: no locations", domain.ErrInvalidInput)
	}

	nodes := make([]ports.NodeID, len(locations))
	for i, loc := range locations {
		id, err := network.NearestNode(loc.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("build distance matrix: nearest node for %q: %w: %w", loc.Label, domain.ErrNetworkAcquisition, err)
		}
		nodes[i] = id
	}

	m := domain.NewDistanceMatrix(len(locations))

	// Each origin writes only its own row, so rows can be filled in any order.
	fillRow := func(i int) {
		row := rowLengths(network, nodes, i)
		for j, meters := range row {
			if i == j {
				continue
			}
			if math.IsInf(meters, 1) {
				m.Set(i, j, domain.Unreachable())
				continue
			}
			m.Set(i, j, meters/1000)
		}
	}

	if opts.Workers <= 1 {
		for i := range nodes {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("build distance matrix: %w", err)
			}
			fillRow(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := range nodes {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				fillRow(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("build distance matrix: %w", err)
		}
	}

	if err := CheckComplete(m, locations); err != nil {
		return m, err
	}
	return m, nil
}

// rowLengths returns path lengths in meters from nodes[i] to every node, with
// +Inf for missing paths. One-to-many networks answer the row in one search.
func rowLengths(network ports.RoadNetwork, nodes []ports.NodeID, i int) []float64 {
	if otm, ok := network.(ports.OneToManyNetwork); ok {
		return otm.ShortestPathLengths(nodes[i], nodes)
	}

	row := make([]float64, len(nodes))
	for j := range nodes {
		if i == j {
			continue
		}
		meters, ok := network.ShortestPathLength(nodes[i], nodes[j])
		if !ok {
			meters = math.Inf(1)
		}
		row[j] = meters
	}
	return row
}

// CheckComplete scans m and returns an *domain.UnreachableError naming every
// unreachable (from, to) label pair, or nil.
func CheckComplete(m *domain.DistanceMatrix, locations []domain.Location) error {
	if m.Complete() {
		return nil
	}

	missing := m.MissingPairs()

	pairs := make([][2]string, 0, len(missing))
	for _, p := range missing {
		pairs = append(pairs, [2]string{labelAt(locations, p[0]), labelAt(locations, p[1])})
	}
	return &domain.UnreachableError{Pairs: pairs}
}

func labelAt(locations []domain.Location, i int) string {
	if i < len(locations) {
		return locations[i].Label
	}
	return fmt.Sprintf("#%d", i)
}
