package roadnet

import (
	"ambulance-route-service/internal/ports"
	"container/heap"
	"math"
)

// ShortestPathLength returns the length in meters of the shortest path from
// one node to another. ok is false if either node is unknown or no path exists.
func (g *Graph) ShortestPathLength(from, to ports.NodeID) (float64, bool) {
	d := g.ShortestPathLengths(from, []ports.NodeID{to})[0]
	if math.IsInf(d, 1) {
		return 0, false
	}
	return d, true
}

// ShortestPathLengths runs one Dijkstra search from `from` and returns the
// length to each target in meters, +Inf where unreachable or unknown.
// The search stops once every known target is settled.
func (g *Graph) ShortestPathLengths(from ports.NodeID, targets []ports.NodeID) []float64 {
	out := make([]float64, len(targets))
	for i := range out {
		out[i] = math.Inf(1)
	}

	src, ok := g.index[from]
	if !ok {
		return out
	}

	want := make(map[int][]int, len(targets))
	for i, t := range targets {
		if ti, ok := g.index[t]; ok {
			want[ti] = append(want[ti], i)
		}
	}
	pending := len(want)

	dist := make([]float64, len(g.ids))
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	visited := make([]bool, len(g.ids))

	dist[src] = 0
	pq := nodePQ{{node: src, dist: 0}}
	for pq.Len() > 0 && pending > 0 {
		item := heap.Pop(&pq).(nodeItem)
		u := item.node
		// Stale entry from the lazy decrease-key.
		if visited[u] {
			continue
		}
		visited[u] = true

		if slots, ok := want[u]; ok {
			for _, i := range slots {
				out[i] = dist[u]
			}
			pending--
		}

		for _, a := range g.adj[u] {
			nd := dist[u] + a.meters
			if nd < dist[a.to] {
				dist[a.to] = nd
				heap.Push(&pq, nodeItem{node: a.to, dist: nd})
			}
		}
	}

	return out
}

type nodeItem struct {
	node int
	dist float64
}

// nodePQ is a min-heap of nodeItem ordered by dist, then node index.
type nodePQ []nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].node < pq[j].node
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x any) { *pq = append(*pq, x.(nodeItem)) }

func (pq *nodePQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
