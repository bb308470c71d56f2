package roadnet

import "slices"

// LargestStronglyConnected returns the subgraph induced by the largest
// strongly connected component, so every node can reach every other.
// Among equal-sized components the one holding the earliest-inserted node wins.
func (g *Graph) LargestStronglyConnected() *Graph {
	comps := g.stronglyConnectedComponents()
	if len(comps) == 0 {
		return NewGraph()
	}

	best := comps[0]
	for _, c := range comps[1:] {
		if len(c) > len(best) || (len(c) == len(best) && c[0] < best[0]) {
			best = c
		}
	}
	return g.subgraph(best)
}

// stronglyConnectedComponents runs an iterative Tarjan search. Each component
// is returned as sorted node indices.
func (g *Graph) stronglyConnectedComponents() [][]int {
	n := len(g.ids)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	type frame struct{ v, next int }

	var (
		counter int
		stack   []int
		comps   [][]int
	)
	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
	}

	for s := 0; s < n; s++ {
		if index[s] != -1 {
			continue
		}
		visit(s)
		calls := []frame{{v: s}}

		for len(calls) > 0 {
			top := len(calls) - 1
			v := calls[top].v

			if calls[top].next < len(g.adj[v]) {
				w := g.adj[v][calls[top].next].to
				calls[top].next++
				if index[w] == -1 {
					visit(w)
					calls = append(calls, frame{v: w})
				} else if onStack[w] {
					low[v] = min(low[v], index[w])
				}
				continue
			}

			if low[v] == index[v] {
				var comp []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				slices.Sort(comp)
				comps = append(comps, comp)
			}

			calls = calls[:top]
			if top > 0 {
				u := calls[top-1].v
				low[u] = min(low[u], low[v])
			}
		}
	}

	return comps
}

// subgraph copies the nodes at the given sorted indices and the arcs between them.
func (g *Graph) subgraph(nodes []int) *Graph {
	keep := make(map[int]bool, len(nodes))
	for _, i := range nodes {
		keep[i] = true
	}

	out := NewGraph()
	for _, i := range nodes {
		out.AddNode(g.ids[i], g.coords[i])
	}
	for _, i := range nodes {
		for _, a := range g.adj[i] {
			if keep[a.to] {
				// Both endpoints were added above.
				_ = out.AddEdge(g.ids[i], g.ids[a.to], a.meters)
			}
		}
	}
	return out
}
