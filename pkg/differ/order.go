// SPDX-License-Identifier: Apache-2.0

package differ

import "sort"

// topoSort runs Kahn's algorithm over nodes with prerequisite edges given by
// adj[prereq] = [dependents...], breaking ties alphabetically at every step
// so the result is stable. If a cycle remains, order omits the cyclic nodes
// and they are returned separately.
func topoSort(nodes []string, adj map[string][]string, indeg map[string]int) (order, cyclic []string) {
	ready := make([]string, 0)
	remaining := make(map[string]int, len(indeg))
	for _, n := range nodes {
		remaining[n] = indeg[n]
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	for len(ready) > 0 {
		sort.Strings(ready)
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)

		neighbors := append([]string(nil), adj[node]...)
		sort.Strings(neighbors)
		for _, next := range neighbors {
			remaining[next]--
			if remaining[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) < len(nodes) {
		done := make(map[string]bool, len(order))
		for _, n := range order {
			done[n] = true
		}
		for _, n := range nodes {
			if !done[n] {
				cyclic = append(cyclic, n)
			}
		}
		sort.Strings(cyclic)
	}
	return order, cyclic
}
