// SPDX-License-Identifier: Apache-2.0

package manager

import "sort"

// topoOrder computes the apply order across every discovered artifact,
// using the union graph of per-app dependency chains, with ties broken
// alphabetically by (app, name). It validates that every app has exactly
// one root migration and that every dependency resolves before sorting.
func topoOrder(discovered []*Discovered) ([]*Discovered, error) {
	index := byKey(discovered)

	for app, artifacts := range byApp(discovered) {
		roots := 0
		for _, a := range artifacts {
			if len(a.Artifact.Dependencies) == 0 {
				roots++
			}
		}
		switch {
		case roots == 0:
			return nil, DependencyError{Reason: "no root migration", Apps: []string{app}}
		case roots > 1:
			return nil, DependencyError{Reason: "multiple root migrations", Apps: []string{app}}
		}
	}

	adj := make(map[string][]string, len(discovered))
	indeg := make(map[string]int, len(discovered))
	for _, d := range discovered {
		indeg[d.key()] = 0
	}
	for _, d := range discovered {
		for _, dep := range d.Artifact.Dependencies {
			depKey := dep.App + "/" + dep.Name
			if _, ok := index[depKey]; !ok {
				return nil, DependencyError{Reason: "unknown dependency", Apps: []string{depKey}}
			}
			adj[depKey] = append(adj[depKey], d.key())
			indeg[d.key()]++
		}
	}

	ready := make([]string, 0)
	remaining := make(map[string]int, len(indeg))
	for k, v := range indeg {
		remaining[k] = v
		if v == 0 {
			ready = append(ready, k)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return lessArtifactKey(index, ready[i], ready[j]) })

	var orderedKeys []string
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return lessArtifactKey(index, ready[i], ready[j]) })
		k := ready[0]
		ready = ready[1:]
		orderedKeys = append(orderedKeys, k)

		neighbors := append([]string(nil), adj[k]...)
		sort.Slice(neighbors, func(i, j int) bool { return lessArtifactKey(index, neighbors[i], neighbors[j]) })
		for _, next := range neighbors {
			remaining[next]--
			if remaining[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(orderedKeys) < len(discovered) {
		return nil, DependencyError{Reason: "circular dependency"}
	}

	order := make([]*Discovered, len(orderedKeys))
	for i, k := range orderedKeys {
		order[i] = index[k]
	}
	return order, nil
}

// lessArtifactKey breaks topo-sort ties alphabetically by (app, name).
func lessArtifactKey(index map[string]*Discovered, a, b string) bool {
	da, db := index[a], index[b]
	if da.App != db.App {
		return da.App < db.App
	}
	return da.Name < db.Name
}
