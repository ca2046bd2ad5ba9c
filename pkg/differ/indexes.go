// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"sort"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// indexDiff is the per-common-model index classification: identity is by
// resolved name; a unique-flag change is a drop followed by an add.
type indexDiff struct {
	added   []state.Index
	removed []string
	changed []state.Index // dropped by name then re-added with new Unique
}

func diffModelIndexes(prior, target *state.ModelEntry) indexDiff {
	var d indexDiff

	priorByName := make(map[string]state.Index, len(prior.Indexes))
	for _, ix := range prior.Indexes {
		priorByName[ix.ResolvedName(prior.Table)] = ix
	}
	targetByName := make(map[string]state.Index, len(target.Indexes))
	for _, ix := range target.Indexes {
		targetByName[ix.ResolvedName(target.Table)] = ix
	}

	var targetNames []string
	for name := range targetByName {
		targetNames = append(targetNames, name)
	}
	sort.Strings(targetNames)
	for _, name := range targetNames {
		tix := targetByName[name]
		pix, existed := priorByName[name]
		if !existed {
			d.added = append(d.added, tix)
			continue
		}
		if pix.Unique != tix.Unique || !equalFieldLists(pix.Fields, tix.Fields) {
			d.changed = append(d.changed, tix)
		}
	}

	var priorNames []string
	for name := range priorByName {
		priorNames = append(priorNames, name)
	}
	sort.Strings(priorNames)
	for _, name := range priorNames {
		if _, stillThere := targetByName[name]; !stillThere {
			d.removed = append(d.removed, name)
		}
	}
	return d
}

func equalFieldLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// declarationOrderIndexes returns a model's indexes in declaration order
// (the order ModelEntry.Indexes already holds them). Declaration order is
// itself the tie-break: two indexes only ever share a position when the
// registry loaded them from an ordered list.
func declarationOrderIndexes(entry *state.ModelEntry) []state.Index {
	return append([]state.Index(nil), entry.Indexes...)
}
