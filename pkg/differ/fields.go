// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"sort"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// fieldDiff is the per-common-model field classification: which fields were
// added, removed, or changed shape while keeping the same name.
type fieldDiff struct {
	added   []string // alphabetical
	removed []string // alphabetical
	altered []string // alphabetical; structurally different, same name
}

func diffModelFields(prior, target *state.ModelEntry) fieldDiff {
	var d fieldDiff
	for _, name := range target.FieldNames() {
		pf, existed := prior.Fields[name]
		if !existed {
			d.added = append(d.added, name)
			continue
		}
		if !pf.Equal(target.Fields[name]) {
			d.altered = append(d.altered, name)
		}
	}
	for _, name := range prior.FieldNames() {
		if _, stillThere := target.Fields[name]; !stillThere {
			d.removed = append(d.removed, name)
		}
	}
	sort.Strings(d.added)
	sort.Strings(d.removed)
	sort.Strings(d.altered)
	return d
}
