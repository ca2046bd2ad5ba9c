// SPDX-License-Identifier: Apache-2.0

// Package registry implements the model-registry surface the differ
// consumes: enumerate apps, then models with their field descriptors and
// meta (indexes, table name) per app. The core never talks to the ORM
// directly; StaticRegistry stands in for it, loading the same shape from a
// YAML document.
package registry

import (
	"context"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// Registry is the narrow model-metadata surface the differ and `make`
// command consume to obtain the target schema.
type Registry interface {
	// Apps lists every app the registry knows about.
	Apps(ctx context.Context) ([]string, error)
	// Models returns the target-schema model entries declared for app.
	Models(ctx context.Context, app string) (map[string]*state.ModelEntry, error)
}

// TargetUniverse builds a full state.Universe from every app a Registry
// declares, the shape the differ's target_schema argument expects.
func TargetUniverse(ctx context.Context, reg Registry) (state.Universe, error) {
	apps, err := reg.Apps(ctx)
	if err != nil {
		return nil, err
	}
	universe := state.NewUniverse()
	for _, app := range apps {
		models, err := reg.Models(ctx, app)
		if err != nil {
			return nil, err
		}
		for name, entry := range models {
			universe.SetModel(app+"."+name, entry)
		}
	}
	return universe, nil
}
