// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/relmigrate/relmigrate/pkg/codegen"
	"github.com/relmigrate/relmigrate/pkg/differ"
	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

// timestampLayout matches the migrations/<app>/<YYYYMMDDhhmmss>_<slug>.go
// on-disk naming rule.
const timestampLayout = "20060102150405"

// CreateOptions configures a single CreateMigration call.
type CreateOptions struct {
	// Name overrides the generated slug. Ignored if empty.
	Name string
	// Empty skips the differ entirely, producing a migration with no
	// operations for the caller to hand-edit.
	Empty bool
}

// CreateMigration runs the Differ against target (the registry's declared
// schema for app) and the schema implied by every migration discovered so
// far (not only applied ones, mirroring how a team's migration history is
// diffed against regardless of what has landed on any one database),
// writes a generated migration file under m.Root/<app>/, and returns the
// artifact it created. Returns (nil, nil) when there is nothing to record
// and opts.Empty is false.
func (m *Manager) CreateMigration(ctx context.Context, app string, target state.Universe, opts CreateOptions, summary string) (*Discovered, error) {
	all, err := m.Discover("")
	if err != nil {
		return nil, err
	}

	priorState, err := replayState(all)
	if err != nil {
		return nil, err
	}

	var ops []migrations.Operation
	var appDeps map[string][]string
	if !opts.Empty {
		ops, appDeps, err = differ.Diff(priorState, target)
		if err != nil {
			return nil, err
		}
		if len(ops) == 0 {
			return nil, nil
		}
	}

	slug := opts.Name
	if slug == "" {
		if opts.Empty {
			slug = "auto"
		} else {
			slug = generateName(ops)
		}
	}
	name := time.Now().UTC().Format(timestampLayout) + "_" + slug

	deps := dependencyEdges(all, app, appDeps)

	artifact := &migrations.Artifact{
		Name:         name,
		App:          app,
		Dependencies: deps,
		Operations:   ops,
	}

	modulePath, err := codegen.ModulePath(m.RepoRoot)
	if err != nil {
		return nil, err
	}
	src, err := codegen.Render(modulePath, artifact, summary)
	if err != nil {
		return nil, err
	}

	appDir := filepath.Join(m.Root, app)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating app directory %q: %w", appDir, err)
	}
	path := filepath.Join(appDir, name+".go")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return nil, fmt.Errorf("writing migration file %q: %w", path, err)
	}

	return &Discovered{App: app, Name: name, Path: path, Artifact: artifact}, nil
}

// dependencyEdges picks the latest artifact for app itself (continuing its
// chain) plus the latest artifact for every app appDeps[app] names (a
// cross-app model reference introduced by this diff). all must already be
// in topological order (m.Discover's return shape), so the last occurrence
// per app is that app's current chain head.
func dependencyEdges(all []*Discovered, app string, appDeps map[string][]string) []migrations.Dependency {
	latest := make(map[string]*Discovered)
	for _, d := range all {
		latest[d.App] = d
	}

	var deps []migrations.Dependency
	if d, ok := latest[app]; ok {
		deps = append(deps, migrations.Dependency{App: d.App, Name: d.Name})
	}
	for _, depApp := range appDeps[app] {
		if d, ok := latest[depApp]; ok {
			deps = append(deps, migrations.Dependency{App: d.App, Name: d.Name})
		}
	}
	return deps
}
