// SPDX-License-Identifier: Apache-2.0

// Package manager implements the Migration Manager: discovery, dependency
// ordering, the applied-migration ledger, apply and revert, and migration
// creation.
package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/relmigrate/relmigrate/pkg/migrations"
)

// Discovered pairs a parsed artifact with the file it was read from, keyed
// by app and file-stem identity: an artifact's identity is its file-stem
// name.
type Discovered struct {
	App      string
	Name     string
	Path     string
	Artifact *migrations.Artifact
}

// key identifies a discovered artifact across apps for dependency-graph and
// ledger lookups.
func (d *Discovered) key() string { return d.App + "/" + d.Name }

// Discover scans root/<app>/*.go for every app subdirectory, skipping
// hidden or underscore-prefixed file stems and any file that does not
// contain a migrations.Artifact composite literal (the one package-marker
// file an app directory is allowed to carry). It does not require compiling
// any discovered file.
func Discover(root string) ([]*Discovered, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading migrations root %q: %w", root, err)
	}

	var found []*Discovered
	for _, appEntry := range entries {
		if !appEntry.IsDir() {
			continue
		}
		app := appEntry.Name()
		appDir := filepath.Join(root, app)
		files, err := os.ReadDir(appDir)
		if err != nil {
			return nil, fmt.Errorf("reading app directory %q: %w", appDir, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			stem, ok := migrationStem(f.Name())
			if !ok {
				continue
			}
			path := filepath.Join(appDir, f.Name())
			src, err := os.ReadFile(path)
			if err != nil {
				return nil, DiscoveryError{Path: path, Reason: err.Error()}
			}
			artifact, err := migrations.ParseArtifactSource(src)
			if err != nil {
				// A file with no Artifact composite literal is the app
				// directory's package marker file, not a migration.
				continue
			}
			found = append(found, &Discovered{App: app, Name: stem, Path: path, Artifact: artifact})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].App != found[j].App {
			return found[i].App < found[j].App
		}
		return found[i].Name < found[j].Name
	})
	return found, nil
}

// migrationStem returns the file stem for a candidate migration file,
// rejecting non-.go files and hidden/underscore-prefixed names.
func migrationStem(filename string) (string, bool) {
	if !strings.HasSuffix(filename, ".go") {
		return "", false
	}
	stem := strings.TrimSuffix(filename, ".go")
	if stem == "" || strings.HasPrefix(stem, ".") || strings.HasPrefix(stem, "_") {
		return "", false
	}
	return stem, true
}

// byKey indexes discovered artifacts by their App/Name key.
func byKey(discovered []*Discovered) map[string]*Discovered {
	m := make(map[string]*Discovered, len(discovered))
	for _, d := range discovered {
		m[d.key()] = d
	}
	return m
}

// byApp groups discovered artifacts by app.
func byApp(discovered []*Discovered) map[string][]*Discovered {
	m := make(map[string][]*Discovered)
	for _, d := range discovered {
		m[d.App] = append(m[d.App], d)
	}
	return m
}
