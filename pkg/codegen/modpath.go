// SPDX-License-Identifier: Apache-2.0

// Package codegen renders a migrations.Artifact into a self-contained Go
// source file.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModulePath reads go.mod under root and returns its module path, e.g.
// "github.com/acme/myapp", needed to write the generated file's
// "<module>/pkg/migrations" import.
func ModulePath(root string) (string, error) {
	path := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading go.mod: %w", err)
	}
	mf, err := modfile.Parse(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("parsing go.mod: %w", err)
	}
	if mf.Module == nil {
		return "", fmt.Errorf("go.mod at %s declares no module", path)
	}
	return mf.Module.Mod.Path, nil
}
