// SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/relmigrate/relmigrate/internal/slugify"
	"github.com/relmigrate/relmigrate/pkg/migrations"
)

// Render renders artifact into a complete, self-contained Go source file:
// header comment, an explicit import block built from every operation's
// RequiredImports(), a `<Name>Migration` struct wrapping migrations.Artifact,
// and an init() self-registering it. summary is a short human-readable
// description of the diff, used in the header comment.
func Render(modulePath string, artifact *migrations.Artifact, summary string) ([]byte, error) {
	className := migrationClassName(artifact.Name)
	pkgName := packageName(artifact.App)

	importList := collectImports(modulePath, artifact)

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by relmigrate. DO NOT EDIT.\n//\n// %s\npackage %s\n\n", summary, pkgName)

	b.WriteString("import (\n")
	for _, imp := range importList {
		fmt.Fprintf(&b, "\t%q\n", imp)
	}
	b.WriteString(")\n\n")

	fmt.Fprintf(&b, "// %s is the generated migration artifact for %q.\ntype %s struct {\n\tmigrations.Artifact\n}\n\n", className, artifact.Name, className)

	literal := strings.TrimPrefix(artifact.Serialize(), "&")
	fmt.Fprintf(&b, "var migrationArtifact = %s\n\n", literal)

	b.WriteString("func init() {\n\tmigrations.Register(&migrationArtifact)\n}\n")

	return formatImports(b.String())
}

// migrationClassName derives "<Pascal(slug)>Migration" from a fully
// qualified "<timestamp>_<slug>" artifact name.
func migrationClassName(name string) string {
	parts := strings.SplitN(name, "_", 2)
	slug := name
	if len(parts) == 2 {
		slug = parts[1]
	}
	return slugify.Pascal(slug) + "Migration"
}

func packageName(app string) string {
	cleaned := slugify.Snake(app)
	if cleaned == "" {
		return "migrations"
	}
	return cleaned
}

// collectImports computes the minimal, exhaustive import block: the fixed
// pkg/migrations import this file always needs, plus every operation's
// RequiredImports(), de-duplicated and sorted; module-relative paths are
// rewritten against modulePath so a renamed module still generates correct
// imports.
func collectImports(modulePath string, artifact *migrations.Artifact) []string {
	const ownModulePath = "github.com/relmigrate/relmigrate"

	set := map[string]struct{}{ownModulePath + "/pkg/migrations": {}}
	for _, op := range artifact.Operations {
		for _, imp := range op.RequiredImports() {
			set[imp] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for imp := range set {
		if modulePath != ownModulePath && strings.HasPrefix(imp, ownModulePath) {
			imp = modulePath + strings.TrimPrefix(imp, ownModulePath)
		}
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

// formatImports normalizes the generated import block (grouping, removing
// unused/adding missing entries goimports would catch) with
// golang.org/x/tools/imports.
func formatImports(src string) ([]byte, error) {
	out, err := imports.Process("generated_migration.go", []byte(src), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting generated migration: %w", err)
	}
	return out, nil
}
