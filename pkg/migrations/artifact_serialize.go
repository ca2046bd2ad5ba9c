// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// Serialize renders the artifact as the composite literal embedded in its
// generated source file; ParseArtifactSource recovers the same struct from
// that file's text without compiling it.
func (a *Artifact) Serialize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "&migrations.Artifact{\n\tName: %s,\n\tApp: %s,\n", quote(a.Name), quote(a.App))

	b.WriteString("\tDependencies: []migrations.Dependency{\n")
	for _, d := range a.Dependencies {
		fmt.Fprintf(&b, "\t\t{App: %s, Name: %s},\n", quote(d.App), quote(d.Name))
	}
	b.WriteString("\t},\n")

	b.WriteString("\tOperations: []migrations.Operation{\n")
	for _, op := range a.Operations {
		b.WriteString(indentLines(op.Serialize(), "\t\t"))
		b.WriteString(",\n")
	}
	b.WriteString("\t},\n}")
	return b.String()
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// ParseArtifactSource recovers an *Artifact from a generated migration
// file's source, locating the first `migrations.Artifact{...}` composite
// literal in the file regardless of what variable or wrapper struct field
// holds it. This is the Manager's discovery path: scanning migrations/<app>
// never requires `go build`ing the discovered package.
func ParseArtifactSource(src []byte) (*Artifact, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, 0)
	if err != nil {
		return nil, fmt.Errorf("parsing migration source: %w", err)
	}

	var found *ast.CompositeLit
	ast.Inspect(file, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		cl, ok := n.(*ast.CompositeLit)
		if !ok {
			return true
		}
		if artifactLitTypeName(cl.Type) == "Artifact" {
			found = cl
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("no migrations.Artifact composite literal found in source")
	}
	return artifactFromCompositeLit(found)
}

func artifactLitTypeName(t ast.Expr) string {
	switch x := t.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.SelectorExpr:
		return x.Sel.Name
	default:
		return ""
	}
}

func artifactFromCompositeLit(cl *ast.CompositeLit) (*Artifact, error) {
	kv := make(map[string]ast.Expr, len(cl.Elts))
	for _, elt := range cl.Elts {
		pair, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		kv[pair.Key.(*ast.Ident).Name] = pair.Value
	}

	a := &Artifact{}
	var err error
	if a.Name, err = strField(kv, "Name"); err != nil {
		return nil, err
	}
	if a.App, err = strField(kv, "App"); err != nil {
		return nil, err
	}
	if a.Dependencies, err = parseDependencyList(kv["Dependencies"]); err != nil {
		return nil, err
	}
	if a.Operations, err = parseOperationList(kv["Operations"]); err != nil {
		return nil, err
	}
	return a, nil
}

func parseDependencyList(expr ast.Expr) ([]Dependency, error) {
	if expr == nil {
		return nil, nil
	}
	cl, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected slice literal for Dependencies, got %T", expr)
	}
	deps := make([]Dependency, 0, len(cl.Elts))
	for _, elt := range cl.Elts {
		dcl, ok := elt.(*ast.CompositeLit)
		if !ok {
			return nil, fmt.Errorf("expected Dependency literal, got %T", elt)
		}
		var d Dependency
		for _, e := range dcl.Elts {
			pair, ok := e.(*ast.KeyValueExpr)
			if !ok {
				continue
			}
			v, err := stringLit(pair.Value)
			if err != nil {
				return nil, err
			}
			switch pair.Key.(*ast.Ident).Name {
			case "App":
				d.App = v
			case "Name":
				d.Name = v
			}
		}
		deps = append(deps, d)
	}
	return deps, nil
}

func parseOperationList(expr ast.Expr) ([]Operation, error) {
	if expr == nil {
		return nil, nil
	}
	cl, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected slice literal for Operations, got %T", expr)
	}
	ops := make([]Operation, 0, len(cl.Elts))
	for _, elt := range cl.Elts {
		op, err := parseOperationExpr(elt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
