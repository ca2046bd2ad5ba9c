// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// Parse reconstructs an Operation from the text produced by its Serialize
// method: parsing the literal back reconstructs an equal Operation.
func Parse(src string) (Operation, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parsing operation literal: %w", err)
	}
	return parseOperationExpr(expr)
}

// parseOperationExpr is Parse's body, factored out so ParseArtifactSource
// can dispatch on an *ast.Expr it already has in hand from a larger file
// parse, without round-tripping back through source text.
func parseOperationExpr(expr ast.Expr) (Operation, error) {
	u, ok := expr.(*ast.UnaryExpr)
	if !ok || u.Op != token.AND {
		return nil, fmt.Errorf("expected address-of composite literal, got %T", expr)
	}
	cl, ok := u.X.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected composite literal, got %T", u.X)
	}
	sel, ok := cl.Type.(*ast.SelectorExpr)
	if !ok {
		return nil, fmt.Errorf("expected qualified operation type, got %T", cl.Type)
	}

	kv := make(map[string]ast.Expr, len(cl.Elts))
	for _, elt := range cl.Elts {
		pair, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		kv[pair.Key.(*ast.Ident).Name] = pair.Value
	}

	switch sel.Sel.Name {
	case "OpCreateModel":
		return parseCreateModel(kv)
	case "OpDropModel":
		return parseDropModel(kv)
	case "OpRenameModel":
		return parseRenameModel(kv)
	case "OpAddField":
		return parseAddField(kv)
	case "OpDropField":
		return parseDropField(kv)
	case "OpAlterField":
		return parseAlterField(kv)
	case "OpRenameField":
		return parseRenameField(kv)
	case "OpAddIndex":
		return parseAddIndex(kv)
	case "OpDropIndex":
		return parseDropIndex(kv)
	case "OpRunSQL":
		return parseRunSQL(kv)
	default:
		return nil, fmt.Errorf("unknown operation type %q", sel.Sel.Name)
	}
}

func strField(kv map[string]ast.Expr, key string) (string, error) {
	expr, ok := kv[key]
	if !ok {
		return "", nil
	}
	return stringLit(expr)
}

func parseCreateModel(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	table, err := strField(kv, "Table")
	if err != nil {
		return nil, err
	}
	fields, err := parseFieldMap(kv["Fields"])
	if err != nil {
		return nil, err
	}
	order, err := stringSliceLit(kv["Order"])
	if err != nil {
		return nil, err
	}
	return &OpCreateModel{Model: model, Table: table, Fields: fields, Order: order}, nil
}

func parseDropModel(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	return &OpDropModel{Model: model}, nil
}

func parseRenameModel(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	newTable, err := strField(kv, "NewTableName")
	if err != nil {
		return nil, err
	}
	newModel, err := strField(kv, "NewModelName")
	if err != nil {
		return nil, err
	}
	return &OpRenameModel{Model: model, NewTableName: newTable, NewModelName: newModel}, nil
}

func parseAddField(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	fieldName, err := strField(kv, "FieldName")
	if err != nil {
		return nil, err
	}
	f, err := fieldFromExpr(kv["Field"])
	if err != nil {
		return nil, err
	}
	return &OpAddField{Model: model, FieldName: fieldName, Field: f}, nil
}

func parseDropField(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	fieldName, err := strField(kv, "FieldName")
	if err != nil {
		return nil, err
	}
	return &OpDropField{Model: model, FieldName: fieldName}, nil
}

func parseAlterField(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	fieldName, err := strField(kv, "FieldName")
	if err != nil {
		return nil, err
	}
	f, err := fieldFromExpr(kv["Field"])
	if err != nil {
		return nil, err
	}
	return &OpAlterField{Model: model, FieldName: fieldName, Field: f}, nil
}

func parseRenameField(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	fieldName, err := strField(kv, "FieldName")
	if err != nil {
		return nil, err
	}
	newFieldName, err := strField(kv, "NewFieldName")
	if err != nil {
		return nil, err
	}
	newColumnName, err := strField(kv, "NewColumnName")
	if err != nil {
		return nil, err
	}
	return &OpRenameField{Model: model, FieldName: fieldName, NewFieldName: newFieldName, NewColumnName: newColumnName}, nil
}

func parseAddIndex(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	ix, err := parseIndexExpr(kv["Index"])
	if err != nil {
		return nil, err
	}
	return &OpAddIndex{Model: model, Index: ix}, nil
}

func parseDropIndex(kv map[string]ast.Expr) (Operation, error) {
	model, err := strField(kv, "Model")
	if err != nil {
		return nil, err
	}
	indexName, err := strField(kv, "IndexName")
	if err != nil {
		return nil, err
	}
	return &OpDropIndex{Model: model, IndexName: indexName}, nil
}

func parseRunSQL(kv map[string]ast.Expr) (Operation, error) {
	fwd, err := strField(kv, "ForwardText")
	if err != nil {
		return nil, err
	}
	bwd, err := strField(kv, "BackwardText")
	if err != nil {
		return nil, err
	}
	return &OpRunSQL{ForwardText: fwd, BackwardText: bwd}, nil
}

func parseFieldMap(expr ast.Expr) (map[string]*state.Field, error) {
	fields := make(map[string]*state.Field)
	if expr == nil {
		return fields, nil
	}
	cl, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected map literal for Fields, got %T", expr)
	}
	for _, elt := range cl.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		name, err := stringLit(kv.Key)
		if err != nil {
			return nil, err
		}
		f, err := fieldFromExpr(kv.Value)
		if err != nil {
			return nil, err
		}
		fields[name] = f
	}
	return fields, nil
}

func parseIndexExpr(expr ast.Expr) (state.Index, error) {
	cl, err := compositeLitOf(expr, "Index")
	if err != nil {
		return state.Index{}, err
	}
	ix := state.Index{}
	for _, elt := range cl.Elts {
		kv := elt.(*ast.KeyValueExpr)
		switch kv.Key.(*ast.Ident).Name {
		case "Name":
			ix.Name, err = stringLit(kv.Value)
		case "Fields":
			ix.Fields, err = stringSliceLit(kv.Value)
		case "Unique":
			ix.Unique, err = boolLit(kv.Value)
		}
		if err != nil {
			return state.Index{}, err
		}
	}
	return ix, nil
}
