// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/oapi-codegen/nullable"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// renderField renders a field descriptor as a Go composite literal that
// round-trips through parseFieldExpr: parsing the text back reconstructs an
// equal *state.Field.
func renderField(f *state.Field) string {
	var b strings.Builder
	b.WriteString("&state.Field{Kind: ")
	b.WriteString(kindIdent(f.Kind))
	if f.MaxLen != 0 {
		fmt.Fprintf(&b, ", MaxLen: %d", f.MaxLen)
	}
	if f.Digits != 0 {
		fmt.Fprintf(&b, ", Digits: %d", f.Digits)
	}
	if f.Places != 0 {
		fmt.Fprintf(&b, ", Places: %d", f.Places)
	}
	if f.ForeignKey != nil {
		fmt.Fprintf(&b, ", ForeignKey: &state.ForeignKeyRef{TargetModel: %s, ToColumn: %s, OnDelete: %s}",
			quote(f.ForeignKey.TargetModel), quote(f.ForeignKey.ToColumn), onDeleteIdent(f.ForeignKey.OnDelete))
	}
	if f.ManyToMany != nil {
		fmt.Fprintf(&b, ", ManyToMany: &state.ManyToManyRef{TargetModel: %s, Through: %s}",
			quote(f.ManyToMany.TargetModel), quote(f.ManyToMany.Through))
	}
	if len(f.EnumValues) > 0 {
		b.WriteString(", EnumValues: []string{")
		for i, v := range f.EnumValues {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(v))
		}
		b.WriteString("}")
	}
	if f.Nullable {
		b.WriteString(", Nullable: true")
	}
	if f.Unique {
		b.WriteString(", Unique: true")
	}
	if f.PrimaryKey {
		b.WriteString(", PrimaryKey: true")
	}
	if f.Default.IsSet() {
		fmt.Fprintf(&b, ", Default: %s", renderDefault(f.Default))
	}
	if f.SourceColumnOverride != "" {
		fmt.Fprintf(&b, ", SourceColumnOverride: %s", quote(f.SourceColumnOverride))
	}
	b.WriteString("}")
	return b.String()
}

func renderDefault(d state.Default) string {
	switch d.Kind {
	case state.DefaultAutoNow:
		return "state.Default{Kind: state.DefaultAutoNow}"
	case state.DefaultAutoNowAdd:
		return "state.Default{Kind: state.DefaultAutoNowAdd}"
	case state.DefaultCallableNone:
		return "state.Default{Kind: state.DefaultCallableNone}"
	case state.DefaultLiteral:
		v, ok := d.Literal.Get()
		if !ok {
			return "state.Default{Kind: state.DefaultLiteral, Literal: nullable.NewNullNullable[string]()}"
		}
		return fmt.Sprintf("state.Default{Kind: state.DefaultLiteral, Literal: nullable.NewNullableWithValue(%s)}", quote(v))
	default:
		return "state.Default{}"
	}
}

func quote(s string) string {
	return strconv.Quote(s)
}

var kindIdents = map[state.Kind]string{
	state.KindInt:        "KindInt",
	state.KindBigInt:     "KindBigInt",
	state.KindChar:       "KindChar",
	state.KindText:       "KindText",
	state.KindBool:       "KindBool",
	state.KindFloat:      "KindFloat",
	state.KindDecimal:    "KindDecimal",
	state.KindDatetime:   "KindDatetime",
	state.KindDate:       "KindDate",
	state.KindJSON:       "KindJSON",
	state.KindIntEnum:    "KindIntEnum",
	state.KindCharEnum:   "KindCharEnum",
	state.KindForeignKey: "KindForeignKey",
	state.KindManyToMany: "KindManyToMany",
}

var identKinds = reverseKind(kindIdents)

func reverseKind(m map[state.Kind]string) map[string]state.Kind {
	r := make(map[string]state.Kind, len(m))
	for k, v := range m {
		r[v] = k
	}
	return r
}

var onDeleteIdents = map[state.OnDelete]string{
	state.OnDeleteCascade:  "OnDeleteCascade",
	state.OnDeleteSetNull:  "OnDeleteSetNull",
	state.OnDeleteRestrict: "OnDeleteRestrict",
	state.OnDeleteNoAction: "OnDeleteNoAction",
}

var identOnDeletes = reverseOnDelete(onDeleteIdents)

func reverseOnDelete(m map[state.OnDelete]string) map[string]state.OnDelete {
	r := make(map[string]state.OnDelete, len(m))
	for k, v := range m {
		r[v] = k
	}
	return r
}

func kindIdent(k state.Kind) string {
	if id, ok := kindIdents[k]; ok {
		return "state." + id
	}
	return "state.KindText"
}

func onDeleteIdent(o state.OnDelete) string {
	if id, ok := onDeleteIdents[o]; ok {
		return "state." + id
	}
	return "state.OnDeleteNoAction"
}

// parseFieldExpr parses the literal text produced by renderField back into a
// *state.Field.
func parseFieldExpr(src string) (*state.Field, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parsing field literal %q: %w", src, err)
	}
	return fieldFromExpr(expr)
}

func fieldFromExpr(expr ast.Expr) (*state.Field, error) {
	cl, err := compositeLitOf(expr, "Field")
	if err != nil {
		return nil, err
	}
	f := &state.Field{}
	for _, elt := range cl.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key := kv.Key.(*ast.Ident).Name
		switch key {
		case "Kind":
			f.Kind = identKinds[selIdentName(kv.Value)]
		case "MaxLen":
			f.MaxLen, err = intLit(kv.Value)
		case "Digits":
			f.Digits, err = intLit(kv.Value)
		case "Places":
			f.Places, err = intLit(kv.Value)
		case "ForeignKey":
			f.ForeignKey, err = foreignKeyFromExpr(kv.Value)
		case "ManyToMany":
			f.ManyToMany, err = manyToManyFromExpr(kv.Value)
		case "EnumValues":
			f.EnumValues, err = stringSliceLit(kv.Value)
		case "Nullable":
			f.Nullable, err = boolLit(kv.Value)
		case "Unique":
			f.Unique, err = boolLit(kv.Value)
		case "PrimaryKey":
			f.PrimaryKey, err = boolLit(kv.Value)
		case "Default":
			f.Default, err = defaultFromExpr(kv.Value)
		case "SourceColumnOverride":
			f.SourceColumnOverride, err = stringLit(kv.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func foreignKeyFromExpr(expr ast.Expr) (*state.ForeignKeyRef, error) {
	cl, err := compositeLitOf(expr, "ForeignKeyRef")
	if err != nil {
		return nil, err
	}
	ref := &state.ForeignKeyRef{}
	for _, elt := range cl.Elts {
		kv := elt.(*ast.KeyValueExpr)
		switch kv.Key.(*ast.Ident).Name {
		case "TargetModel":
			ref.TargetModel, err = stringLit(kv.Value)
		case "ToColumn":
			ref.ToColumn, err = stringLit(kv.Value)
		case "OnDelete":
			ref.OnDelete = identOnDeletes[selIdentName(kv.Value)]
		}
		if err != nil {
			return nil, err
		}
	}
	return ref, nil
}

func manyToManyFromExpr(expr ast.Expr) (*state.ManyToManyRef, error) {
	cl, err := compositeLitOf(expr, "ManyToManyRef")
	if err != nil {
		return nil, err
	}
	ref := &state.ManyToManyRef{}
	for _, elt := range cl.Elts {
		kv := elt.(*ast.KeyValueExpr)
		switch kv.Key.(*ast.Ident).Name {
		case "TargetModel":
			ref.TargetModel, err = stringLit(kv.Value)
		case "Through":
			ref.Through, err = stringLit(kv.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	return ref, nil
}

func defaultFromExpr(expr ast.Expr) (state.Default, error) {
	cl, err := compositeLitOf(expr, "Default")
	if err != nil {
		return state.Default{}, err
	}
	d := state.Default{}
	for _, elt := range cl.Elts {
		kv := elt.(*ast.KeyValueExpr)
		switch kv.Key.(*ast.Ident).Name {
		case "Kind":
			d.Kind = state.DefaultKind(selIdentName(kv.Value))
			switch selIdentName(kv.Value) {
			case "DefaultAutoNow":
				d.Kind = state.DefaultAutoNow
			case "DefaultAutoNowAdd":
				d.Kind = state.DefaultAutoNowAdd
			case "DefaultCallableNone":
				d.Kind = state.DefaultCallableNone
			case "DefaultLiteral":
				d.Kind = state.DefaultLiteral
			}
		case "Literal":
			d.Literal, err = nullableFromExpr(kv.Value)
		}
		if err != nil {
			return state.Default{}, err
		}
	}
	return d, nil
}

// nullableFromExpr parses nullable.NewNullableWithValue("x") or
// nullable.NewNullNullable[string]().
func nullableFromExpr(expr ast.Expr) (nullable.Nullable[string], error) {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return nullable.Nullable[string]{}, fmt.Errorf("expected call expression for nullable literal, got %T", expr)
	}
	switch fn := call.Fun.(type) {
	case *ast.SelectorExpr:
		if fn.Sel.Name == "NewNullableWithValue" && len(call.Args) == 1 {
			v, err := stringLit(call.Args[0])
			if err != nil {
				return nullable.Nullable[string]{}, err
			}
			return nullable.NewNullableWithValue(v), nil
		}
	case *ast.IndexExpr:
		if sel, ok := fn.X.(*ast.SelectorExpr); ok && sel.Sel.Name == "NewNullNullable" {
			return nullable.NewNullNullable[string](), nil
		}
	}
	return nullable.Nullable[string]{}, fmt.Errorf("unrecognized nullable constructor expression")
}

func compositeLitOf(expr ast.Expr, wantType string) (*ast.CompositeLit, error) {
	if u, ok := expr.(*ast.UnaryExpr); ok && u.Op == token.AND {
		expr = u.X
	}
	cl, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected composite literal for %s, got %T", wantType, expr)
	}
	if sel, ok := cl.Type.(*ast.SelectorExpr); ok {
		if sel.Sel.Name != wantType {
			return nil, fmt.Errorf("expected %s composite literal, got %s", wantType, sel.Sel.Name)
		}
	}
	return cl, nil
}

func selIdentName(expr ast.Expr) string {
	if sel, ok := expr.(*ast.SelectorExpr); ok {
		return sel.Sel.Name
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func stringLit(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", fmt.Errorf("expected string literal, got %T", expr)
	}
	return strconv.Unquote(lit.Value)
}

func intLit(expr ast.Expr) (int, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, fmt.Errorf("expected int literal, got %T", expr)
	}
	v, err := strconv.Atoi(lit.Value)
	return v, err
}

func boolLit(expr ast.Expr) (bool, error) {
	id, ok := expr.(*ast.Ident)
	if !ok {
		return false, fmt.Errorf("expected bool literal, got %T", expr)
	}
	return id.Name == "true", nil
}

func stringSliceLit(expr ast.Expr) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	cl, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected slice literal, got %T", expr)
	}
	out := make([]string, 0, len(cl.Elts))
	for _, elt := range cl.Elts {
		v, err := stringLit(elt)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
