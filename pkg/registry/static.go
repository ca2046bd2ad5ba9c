// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/oapi-codegen/nullable"
	"sigs.k8s.io/yaml"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// StaticRegistry is a YAML-backed Registry, standing in for a live ORM model
// registry: it loads app/model/field declarations straight from a document
// shaped like the registryDoc below, rather than introspecting Go structs
// via reflection.
type StaticRegistry struct {
	doc registryDoc
}

type registryDoc struct {
	Apps map[string]appDoc `json:"apps"`
}

type appDoc struct {
	Models map[string]modelDoc `json:"models"`
}

type modelDoc struct {
	Table   string          `json:"table"`
	Fields  []fieldEntryDoc `json:"fields"`
	Indexes []indexDoc      `json:"indexes"`
}

// fieldEntryDoc names one field within a model's Fields list. Fields is a
// list rather than a map so the document's declaration order is preserved
// into state.ModelEntry.Order: YAML/JSON object key order is not guaranteed
// to survive decoding, but list order always does.
type fieldEntryDoc struct {
	Name string `json:"name"`
	fieldDoc
}

type fieldDoc struct {
	Kind                 string      `json:"kind"`
	MaxLen               int         `json:"max_len"`
	Digits               int         `json:"digits"`
	Places               int         `json:"places"`
	Nullable             bool        `json:"nullable"`
	Unique               bool        `json:"unique"`
	PrimaryKey           bool        `json:"primary_key"`
	EnumValues           []string    `json:"enum_values"`
	SourceColumnOverride string      `json:"source_column_override"`
	Default              *defaultDoc `json:"default"`
	ForeignKey           *fkDoc      `json:"foreign_key"`
	ManyToMany           *m2mDoc     `json:"many_to_many"`
}

type defaultDoc struct {
	Kind    string  `json:"kind"` // "literal", "auto_now", "auto_now_add", "callable"
	Literal *string `json:"literal"`
}

type fkDoc struct {
	TargetModel string `json:"target_model"`
	ToColumn    string `json:"to_column"`
	OnDelete    string `json:"on_delete"`
}

type m2mDoc struct {
	TargetModel string `json:"target_model"`
	Through     string `json:"through"`
}

type indexDoc struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique"`
}

// LoadStaticRegistry parses a YAML document shaped per registryDoc.
func LoadStaticRegistry(data []byte) (*StaticRegistry, error) {
	var doc registryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing model registry document: %w", err)
	}
	return &StaticRegistry{doc: doc}, nil
}

func (r *StaticRegistry) Apps(ctx context.Context) ([]string, error) {
	apps := make([]string, 0, len(r.doc.Apps))
	for app := range r.doc.Apps {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps, nil
}

func (r *StaticRegistry) Models(ctx context.Context, app string) (map[string]*state.ModelEntry, error) {
	appDoc, ok := r.doc.Apps[app]
	if !ok {
		return nil, fmt.Errorf("unknown app %q", app)
	}
	models := make(map[string]*state.ModelEntry, len(appDoc.Models))
	for name, m := range appDoc.Models {
		entry := state.NewModelEntry(m.Table)
		for _, fe := range m.Fields {
			f, err := fe.toField()
			if err != nil {
				return nil, fmt.Errorf("app %q model %q field %q: %w", app, name, fe.Name, err)
			}
			entry.SetField(fe.Name, f)
		}
		for _, ix := range m.Indexes {
			entry.Indexes = append(entry.Indexes, state.Index{Name: ix.Name, Fields: ix.Fields, Unique: ix.Unique})
		}
		models[name] = entry
	}
	return models, nil
}

func (fd fieldDoc) toField() (*state.Field, error) {
	f := &state.Field{
		Kind:                 state.Kind(fd.Kind),
		MaxLen:               fd.MaxLen,
		Digits:               fd.Digits,
		Places:               fd.Places,
		Nullable:             fd.Nullable,
		Unique:               fd.Unique,
		PrimaryKey:           fd.PrimaryKey,
		EnumValues:           fd.EnumValues,
		SourceColumnOverride: fd.SourceColumnOverride,
	}
	if fd.ForeignKey != nil {
		f.ForeignKey = &state.ForeignKeyRef{
			TargetModel: fd.ForeignKey.TargetModel,
			ToColumn:    fd.ForeignKey.ToColumn,
			OnDelete:    state.OnDelete(fd.ForeignKey.OnDelete),
		}
	}
	if fd.ManyToMany != nil {
		f.ManyToMany = &state.ManyToManyRef{
			TargetModel: fd.ManyToMany.TargetModel,
			Through:     fd.ManyToMany.Through,
		}
	}
	if fd.Default != nil {
		switch fd.Default.Kind {
		case "auto_now":
			f.Default = state.Default{Kind: state.DefaultAutoNow}
		case "auto_now_add":
			f.Default = state.Default{Kind: state.DefaultAutoNowAdd}
		case "callable":
			f.Default = state.Default{Kind: state.DefaultCallableNone}
		case "literal":
			if fd.Default.Literal == nil {
				f.Default = state.Default{Kind: state.DefaultLiteral, Literal: nullable.NewNullNullable[string]()}
			} else {
				f.Default = state.Default{Kind: state.DefaultLiteral, Literal: nullable.NewNullableWithValue(*fd.Default.Literal)}
			}
		default:
			return nil, fmt.Errorf("unknown default kind %q", fd.Default.Kind)
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
