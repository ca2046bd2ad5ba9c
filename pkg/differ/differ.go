// SPDX-License-Identifier: Apache-2.0

// Package differ computes the ordered operation sequence that takes a prior
// State to a target model universe.
package differ

import (
	"sort"

	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

// diffCtx carries the mutable bookkeeping state threaded through one Diff
// call (the cross-app dependency edges accumulated as operations are
// emitted), kept out of the return value until the call completes.
type diffCtx struct {
	appDependencies map[string][]string
}

// Diff computes the ordered operation list taking prior to target, plus the
// cross-app dependency edges a newly created model reference induces: added
// models first (in dependency order, with cycle-breaking deferred fields),
// then field/index changes to models present in both, then removed models
// last (in reverse-dependency order).
func Diff(prior *state.State, target state.Universe) (ops []migrations.Operation, appDeps map[string][]string, err error) {
	priorUniverse := prior.Current()
	priorRefs := refSet(priorUniverse)
	targetRefs := refSet(target)

	var added, removed, common []string
	for ref := range targetRefs {
		if _, ok := priorRefs[ref]; ok {
			common = append(common, ref)
		} else {
			added = append(added, ref)
		}
	}
	for ref := range priorRefs {
		if _, ok := targetRefs[ref]; !ok {
			removed = append(removed, ref)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(common)

	ctx := &diffCtx{appDependencies: map[string][]string{}}
	addedSet := toSet(added)

	addedOps, err := diffAddedModels(added, addedSet, target, ctx)
	if err != nil {
		return nil, nil, err
	}
	ops = append(ops, addedOps...)

	for _, ref := range common {
		ops = append(ops, diffCommonModel(ref, priorUniverse.Model(ref), target.Model(ref), addedSet, ctx)...)
	}

	ops = append(ops, diffRemovedModels(removed, priorUniverse)...)
	ops = dedupeM2M(ops)

	for app, deps := range ctx.appDependencies {
		sort.Strings(deps)
		ctx.appDependencies[app] = deps
	}
	return ops, ctx.appDependencies, nil
}

func refSet(u state.Universe) map[string]struct{} {
	set := make(map[string]struct{})
	for _, ref := range u.ModelRefs() {
		set[ref] = struct{}{}
	}
	return set
}

func toSet(refs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		set[r] = struct{}{}
	}
	return set
}

// deferredField records a cycle-breaking FK that must surface as an
// AddField once its target model has been created.
type deferredField struct {
	model  string
	field  string
	target string
}

// diffAddedModels orders newly added models by dependency, breaking cycles
// via deferred AddField, and emits each model's indexes right after it.
func diffAddedModels(added []string, addedSet map[string]struct{}, target state.Universe, ctx *diffCtx) ([]migrations.Operation, error) {
	adj := make(map[string][]string, len(added))
	indeg := make(map[string]int, len(added))
	for _, ref := range added {
		indeg[ref] = 0
	}
	for _, ref := range added {
		m := target.Model(ref)
		for _, fname := range m.FieldNames() {
			f := m.Fields[fname]
			tgt, nonSelf := relationTarget(f, ref)
			if !nonSelf || f.Nullable {
				continue
			}
			if _, inAdded := addedSet[tgt]; !inAdded {
				continue
			}
			adj[tgt] = append(adj[tgt], ref)
			indeg[ref]++
		}
	}

	order, cyclic := topoSort(added, adj, indeg)
	if len(cyclic) > 0 {
		return nil, CycleError{Models: cyclic}
	}

	created := make(map[string]bool, len(added))
	deferredByTarget := make(map[string][]deferredField)
	var ops []migrations.Operation

	for _, ref := range order {
		m := target.Model(ref)
		fields := make(map[string]*state.Field, len(m.Fields))
		var deferredHere []deferredField
		for _, fname := range m.FieldNames() {
			f := m.Fields[fname]
			if f.Kind == state.KindForeignKey && f.ForeignKey.TargetModel != ref {
				if _, inAdded := addedSet[f.ForeignKey.TargetModel]; inAdded && !created[f.ForeignKey.TargetModel] {
					deferredHere = append(deferredHere, deferredField{model: ref, field: fname, target: f.ForeignKey.TargetModel})
					continue
				}
			}
			fields[fname] = f
			noteRelationDependency(ctx, ref, f, addedSet)
		}

		order := make([]string, 0, len(fields))
		for _, fname := range m.FieldNames() {
			if _, ok := fields[fname]; ok {
				order = append(order, fname)
			}
		}

		ops = append(ops, &migrations.OpCreateModel{Model: ref, Table: m.Table, Fields: fields, Order: order})
		created[ref] = true

		for _, ix := range declarationOrderIndexes(m) {
			ops = append(ops, &migrations.OpAddIndex{Model: ref, Index: ix})
		}

		for _, df := range deferredHere {
			deferredByTarget[df.target] = append(deferredByTarget[df.target], df)
		}

		pending := deferredByTarget[ref]
		delete(deferredByTarget, ref)
		sort.Slice(pending, func(i, j int) bool {
			if pending[i].model != pending[j].model {
				return pending[i].model < pending[j].model
			}
			return pending[i].field < pending[j].field
		})
		for _, df := range pending {
			f := target.Model(df.model).Fields[df.field]
			ops = append(ops, &migrations.OpAddField{Model: df.model, FieldName: df.field, Field: f})
			noteRelationDependency(ctx, df.model, f, addedSet)
		}
	}
	return ops, nil
}

// relationTarget returns a field's relation target model ref, reporting
// false when the field carries no relation or targets itself.
func relationTarget(f *state.Field, selfRef string) (string, bool) {
	switch {
	case f.Kind == state.KindForeignKey && f.ForeignKey != nil:
		if f.ForeignKey.TargetModel == selfRef {
			return "", false
		}
		return f.ForeignKey.TargetModel, true
	case f.Kind == state.KindManyToMany && f.ManyToMany != nil:
		if f.ManyToMany.TargetModel == selfRef {
			return "", false
		}
		return f.ManyToMany.TargetModel, true
	default:
		return "", false
	}
}

func noteRelationDependency(ctx *diffCtx, fromRef string, f *state.Field, addedSet map[string]struct{}) {
	tgt, ok := relationTarget(f, fromRef)
	if !ok {
		return
	}
	if _, isNewThisDiff := addedSet[tgt]; !isNewThisDiff {
		return
	}
	fromApp, _ := state.SplitRef(fromRef)
	tgtApp, _ := state.SplitRef(tgt)
	if fromApp == tgtApp {
		return
	}
	ctx.appDependencies[fromApp] = appendUnique(ctx.appDependencies[fromApp], tgtApp)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// diffCommonModel emits the field and index changes for a single model
// present in both prior and target.
func diffCommonModel(ref string, prior, target *state.ModelEntry, addedSet map[string]struct{}, ctx *diffCtx) []migrations.Operation {
	var ops []migrations.Operation

	fd := diffModelFields(prior, target)
	for _, name := range fd.removed {
		ops = append(ops, &migrations.OpDropField{Model: ref, FieldName: name})
	}
	for _, name := range fd.added {
		f := target.Fields[name]
		ops = append(ops, &migrations.OpAddField{Model: ref, FieldName: name, Field: f})
		noteRelationDependency(ctx, ref, f, addedSet)
	}
	for _, name := range fd.altered {
		f := target.Fields[name]
		ops = append(ops, &migrations.OpAlterField{Model: ref, FieldName: name, Field: f})
		noteRelationDependency(ctx, ref, f, addedSet)
	}

	ixd := diffModelIndexes(prior, target)
	for _, name := range ixd.removed {
		ops = append(ops, &migrations.OpDropIndex{Model: ref, IndexName: name})
	}
	for _, ix := range ixd.changed {
		ops = append(ops, &migrations.OpDropIndex{Model: ref, IndexName: ix.ResolvedName(target.Table)})
		ops = append(ops, &migrations.OpAddIndex{Model: ref, Index: ix})
	}
	for _, ix := range ixd.added {
		ops = append(ops, &migrations.OpAddIndex{Model: ref, Index: ix})
	}
	return ops
}

// diffRemovedModels drops removed models last, in reverse-dependency order
// (a model is dropped only after everything that
// referenced it via a non-nullable FK has already been dropped).
func diffRemovedModels(removed []string, priorUniverse state.Universe) []migrations.Operation {
	removedSet := toSet(removed)
	adj := make(map[string][]string, len(removed))
	indeg := make(map[string]int, len(removed))
	for _, ref := range removed {
		indeg[ref] = 0
	}
	for _, ref := range removed {
		m := priorUniverse.Model(ref)
		for _, fname := range m.FieldNames() {
			f := m.Fields[fname]
			tgt, nonSelf := relationTarget(f, ref)
			if !nonSelf || f.Nullable {
				continue
			}
			if _, inRemoved := removedSet[tgt]; !inRemoved {
				continue
			}
			// ref depends on tgt existing, so ref must be dropped first:
			// an edge from ref to tgt in the "drop order" graph.
			adj[ref] = append(adj[ref], tgt)
			indeg[tgt]++
		}
	}
	order, cyclic := topoSort(removed, adj, indeg)
	// A genuine cycle among removed models (mutual non-nullable FKs) can
	// always be dropped in any stable order: dropping a table drops its
	// constraints with it. Fall back to the alphabetical residue.
	order = append(order, cyclic...)

	ops := make([]migrations.Operation, 0, len(order))
	for _, ref := range order {
		ops = append(ops, &migrations.OpDropModel{Model: ref})
	}
	return ops
}

// dedupeM2M collapses an M2M relation declared on both ends down to a
// single AddField/CreateModel-embedded field, keeping the lexicographically
// smaller (model, field_name) as canonical.
func dedupeM2M(ops []migrations.Operation) []migrations.Operation {
	type occurrence struct {
		model, field string
		opIndex      int // index into ops for a standalone AddField; -1 for CreateModel-embedded
		createModel  *migrations.OpCreateModel
	}
	byThrough := make(map[string][]occurrence)

	for i, op := range ops {
		switch o := op.(type) {
		case *migrations.OpCreateModel:
			for fname, f := range o.Fields {
				if f.Kind == state.KindManyToMany && f.ManyToMany != nil {
					byThrough[f.ManyToMany.Through] = append(byThrough[f.ManyToMany.Through], occurrence{model: o.Model, field: fname, opIndex: -1, createModel: o})
				}
			}
		case *migrations.OpAddField:
			if o.Field.Kind == state.KindManyToMany && o.Field.ManyToMany != nil {
				byThrough[o.Field.ManyToMany.Through] = append(byThrough[o.Field.ManyToMany.Through], occurrence{model: o.Model, field: o.FieldName, opIndex: i})
			}
		}
	}

	drop := make(map[int]bool)
	for _, occs := range byThrough {
		if len(occs) < 2 {
			continue
		}
		sort.Slice(occs, func(i, j int) bool {
			if occs[i].model != occs[j].model {
				return occs[i].model < occs[j].model
			}
			return occs[i].field < occs[j].field
		})
		for _, occ := range occs[1:] {
			if occ.createModel != nil {
				delete(occ.createModel.Fields, occ.field)
				order := make([]string, 0, len(occ.createModel.Order))
				for _, name := range occ.createModel.Order {
					if name != occ.field {
						order = append(order, name)
					}
				}
				occ.createModel.Order = order
			} else {
				drop[occ.opIndex] = true
			}
		}
	}
	if len(drop) == 0 {
		return ops
	}
	kept := make([]migrations.Operation, 0, len(ops)-len(drop))
	for i, op := range ops {
		if !drop[i] {
			kept = append(kept, op)
		}
	}
	return kept
}
