// Package graph provides typed lookups over the schema registry's declared
// relationship data. All lookups are pure, never touch the database, and
// report absence with a boolean rather than an error; the caller decides
// whether a miss is fatal.
package graph

import (
	"relgraph/internal/schema"
)

// FindBelongsTo returns the first belongsTo edge from `from` to `target`,
// in field declaration order.
func FindBelongsTo(reg schema.Registry, from, target string) (schema.Relationship, bool) {
	entity, ok := reg.Entity(from)
	if !ok {
		return schema.Relationship{}, false
	}
	for _, edge := range entity.BelongsTo() {
		if edge.Target == target {
			return edge, true
		}
	}
	return schema.Relationship{}, false
}

// FindHasMany returns the first many-valued edge from `from` to `target`.
// Plain hasMany, through-pivot many-to-many, and reverse-polymorphic "via"
// shapes all match; declaration order breaks ties within a kind.
func FindHasMany(reg schema.Registry, from, target string) (schema.Relationship, bool) {
	for _, kind := range []schema.Kind{schema.KindReversePolymorphic, schema.KindManyToMany, schema.KindHasMany} {
		for _, rel := range reg.Relationships(from) {
			if rel.Kind == kind && rel.Target == target {
				return rel, true
			}
		}
	}
	return schema.Relationship{}, false
}

// FindPolymorphic returns the polymorphic edge declared on `from` under
// `name`.
func FindPolymorphic(reg schema.Registry, from, name string) (schema.Relationship, bool) {
	for _, rel := range reg.Relationships(from) {
		if rel.Kind == schema.KindPolymorphic && rel.Name == name {
			return rel, true
		}
	}
	return schema.Relationship{}, false
}

// Resolve returns the edge `from` exposes under the relationship name.
// BelongsTo aliases declared on fields take precedence over the relationship
// map, mirroring how the schema document layers the two declarations.
func Resolve(reg schema.Registry, from, name string) (schema.Relationship, bool) {
	entity, ok := reg.Entity(from)
	if !ok {
		return schema.Relationship{}, false
	}
	for _, edge := range entity.BelongsTo() {
		if edge.Name == name {
			return edge, true
		}
	}
	for _, rel := range entity.Relationships {
		if rel.Name == name {
			return rel, true
		}
	}
	return schema.Relationship{}, false
}

// Classify reports which relationship kind handles `name` on `from`,
// returning KindUnknown for anything undeclared or misdeclared. Unknown is a
// report, not a failure: include loading logs and skips such branches.
func Classify(reg schema.Registry, from, name string) schema.Kind {
	rel, ok := Resolve(reg, from, name)
	if !ok {
		return schema.KindUnknown
	}
	return rel.Kind
}
