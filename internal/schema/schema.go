// Package schema holds the declarative entity/relationship registry the
// resolver operates on. Entities, fields, and typed relationship edges are
// loaded once from a schema document and are immutable afterwards.
package schema

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// Kind identifies the relationship variant. It is resolved once at load time
// so traversal code can switch on it instead of re-inspecting edge shape.
type Kind int

const (
	// KindUnknown marks a relationship name that matched nothing.
	KindUnknown Kind = iota
	// KindBelongsTo is a many-to-one edge stored as a foreign key on the source.
	KindBelongsTo
	// KindHasMany is a one-to-many edge keyed by a foreign key on the target.
	KindHasMany
	// KindManyToMany is a many-to-many edge resolved through a pivot entity.
	KindManyToMany
	// KindPolymorphic is a belongs-to edge whose target type varies per row,
	// recorded as a (type field, id field) pair.
	KindPolymorphic
	// KindReversePolymorphic is a has-many edge resolved through the target's
	// own polymorphic relationship ("via").
	KindReversePolymorphic
)

func (k Kind) String() string {
	switch k {
	case KindBelongsTo:
		return "belongs_to"
	case KindHasMany:
		return "has_many"
	case KindManyToMany:
		return "many_to_many"
	case KindPolymorphic:
		return "polymorphic"
	case KindReversePolymorphic:
		return "via"
	default:
		return "unknown"
	}
}

// Field is a declared column on an entity. A field carrying a BelongsTo
// target doubles as a many-to-one relationship declaration; Alias is the
// relationship name it is exposed under.
type Field struct {
	Name      string
	Indexed   bool
	BelongsTo string
	Alias     string
}

// Relationship is a directed, typed edge between entities. Which fields are
// populated depends on Kind:
//
//	KindBelongsTo:          Target, ForeignKey (column on the source)
//	KindHasMany:            Target, ForeignKey (column on the target)
//	KindManyToMany:         Target, Through, ForeignKey (pivot -> source),
//	                        OtherKey (pivot -> target)
//	KindPolymorphic:        TypeField, IDField, AllowedTypes
//	KindReversePolymorphic: Target, Via (name of the polymorphic
//	                        relationship declared on the target)
type Relationship struct {
	Name         string
	Kind         Kind
	Target       string
	ForeignKey   string
	Through      string
	OtherKey     string
	TypeField    string
	IDField      string
	AllowedTypes []string
	Via          string
}

// ToMany reports whether the edge yields multiple records per source record.
func (r Relationship) ToMany() bool {
	switch r.Kind {
	case KindHasMany, KindManyToMany, KindReversePolymorphic:
		return true
	default:
		return false
	}
}

// Entity is a named type with an ordered field list and its declared
// relationships. BelongsTo edges derived from fields are materialized into
// belongsTo at load time, preserving field declaration order.
type Entity struct {
	Name          string
	Table         string
	IDField       string
	Fields        []Field
	Relationships []Relationship

	belongsTo []Relationship
}

// Field returns the declared field with the given name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// BelongsTo returns the many-to-one edges synthesized from this entity's
// fields, in declaration order.
func (e *Entity) BelongsTo() []Relationship {
	return e.belongsTo
}

// Registry is the read-only schema surface consumed by the graph model, the
// join-chain resolver, and the batch loader. Lookups are in-memory and may be
// called freely.
type Registry interface {
	Entity(name string) (*Entity, bool)
	Fields(name string) []Field
	Relationships(name string) []Relationship
	TableName(name string) string
	IDField(name string) string
}

// Catalog is the standard Registry implementation, built by Load or Parse.
type Catalog struct {
	entities map[string]*Entity
	order    []string
}

// NewCatalog builds a Catalog from fully-declared entities, filling table
// name and id field defaults and synthesizing belongsTo edges from fields.
func NewCatalog(entities []Entity) *Catalog {
	c := &Catalog{entities: make(map[string]*Entity, len(entities))}
	for i := range entities {
		e := entities[i]
		if e.Table == "" {
			e.Table = defaultTableName(e.Name)
		}
		if e.IDField == "" {
			e.IDField = "id"
		}
		e.belongsTo = belongsToEdges(e.Fields)
		c.entities[e.Name] = &e
		c.order = append(c.order, e.Name)
	}
	return c
}

// Entity returns the entity declaration for name.
func (c *Catalog) Entity(name string) (*Entity, bool) {
	e, ok := c.entities[name]
	return e, ok
}

// Fields returns the ordered field list for name, or nil if unknown.
func (c *Catalog) Fields(name string) []Field {
	if e, ok := c.entities[name]; ok {
		return e.Fields
	}
	return nil
}

// Relationships returns the declared relationship map for name, in
// declaration order, or nil if unknown.
func (c *Catalog) Relationships(name string) []Relationship {
	if e, ok := c.entities[name]; ok {
		return e.Relationships
	}
	return nil
}

// TableName returns the backing table for name, or the pluralized default
// for unknown entities so error paths still render something readable.
func (c *Catalog) TableName(name string) string {
	if e, ok := c.entities[name]; ok {
		return e.Table
	}
	return defaultTableName(name)
}

// IDField returns the identifier column for name.
func (c *Catalog) IDField(name string) string {
	if e, ok := c.entities[name]; ok {
		return e.IDField
	}
	return "id"
}

// EntityNames returns all declared entity names in declaration order.
func (c *Catalog) EntityNames() []string {
	return append([]string(nil), c.order...)
}

func belongsToEdges(fields []Field) []Relationship {
	var edges []Relationship
	for _, f := range fields {
		if f.BelongsTo == "" {
			continue
		}
		name := f.Alias
		if name == "" {
			name = strings.TrimSuffix(f.Name, "_id")
		}
		edges = append(edges, Relationship{
			Name:       name,
			Kind:       KindBelongsTo,
			Target:     f.BelongsTo,
			ForeignKey: f.Name,
		})
	}
	return edges
}

func defaultTableName(entity string) string {
	return inflection.Plural(toSnakeCase(entity))
}

func toSnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
