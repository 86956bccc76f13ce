// Package joins resolves dotted cross-table paths into ordered join plans.
// Given a start type and a path like "author.company.name", it finds a
// relationship chain through the declared graph, renders one LEFT JOIN step
// per hop with deterministic aliases, and validates that the final field is
// indexed, all before any SQL executes.
package joins

import (
	"errors"
	"fmt"
	"strings"

	"relgraph/internal/graph"
	"relgraph/internal/schema"
	"relgraph/internal/sqlutil"
)

// JoinStep is one LEFT JOIN in a plan. Callers attach each step to a query
// independently: LEFT JOIN TargetTable AS Alias ON Condition.
type JoinStep struct {
	TargetTable string
	Alias       string
	Condition   string
	// ToMany marks steps that can multiply rows; callers filtering through
	// such a step typically need DISTINCT on the root.
	ToMany      bool
	Polymorphic bool
}

// JoinPlan is the ordered join sequence reaching TargetField on the last
// joined type. Plans are built fresh per call and owned by the caller.
type JoinPlan struct {
	RootType    string
	RootTable   string
	Steps       []JoinStep
	TargetAlias string
	TargetField string
	TargetType  string
}

// JoinAlias derives the alias for a join step from the adjacent type pair
// only. Two multi-hop paths that share a (from, to) pair at different depths
// therefore collide on alias; this matches the original naming scheme on
// purpose. ResolveJoinChain rejects a plan instead of emitting broken SQL if
// a collision would pair one alias with two different conditions.
func JoinAlias(from, to string) string {
	return fmt.Sprintf("%s_to_%s_%s", from, to, to)
}

// Resolver builds join plans over a schema registry.
type Resolver struct {
	reg schema.Registry
}

// NewResolver returns a Resolver over reg.
func NewResolver(reg schema.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// hop is one resolved edge of a relationship chain. For polymorphic edges the
// edge itself carries no fixed target, so the resolved target rides along.
type hop struct {
	edge schema.Relationship
	from string
	to   string
}

// ResolveJoinChain resolves a dotted path of relationship segments plus a
// final field name into a JoinPlan. Each segment names a target type; when no
// direct edge exists the search recurses depth-first through intermediate
// types, failing with CircularReferenceError if it walks back into a type
// already on the path.
func (r *Resolver) ResolveJoinChain(fromType, dottedPath string) (*JoinPlan, error) {
	segments := strings.Split(dottedPath, ".")
	if len(segments) < 2 {
		return nil, fmt.Errorf("join path %q must name at least one relationship segment and a field", dottedPath)
	}
	if _, ok := r.reg.Entity(fromType); !ok {
		return nil, &SchemaNotFoundError{Type: fromType}
	}

	relSegments := segments[:len(segments)-1]
	field := segments[len(segments)-1]

	plan := &JoinPlan{
		RootType:  fromType,
		RootTable: r.reg.TableName(fromType),
	}
	conditionByAlias := make(map[string]string)

	current := fromType
	prevAlias := plan.RootTable
	for _, seg := range relSegments {
		if _, ok := r.reg.Entity(seg); !ok {
			return nil, &SchemaNotFoundError{Type: seg}
		}
		hops, err := r.search(current, seg, []string{current})
		if err != nil {
			return nil, err
		}
		for _, h := range hops {
			steps, nextAlias := r.renderHop(h, prevAlias)
			for _, step := range steps {
				if existing, ok := conditionByAlias[step.Alias]; ok {
					if existing != step.Condition {
						return nil, fmt.Errorf("join alias %q resolves to conflicting conditions %q and %q: path %q revisits a type pair at different depths", step.Alias, existing, step.Condition, dottedPath)
					}
					continue
				}
				conditionByAlias[step.Alias] = step.Condition
				plan.Steps = append(plan.Steps, step)
			}
			prevAlias = nextAlias
		}
		current = seg
	}

	entity, _ := r.reg.Entity(current)
	f, ok := entity.Field(field)
	if !ok {
		return nil, &FieldNotFoundError{Type: current, Field: field}
	}
	if !f.Indexed {
		return nil, &FieldNotIndexedError{Type: current, Field: field}
	}

	plan.TargetAlias = prevAlias
	plan.TargetField = field
	plan.TargetType = current
	return plan, nil
}

// search finds a relationship chain from current to target. A direct edge
// wins; otherwise candidate edges are tried depth-first. Edge preference at
// every level: reverse-polymorphic, many-to-many, plain hasMany, belongsTo,
// then polymorphic: structural many-sides are checked before simple foreign
// keys because a schema may declare both and the many-side semantics
// dominate. Ties break by declaration order. The path is copied on recursion
// so sibling branches never observe each other's visited state.
func (r *Resolver) search(current, target string, path []string) ([]hop, error) {
	if direct, ok := r.directEdge(current, target); ok {
		return []hop{direct}, nil
	}

	for _, candidate := range r.candidateEdges(current) {
		if candidate.to == target {
			continue // direct lookup already rejected this shape
		}
		if contains(path, candidate.to) {
			return nil, &CircularReferenceError{Cycle: append(append([]string(nil), path...), candidate.to)}
		}
		next := append(append([]string(nil), path...), candidate.to)
		rest, err := r.search(candidate.to, target, next)
		if err != nil {
			var notFound *RelationshipNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		return append([]hop{candidate}, rest...), nil
	}

	return nil, &RelationshipNotFoundError{From: current, To: target}
}

// directEdge finds an edge from current whose resolved target is exactly
// target, honoring the kind preference order.
func (r *Resolver) directEdge(current, target string) (hop, bool) {
	if edge, ok := graph.FindHasMany(r.reg, current, target); ok && r.usableEdge(edge) {
		return hop{edge: edge, from: current, to: target}, true
	}
	if edge, ok := graph.FindBelongsTo(r.reg, current, target); ok {
		return hop{edge: edge, from: current, to: target}, true
	}
	for _, rel := range r.reg.Relationships(current) {
		if rel.Kind != schema.KindPolymorphic {
			continue
		}
		if contains(rel.AllowedTypes, target) {
			return hop{edge: rel, from: current, to: target}, true
		}
	}
	return hop{}, false
}

// candidateEdges lists every outgoing edge of current in preference order,
// expanding polymorphic edges to one candidate per allowed type.
func (r *Resolver) candidateEdges(current string) []hop {
	var candidates []hop
	rels := r.reg.Relationships(current)
	for _, kind := range []schema.Kind{schema.KindReversePolymorphic, schema.KindManyToMany, schema.KindHasMany} {
		for _, rel := range rels {
			if rel.Kind == kind && r.usableEdge(rel) {
				candidates = append(candidates, hop{edge: rel, from: current, to: rel.Target})
			}
		}
	}
	if entity, ok := r.reg.Entity(current); ok {
		for _, edge := range entity.BelongsTo() {
			candidates = append(candidates, hop{edge: edge, from: current, to: edge.Target})
		}
	}
	for _, rel := range rels {
		if rel.Kind != schema.KindPolymorphic {
			continue
		}
		for _, allowed := range rel.AllowedTypes {
			candidates = append(candidates, hop{edge: rel, from: current, to: allowed})
		}
	}
	return candidates
}

// renderHop synthesizes the join step(s) for one resolved edge. Many-to-many
// hops emit two steps (pivot, then target); every other kind emits one.
func (r *Resolver) renderHop(h hop, prevAlias string) ([]JoinStep, string) {
	switch h.edge.Kind {
	case schema.KindBelongsTo:
		alias := JoinAlias(h.from, h.to)
		return []JoinStep{{
			TargetTable: r.reg.TableName(h.to),
			Alias:       alias,
			Condition:   equate(sqlutil.Qualify(prevAlias, h.edge.ForeignKey), sqlutil.Qualify(alias, r.reg.IDField(h.to))),
		}}, alias

	case schema.KindHasMany:
		alias := JoinAlias(h.from, h.to)
		return []JoinStep{{
			TargetTable: r.reg.TableName(h.to),
			Alias:       alias,
			Condition:   equate(sqlutil.Qualify(prevAlias, r.reg.IDField(h.from)), sqlutil.Qualify(alias, h.edge.ForeignKey)),
			ToMany:      true,
		}}, alias

	case schema.KindManyToMany:
		pivotAlias := JoinAlias(h.from, h.edge.Through)
		targetAlias := JoinAlias(h.edge.Through, h.to)
		return []JoinStep{
			{
				TargetTable: r.reg.TableName(h.edge.Through),
				Alias:       pivotAlias,
				Condition:   equate(sqlutil.Qualify(prevAlias, r.reg.IDField(h.from)), sqlutil.Qualify(pivotAlias, h.edge.ForeignKey)),
				ToMany:      true,
			},
			{
				TargetTable: r.reg.TableName(h.to),
				Alias:       targetAlias,
				Condition:   equate(sqlutil.Qualify(pivotAlias, h.edge.OtherKey), sqlutil.Qualify(targetAlias, r.reg.IDField(h.to))),
				ToMany:      true,
			},
		}, targetAlias

	case schema.KindPolymorphic:
		alias := JoinAlias(h.from, h.to)
		return []JoinStep{{
			TargetTable: r.reg.TableName(h.to),
			Alias:       alias,
			Condition: fmt.Sprintf("%s AND %s = %s",
				equate(sqlutil.Qualify(prevAlias, h.edge.IDField), sqlutil.Qualify(alias, r.reg.IDField(h.to))),
				sqlutil.Qualify(prevAlias, h.edge.TypeField), sqlutil.QuoteString(h.to)),
			Polymorphic: true,
		}}, alias

	case schema.KindReversePolymorphic:
		alias := JoinAlias(h.from, h.to)
		via, _ := graph.FindPolymorphic(r.reg, h.to, h.edge.Via)
		return []JoinStep{{
			TargetTable: r.reg.TableName(h.to),
			Alias:       alias,
			Condition: fmt.Sprintf("%s AND %s = %s",
				equate(sqlutil.Qualify(prevAlias, r.reg.IDField(h.from)), sqlutil.Qualify(alias, via.IDField)),
				sqlutil.Qualify(alias, via.TypeField), sqlutil.QuoteString(h.from)),
			ToMany:      true,
			Polymorphic: true,
		}}, alias
	}
	return nil, prevAlias
}

func equate(left, right string) string {
	return left + " = " + right
}

// usableEdge filters out via edges whose named relationship on the target is
// missing or not polymorphic; such an edge has no joinable key pair.
func (r *Resolver) usableEdge(edge schema.Relationship) bool {
	if edge.Kind != schema.KindReversePolymorphic {
		return true
	}
	_, ok := graph.FindPolymorphic(r.reg, edge.Target, edge.Via)
	return ok
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
