// Package loader eagerly loads related resources for a record set, one
// batched query per relationship level, so response assembly never degrades
// into one query per parent record.
package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"relgraph/internal/dbexec"
	"relgraph/internal/graph"
	"relgraph/internal/include"
	"relgraph/internal/logging"
	"relgraph/internal/observability"
	"relgraph/internal/schema"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkSize = 1000
	defaultMaxDepth  = 8
)

const (
	relationBelongsTo   = "belongs_to"
	relationHasMany     = "has_many"
	relationManyToMany  = "many_to_many"
	relationPolymorphic = "polymorphic"
	relationVia         = "via"
)

// Loader batch-loads include trees against a schema registry and a query
// executor. One Loader serves many concurrent calls; all per-call state is
// allocated fresh inside ResolveIncludes.
type Loader struct {
	reg       schema.Registry
	exec      dbexec.QueryExecutor
	logger    *logging.Logger
	metrics   *observability.LoaderMetrics
	chunkSize int
	maxDepth  int
}

// Config bounds loader work.
type Config struct {
	// ChunkSize caps values per IN clause; one query is issued per chunk.
	ChunkSize int
	// MaxDepth caps include tree depth; deeper branches are skipped fail-soft.
	MaxDepth int
}

// New creates a Loader. logger and metrics may be nil.
func New(reg schema.Registry, exec dbexec.QueryExecutor, logger *logging.Logger, metrics *observability.LoaderMetrics, cfg Config) *Loader {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if logger == nil {
		logger = logging.FromContext(context.Background())
	}
	return &Loader{
		reg:       reg,
		exec:      exec,
		logger:    logger,
		metrics:   metrics,
		chunkSize: cfg.ChunkSize,
		maxDepth:  cfg.MaxDepth,
	}
}

// Options tune one ResolveIncludes call.
type Options struct {
	// Executor overrides the loader's executor, typically with a TxExecutor
	// so includes observe the same snapshot as a preceding write. It is
	// passed through unchanged to every batch query; the loader never opens
	// or ends a transaction.
	Executor dbexec.QueryExecutor
	// Fields restricts selected columns per target type. Identifier,
	// foreign-key, and discriminator columns needed to link relationships
	// are always selected regardless.
	Fields map[string][]string
	// PerParentLimit caps loaded records per parent for to-many
	// relationships, using a window query when the executor supports it.
	PerParentLimit int
}

// resolveCall bundles the per-call collaborators threaded through the
// traversal: the (possibly transactional) executor, options, fresh state,
// and a correlation-tagged logger.
type resolveCall struct {
	exec  dbexec.QueryExecutor
	opts  *Options
	state *loadState
	log   *logging.Logger
}

// ResolveIncludes loads the include tree level by level starting from
// records, returning the records with relationship linkage attached plus
// every related resource fetched, deduplicated by (type, id). On any
// database error the whole call fails; no partial included set is returned.
func (l *Loader) ResolveIncludes(ctx context.Context, rootType string, records []map[string]any, tree *include.Node, opts *Options) (result *Result, err error) {
	if opts == nil {
		opts = &Options{}
	}
	if _, ok := l.reg.Entity(rootType); !ok {
		return nil, fmt.Errorf("unknown root type %q", rootType)
	}

	resolveID := uuid.NewString()
	ctx, span := startLoaderSpan(ctx, "loader.resolve_includes",
		attribute.String("resource.type", rootType),
		attribute.Int("record.count", len(records)),
		attribute.String("resolve.id", resolveID),
	)
	defer func() { finishLoaderSpan(span, err) }()

	call := &resolveCall{
		exec:  l.exec,
		opts:  opts,
		state: newLoadState(),
		log:   l.logger.WithFields("resolve_id", resolveID, "root_type", rootType),
	}
	if opts.Executor != nil {
		call.exec = opts.Executor
	}

	idField := l.reg.IDField(rootType)
	roots := make([]*LinkedRecord, 0, len(records))
	for _, row := range records {
		roots = append(roots, &LinkedRecord{Type: rootType, ID: fmt.Sprint(row[idField]), Row: row})
	}

	if err = l.loadLevel(ctx, call, rootType, roots, tree, ""); err != nil {
		return nil, err
	}
	return &Result{Records: roots, Included: call.state.included}, nil
}

// loadLevel processes one tree level: every child relationship of node is
// loaded concurrently against the full parent set (fan-out), and only after
// all branches complete (fan-in) does each branch recurse into its subtree
// with the freshly loaded records as the next parent set.
func (l *Loader) loadLevel(ctx context.Context, call *resolveCall, fromType string, parents []*LinkedRecord, node *include.Node, prefix string) error {
	if node.IsEmpty() || len(parents) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	names := node.ChildNames()
	children := make([][]*LinkedRecord, len(names))
	skipped := make([]bool, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if !call.state.markPath(fromType + "|" + path) {
			skipped[i] = true
			continue
		}
		if depthOf(path) > l.maxDepth {
			call.log.Warn("include path exceeds max depth, skipping branch",
				"path", path, "max_depth", l.maxDepth)
			l.metrics.RecordBranchSkipped(ctx, "max_depth")
			skipped[i] = true
			continue
		}
		g.Go(func() error {
			recs, err := l.loadBranch(gctx, call, fromType, name, parents, node.Children[name], path)
			if err != nil {
				return err
			}
			children[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		if skipped[i] || len(children[i]) == 0 {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		for _, group := range groupRecordsByType(children[i]) {
			if err := l.loadLevel(ctx, call, group.typ, group.records, node.Children[name], path); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadBranch loads one relationship for the whole parent set and returns the
// distinct linked records for subtree recursion. Unknown or misconfigured
// relationships are logged and skipped; a bad include never fails the call.
func (l *Loader) loadBranch(ctx context.Context, call *resolveCall, fromType, name string, parents []*LinkedRecord, node *include.Node, path string) (recs []*LinkedRecord, err error) {
	rel, ok := graph.Resolve(l.reg, fromType, name)
	kind := schema.KindUnknown
	if ok {
		kind = rel.Kind
	}

	ctx, span := startLoaderSpan(ctx, "loader.load_branch",
		attribute.String("relationship.path", path),
		attribute.String("relationship.kind", kind.String()),
		attribute.Int("parent.count", len(parents)),
	)
	defer func() {
		if err != nil {
			err = fmt.Errorf("failed to load relationship %s.%s (path %q): %w", fromType, name, path, err)
		}
		finishLoaderSpan(span, err)
	}()

	switch kind {
	case schema.KindBelongsTo:
		return l.loadBelongsTo(ctx, call, fromType, rel, parents, node, path)
	case schema.KindHasMany:
		return l.loadHasMany(ctx, call, fromType, rel, parents, node, path)
	case schema.KindManyToMany:
		return l.loadManyToMany(ctx, call, fromType, rel, parents, node, path)
	case schema.KindPolymorphic:
		return l.loadPolymorphic(ctx, call, fromType, rel, parents, node, path)
	case schema.KindReversePolymorphic:
		return l.loadVia(ctx, call, fromType, rel, parents, node, path)
	default:
		relErr := &UnknownRelationshipError{Type: fromType, Name: name}
		call.log.Warn("skipping unknown include relationship",
			"path", path, "reason", relErr.Error())
		l.metrics.RecordBranchSkipped(ctx, "unknown_relationship")
		return nil, nil
	}
}

// loadBelongsTo collects the distinct non-null foreign-key values across all
// parents and resolves them with a single IN query against the target.
func (l *Loader) loadBelongsTo(ctx context.Context, call *resolveCall, fromType string, rel schema.Relationship, parents []*LinkedRecord, node *include.Node, path string) ([]*LinkedRecord, error) {
	target := rel.Target
	fkValues := uniqueValues(parents, rel.ForeignKey)
	if len(fkValues) == 0 {
		for _, p := range parents {
			p.setRelationship(rel.Name, RelationshipLink{})
		}
		return nil, nil
	}

	table := l.reg.TableName(target)
	idField := l.reg.IDField(target)
	cols := l.selectColumns(call, target, node)
	rows, err := l.runChunked(ctx, call, relationBelongsTo, fkValues, path, func(chunk []any) (sqlQuery, error) {
		return planSelectIn(table, cols, idField, chunk)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*LinkedRecord, len(rows))
	collector := newChildCollector(l, ctx, call)
	for _, row := range rows {
		rec := collector.add(target, row[idField], row)
		byID[fmt.Sprint(row[idField])] = rec
	}

	for _, p := range parents {
		raw := p.Row[rel.ForeignKey]
		link := RelationshipLink{}
		if raw != nil {
			if rec, ok := byID[fmt.Sprint(raw)]; ok {
				id := rec.Identifier()
				link.One = &id
			}
		}
		p.setRelationship(rel.Name, link)
	}
	return collector.records, nil
}

// loadHasMany issues one IN query keyed by the foreign key on the target and
// groups the results back onto parents. Parents with no children get an
// empty list, never null.
func (l *Loader) loadHasMany(ctx context.Context, call *resolveCall, fromType string, rel schema.Relationship, parents []*LinkedRecord, node *include.Node, path string) ([]*LinkedRecord, error) {
	target := rel.Target
	parentIDField := l.reg.IDField(fromType)
	parentIDs := uniqueValues(parents, parentIDField)
	if len(parentIDs) == 0 {
		attachEmptyMany(parents, rel.Name)
		return nil, nil
	}

	table := l.reg.TableName(target)
	idField := l.reg.IDField(target)
	cols := l.selectColumns(call, target, node, rel.ForeignKey)

	var grouped map[string][]map[string]any
	if limit := call.opts.PerParentLimit; limit > 0 && l.windowCapable(call.exec) {
		rows, err := l.runChunked(ctx, call, relationHasMany, parentIDs, path, func(chunk []any) (sqlQuery, error) {
			return planWindowLimited(table, cols, rel.ForeignKey, chunk, limit, idField)
		})
		if err != nil {
			return nil, err
		}
		grouped = groupByAlias(rows, batchParentAlias)
	} else {
		if limit := call.opts.PerParentLimit; limit > 0 {
			l.warnWindowUnsupported(ctx, call, path)
		}
		rows, err := l.runChunked(ctx, call, relationHasMany, parentIDs, path, func(chunk []any) (sqlQuery, error) {
			return planSelectIn(table, cols, rel.ForeignKey, chunk)
		})
		if err != nil {
			return nil, err
		}
		grouped = groupByField(rows, rel.ForeignKey)
	}

	collector := newChildCollector(l, ctx, call)
	for _, p := range parents {
		many := []ResourceIdentifier{}
		if raw := p.Row[parentIDField]; raw != nil {
			for _, row := range grouped[fmt.Sprint(raw)] {
				rec := collector.add(target, row[idField], row)
				many = append(many, rec.Identifier())
			}
		}
		p.setRelationship(rel.Name, RelationshipLink{ToMany: true, Many: many})
	}
	return collector.records, nil
}

// loadManyToMany resolves membership through the pivot with one query, then
// fetches the distinct target records with a second, two queries regardless
// of parent count. A per-parent limit is applied on the pivot side with a
// window query when supported, or by truncating membership otherwise.
func (l *Loader) loadManyToMany(ctx context.Context, call *resolveCall, fromType string, rel schema.Relationship, parents []*LinkedRecord, node *include.Node, path string) ([]*LinkedRecord, error) {
	target := rel.Target
	parentIDField := l.reg.IDField(fromType)
	parentIDs := uniqueValues(parents, parentIDField)
	if len(parentIDs) == 0 {
		attachEmptyMany(parents, rel.Name)
		return nil, nil
	}

	pivotTable := l.reg.TableName(rel.Through)
	pivotCols := []string{rel.ForeignKey, rel.OtherKey}

	limit := call.opts.PerParentLimit
	truncate := false
	var pivotRows []map[string]any
	var err error
	if limit > 0 && l.windowCapable(call.exec) {
		pivotRows, err = l.runChunked(ctx, call, relationManyToMany, parentIDs, path, func(chunk []any) (sqlQuery, error) {
			return planWindowLimited(pivotTable, pivotCols, rel.ForeignKey, chunk, limit, rel.OtherKey)
		})
		if err == nil {
			for _, row := range pivotRows {
				row[rel.ForeignKey] = row[batchParentAlias]
				delete(row, batchParentAlias)
			}
		}
	} else {
		if limit > 0 {
			l.warnWindowUnsupported(ctx, call, path)
			truncate = true
		}
		pivotRows, err = l.runChunked(ctx, call, relationManyToMany, parentIDs, path, func(chunk []any) (sqlQuery, error) {
			return planSelectIn(pivotTable, pivotCols, rel.ForeignKey, chunk)
		})
	}
	if err != nil {
		return nil, err
	}

	membership := make(map[string][]any)
	var otherIDs []any
	seenOther := make(map[string]struct{})
	for _, row := range pivotRows {
		parentKey := fmt.Sprint(row[rel.ForeignKey])
		otherID := row[rel.OtherKey]
		if otherID == nil {
			continue
		}
		if truncate && len(membership[parentKey]) >= limit {
			continue
		}
		membership[parentKey] = append(membership[parentKey], otherID)
		otherKey := fmt.Sprint(otherID)
		if _, ok := seenOther[otherKey]; !ok {
			seenOther[otherKey] = struct{}{}
			otherIDs = append(otherIDs, otherID)
		}
	}
	if len(otherIDs) == 0 {
		attachEmptyMany(parents, rel.Name)
		return nil, nil
	}

	table := l.reg.TableName(target)
	idField := l.reg.IDField(target)
	cols := l.selectColumns(call, target, node)
	targetRows, err := l.runChunked(ctx, call, relationManyToMany, otherIDs, path, func(chunk []any) (sqlQuery, error) {
		return planSelectIn(table, cols, idField, chunk)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*LinkedRecord, len(targetRows))
	collector := newChildCollector(l, ctx, call)
	for _, row := range targetRows {
		rec := collector.add(target, row[idField], row)
		byID[fmt.Sprint(row[idField])] = rec
	}

	for _, p := range parents {
		many := []ResourceIdentifier{}
		if raw := p.Row[parentIDField]; raw != nil {
			for _, otherID := range membership[fmt.Sprint(raw)] {
				if rec, ok := byID[fmt.Sprint(otherID)]; ok {
					many = append(many, rec.Identifier())
				}
			}
		}
		p.setRelationship(rel.Name, RelationshipLink{ToMany: true, Many: many})
	}
	return collector.records, nil
}

// loadPolymorphic groups parents by their type-discriminator value and
// issues one IN query per distinct declared type present in the data.
// Discriminator values outside AllowedTypes are never queried.
func (l *Loader) loadPolymorphic(ctx context.Context, call *resolveCall, fromType string, rel schema.Relationship, parents []*LinkedRecord, node *include.Node, path string) ([]*LinkedRecord, error) {
	groups := make(map[string][]*LinkedRecord)
	for _, p := range parents {
		t := p.Row[rel.TypeField]
		id := p.Row[rel.IDField]
		if t == nil || id == nil {
			p.setRelationship(rel.Name, RelationshipLink{})
			continue
		}
		groups[fmt.Sprint(t)] = append(groups[fmt.Sprint(t)], p)
	}

	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Strings(types)

	collector := newChildCollector(l, ctx, call)
	lookup := make(map[string]map[string]*LinkedRecord)
	for _, t := range types {
		if !containsString(rel.AllowedTypes, t) {
			call.log.Warn("polymorphic discriminator value not in allowed types, skipping",
				"path", path, "type_field", rel.TypeField, "value", t)
			l.metrics.RecordBranchSkipped(ctx, "disallowed_polymorphic_type")
			for _, p := range groups[t] {
				p.setRelationship(rel.Name, RelationshipLink{})
			}
			continue
		}

		ids := make([]any, 0, len(groups[t]))
		seen := make(map[string]struct{})
		for _, p := range groups[t] {
			id := p.Row[rel.IDField]
			key := fmt.Sprint(id)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			ids = append(ids, id)
		}

		table := l.reg.TableName(t)
		idField := l.reg.IDField(t)
		cols := l.selectColumns(call, t, node)
		rows, err := l.runChunked(ctx, call, relationPolymorphic, ids, path, func(chunk []any) (sqlQuery, error) {
			return planSelectIn(table, cols, idField, chunk)
		})
		if err != nil {
			return nil, err
		}

		lookup[t] = make(map[string]*LinkedRecord, len(rows))
		for _, row := range rows {
			rec := collector.add(t, row[idField], row)
			lookup[t][fmt.Sprint(row[idField])] = rec
		}

		for _, p := range groups[t] {
			link := RelationshipLink{}
			if rec, ok := lookup[t][fmt.Sprint(p.Row[rel.IDField])]; ok {
				id := rec.Identifier()
				link.One = &id
			}
			p.setRelationship(rel.Name, link)
		}
	}
	return collector.records, nil
}

// loadVia loads a reverse-polymorphic relationship: records of the target
// type whose own polymorphic edge points back at the parents. A via name
// that does not resolve to a polymorphic edge is skipped fail-soft, exactly
// like an unknown relationship.
func (l *Loader) loadVia(ctx context.Context, call *resolveCall, fromType string, rel schema.Relationship, parents []*LinkedRecord, node *include.Node, path string) ([]*LinkedRecord, error) {
	via, ok := graph.FindPolymorphic(l.reg, rel.Target, rel.Via)
	if !ok {
		call.log.Warn("via relationship does not resolve to a polymorphic edge, skipping",
			"path", path, "target", rel.Target, "via", rel.Via)
		l.metrics.RecordBranchSkipped(ctx, "invalid_via")
		return nil, nil
	}

	target := rel.Target
	parentIDField := l.reg.IDField(fromType)
	parentIDs := uniqueValues(parents, parentIDField)
	if len(parentIDs) == 0 {
		attachEmptyMany(parents, rel.Name)
		return nil, nil
	}

	table := l.reg.TableName(target)
	idField := l.reg.IDField(target)
	cols := l.selectColumns(call, target, node, via.IDField, via.TypeField)
	rows, err := l.runChunked(ctx, call, relationVia, parentIDs, path, func(chunk []any) (sqlQuery, error) {
		return planSelectInWithDiscriminator(table, cols, via.TypeField, fromType, via.IDField, chunk)
	})
	if err != nil {
		return nil, err
	}

	grouped := groupByField(rows, via.IDField)
	collector := newChildCollector(l, ctx, call)
	for _, p := range parents {
		many := []ResourceIdentifier{}
		if raw := p.Row[parentIDField]; raw != nil {
			for _, row := range grouped[fmt.Sprint(raw)] {
				rec := collector.add(target, row[idField], row)
				many = append(many, rec.Identifier())
			}
		}
		p.setRelationship(rel.Name, RelationshipLink{ToMany: true, Many: many})
	}
	return collector.records, nil
}

// runChunked splits values into IN-clause chunks, plans and executes one
// query per chunk, and concatenates the scanned rows.
func (l *Loader) runChunked(ctx context.Context, call *resolveCall, kind string, values []any, path string, plan func([]any) (sqlQuery, error)) ([]map[string]any, error) {
	chunks := chunkValues(values, l.chunkSize)
	l.metrics.RecordQueriesSaved(ctx, batchQueriesSaved(len(values), len(chunks)), kind)

	var results []map[string]any
	for _, chunk := range chunks {
		planned, err := plan(chunk)
		if err != nil {
			return nil, err
		}
		if planned.SQL == "" {
			continue
		}
		rows, err := l.runQuery(ctx, call, kind, planned, len(chunk), path)
		if err != nil {
			return nil, err
		}
		results = append(results, rows...)
	}
	return results, nil
}

func (l *Loader) runQuery(ctx context.Context, call *resolveCall, kind string, planned sqlQuery, parentCount int, path string) ([]map[string]any, error) {
	l.metrics.RecordBatchQuery(ctx, kind)
	l.metrics.RecordBatchParentCount(ctx, int64(parentCount), kind)

	rows, err := call.exec.QueryContext(ctx, planned.SQL, planned.Args...)
	if err != nil {
		return nil, fmt.Errorf("batch query failed: %w", err)
	}
	defer rows.Close()

	results, err := dbexec.ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("batch scan failed: %w", err)
	}
	l.metrics.RecordBatchResultRows(ctx, int64(len(results)), kind)
	return results, nil
}

// selectColumns computes the projection for target: the caller's sparse
// field set when one is configured, always extended with the identifier and
// any foreign-key/discriminator columns the subtree needs for linking.
func (l *Loader) selectColumns(call *resolveCall, target string, node *include.Node, extra ...string) []string {
	entity, ok := l.reg.Entity(target)
	if !ok {
		return nil
	}

	requested := call.opts.Fields[target]
	if len(requested) == 0 {
		cols := make([]string, 0, len(entity.Fields))
		for _, f := range entity.Fields {
			cols = append(cols, f.Name)
		}
		return cols
	}

	want := make(map[string]struct{}, len(requested)+len(extra)+2)
	for _, name := range requested {
		want[name] = struct{}{}
	}
	for _, name := range extra {
		want[name] = struct{}{}
	}
	want[l.reg.IDField(target)] = struct{}{}
	for _, child := range node.ChildNames() {
		rel, ok := graph.Resolve(l.reg, target, child)
		if !ok {
			continue
		}
		switch rel.Kind {
		case schema.KindBelongsTo:
			want[rel.ForeignKey] = struct{}{}
		case schema.KindPolymorphic:
			want[rel.TypeField] = struct{}{}
			want[rel.IDField] = struct{}{}
		}
	}

	cols := make([]string, 0, len(want))
	for _, f := range entity.Fields {
		if _, ok := want[f.Name]; ok {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

func (l *Loader) windowCapable(exec dbexec.QueryExecutor) bool {
	wc, ok := exec.(dbexec.WindowCapable)
	return ok && wc.SupportsWindowFunctions()
}

func (l *Loader) warnWindowUnsupported(ctx context.Context, call *resolveCall, path string) {
	featErr := &UnsupportedFeatureError{Feature: "window functions"}
	call.log.Warn("per-parent limit requested but unsupported, issuing unlimited batch query",
		"path", path, "reason", featErr.Error())
}

// childCollector accumulates the distinct records a branch linked, for
// subtree recursion, while funneling every fetched row through the shared
// included set.
type childCollector struct {
	loader  *Loader
	ctx     context.Context
	call    *resolveCall
	seen    map[ResourceIdentifier]struct{}
	records []*LinkedRecord
}

func newChildCollector(l *Loader, ctx context.Context, call *resolveCall) *childCollector {
	return &childCollector{loader: l, ctx: ctx, call: call, seen: make(map[ResourceIdentifier]struct{})}
}

// add upserts the row into the included set and returns the canonical record
// for its (type, id). Duplicates reuse the existing entry and count as dedup
// hits; each distinct record is queued once for recursion.
func (c *childCollector) add(typ string, id any, row map[string]any) *LinkedRecord {
	rec, added := c.call.state.included.Upsert(typ, id, row)
	if !added {
		c.loader.metrics.RecordDedupHit(c.ctx)
	}
	key := rec.Identifier()
	if _, ok := c.seen[key]; !ok {
		c.seen[key] = struct{}{}
		c.records = append(c.records, rec)
	}
	return rec
}

type typeGroup struct {
	typ     string
	records []*LinkedRecord
}

// groupRecordsByType splits a mixed-type record set (polymorphic branches)
// into per-type groups, ordered by type name for reproducibility.
func groupRecordsByType(records []*LinkedRecord) []typeGroup {
	byType := make(map[string][]*LinkedRecord)
	for _, rec := range records {
		byType[rec.Type] = append(byType[rec.Type], rec)
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	groups := make([]typeGroup, 0, len(types))
	for _, t := range types {
		groups = append(groups, typeGroup{typ: t, records: byType[t]})
	}
	return groups
}

func attachEmptyMany(parents []*LinkedRecord, name string) {
	for _, p := range parents {
		p.setRelationship(name, RelationshipLink{ToMany: true, Many: []ResourceIdentifier{}})
	}
}

func depthOf(path string) int {
	return strings.Count(path, ".") + 1
}
