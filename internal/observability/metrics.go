// Package observability holds custom metrics for the relationship resolver.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LoaderMetrics holds custom metrics for batch include loading. All record
// methods are safe on a nil receiver so callers can run without metrics.
type LoaderMetrics struct {
	batchQueries     metric.Int64Counter
	queriesSaved     metric.Int64Counter
	dedupHits        metric.Int64Counter
	branchesSkipped  metric.Int64Counter
	batchParentCount metric.Int64Histogram
	batchResultRows  metric.Int64Histogram
}

// InitLoaderMetrics initializes loader metrics on the ambient meter provider.
func InitLoaderMetrics() (*LoaderMetrics, error) {
	meter := otel.Meter("relgraph")

	batchQueries, err := meter.Int64Counter(
		"loader.batch.queries.total",
		metric.WithDescription("Total number of batch queries issued"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch query counter: %w", err)
	}

	queriesSaved, err := meter.Int64Counter(
		"loader.batch.queries.saved",
		metric.WithDescription("Queries avoided versus one query per parent record"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queries saved counter: %w", err)
	}

	dedupHits, err := meter.Int64Counter(
		"loader.included.dedup.hits",
		metric.WithDescription("Related records already present in the included set"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup hit counter: %w", err)
	}

	branchesSkipped, err := meter.Int64Counter(
		"loader.branches.skipped",
		metric.WithDescription("Include branches skipped due to unknown or misconfigured relationships"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create skipped branch counter: %w", err)
	}

	batchParentCount, err := meter.Int64Histogram(
		"loader.batch.parent.count",
		metric.WithDescription("Distinct parent keys per batch query"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent count histogram: %w", err)
	}

	batchResultRows, err := meter.Int64Histogram(
		"loader.batch.result.rows",
		metric.WithDescription("Rows returned per batch query"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create result rows histogram: %w", err)
	}

	return &LoaderMetrics{
		batchQueries:     batchQueries,
		queriesSaved:     queriesSaved,
		dedupHits:        dedupHits,
		branchesSkipped:  branchesSkipped,
		batchParentCount: batchParentCount,
		batchResultRows:  batchResultRows,
	}, nil
}

func relationAttr(kind string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("relation_type", kind))
}

// RecordBatchQuery counts one issued batch query for a relationship kind.
func (m *LoaderMetrics) RecordBatchQuery(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.batchQueries.Add(ctx, 1, relationAttr(kind))
}

// RecordQueriesSaved counts queries avoided versus the naive per-parent plan.
func (m *LoaderMetrics) RecordQueriesSaved(ctx context.Context, saved int64, kind string) {
	if m == nil || saved <= 0 {
		return
	}
	m.queriesSaved.Add(ctx, saved, relationAttr(kind))
}

// RecordDedupHit counts a related record already present in the included set.
func (m *LoaderMetrics) RecordDedupHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.dedupHits.Add(ctx, 1)
}

// RecordBranchSkipped counts a fail-soft include branch skip.
func (m *LoaderMetrics) RecordBranchSkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.branchesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordBatchParentCount records the distinct parent keys behind one query.
func (m *LoaderMetrics) RecordBatchParentCount(ctx context.Context, count int64, kind string) {
	if m == nil {
		return
	}
	m.batchParentCount.Record(ctx, count, relationAttr(kind))
}

// RecordBatchResultRows records rows returned by one batch query.
func (m *LoaderMetrics) RecordBatchResultRows(ctx context.Context, rows int64, kind string) {
	if m == nil {
		return
	}
	m.batchResultRows.Record(ctx, rows, relationAttr(kind))
}
