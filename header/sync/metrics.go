package sync

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/celestiaorg/headersync/libs/utils"
)

type metrics struct {
	batchDuration   metric.Float64Histogram
	headersFetched  metric.Int64Counter
	fetchFailures   metric.Int64Counter
	syncDuration    metric.Float64Histogram
	syncOutcomes    metric.Int64Counter
	checkpointFails metric.Int64Counter
	storeGaps       metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter("header/sync")
	m := new(metrics)

	var err error
	m.batchDuration, err = meter.Float64Histogram(
		"hdr_sync_batch_time",
		metric.WithDescription("time to receive a batch of headers from a source in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	m.headersFetched, err = meter.Int64Counter(
		"hdr_sync_headers_fetched_counter",
		metric.WithDescription("amount of headers received from sources"),
	)
	if err != nil {
		return nil, err
	}
	m.fetchFailures, err = meter.Int64Counter(
		"hdr_sync_fetch_failures_counter",
		metric.WithDescription("amount of failed calls to sources"),
	)
	if err != nil {
		return nil, err
	}
	m.syncDuration, err = meter.Float64Histogram(
		"hdr_sync_time",
		metric.WithDescription("duration of a whole sync in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	m.syncOutcomes, err = meter.Int64Counter(
		"hdr_sync_outcome_counter",
		metric.WithDescription("amount of finished syncs by their final phase"),
	)
	if err != nil {
		return nil, err
	}
	m.checkpointFails, err = meter.Int64Counter(
		"hdr_sync_checkpoint_failures_counter",
		metric.WithDescription("amount of checkpoints not matched by the longest chain"),
	)
	if err != nil {
		return nil, err
	}
	m.storeGaps, err = meter.Int64Counter(
		"hdr_sync_store_gaps_counter",
		metric.WithDescription("amount of gaps found in assembled header stores"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metrics) observe(ctx context.Context, observeFn func(context.Context)) {
	if m == nil {
		return
	}
	ctx = utils.ResetContextOnError(ctx)
	observeFn(ctx)
}

func (m *metrics) observeBatch(ctx context.Context, source string, n int, d time.Duration) {
	m.observe(ctx, func(ctx context.Context) {
		attrs := metric.WithAttributes(attribute.String("source", source))
		m.batchDuration.Record(ctx, float64(d.Milliseconds()), attrs)
		m.headersFetched.Add(ctx, int64(n), attrs)
	})
}

func (m *metrics) observeFailure(ctx context.Context, source, op string) {
	m.observe(ctx, func(ctx context.Context) {
		m.fetchFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("op", op),
		))
	})
}

func (m *metrics) observeSync(ctx context.Context, phase Phase, d time.Duration) {
	m.observe(ctx, func(ctx context.Context) {
		attrs := metric.WithAttributes(attribute.String("phase", phase.String()))
		m.syncDuration.Record(ctx, d.Seconds(), attrs)
		m.syncOutcomes.Add(ctx, 1, attrs)
	})
}

func (m *metrics) observeCheckpointFailures(ctx context.Context, n int) {
	m.observe(ctx, func(ctx context.Context) {
		m.checkpointFails.Add(ctx, int64(n))
	})
}

func (m *metrics) observeGaps(ctx context.Context, n int) {
	m.observe(ctx, func(ctx context.Context) {
		m.storeGaps.Add(ctx, int64(n))
	})
}
