// Package sink publishes chunks of log records as Cloud Monitoring points.
//
// A Sink is configured with New, resolves its metric descriptor once in
// Start and then accepts chunks. Every record becomes one single-point
// series sent in its own CreateTimeSeries call. The first failure ends the
// chunk and nothing is retried.
package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/and161185/stackdriver-sink/internal/backend"
	"github.com/and161185/stackdriver-sink/internal/descriptor"
	"github.com/and161185/stackdriver-sink/internal/errs"
	"github.com/and161185/stackdriver-sink/internal/timeseries"
	"github.com/and161185/stackdriver-sink/internal/typedvalue"
	"github.com/and161185/stackdriver-sink/model"
	"go.uber.org/zap"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
)

// Config is what a Sink needs to know before it starts.
type Config struct {
	Project     string
	Schema      model.MetricSchema
	Resource    model.Resource
	CallTimeout time.Duration // per CreateTimeSeries call, zero means none
}

// Sink converts records into points of a single custom metric.
type Sink struct {
	cfg      Config
	client   backend.MetricClient
	resolver *descriptor.Resolver
	resource *monitoredres.MonitoredResource
	logger   *zap.SugaredLogger

	startMu sync.Mutex
	started bool

	mu   sync.RWMutex
	desc *metricpb.MetricDescriptor
}

// New validates cfg and returns a Sink that still has to be started.
func New(cfg Config, client backend.MetricClient, logger *zap.SugaredLogger) (*Sink, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: nil metric client", errs.ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Sink{
		cfg:      cfg,
		client:   client,
		resolver: descriptor.NewResolver(client, cfg.Project, logger),
		resource: timeseries.NewResource(cfg.Resource, cfg.Project),
		logger:   logger,
	}, nil
}

// Validate reports the first problem that keeps cfg from configuring a Sink.
func Validate(cfg Config) error {
	s := cfg.Schema
	if cfg.Project == "" {
		return fmt.Errorf("%w: project is required", errs.ErrInvalidConfig)
	}
	if !backend.IsCustomMetricType(s.Type) {
		return fmt.Errorf("%w: metric type %q must start with %s", errs.ErrInvalidConfig, s.Type, backend.CustomMetricPrefix)
	}
	if s.Key == "" {
		return fmt.Errorf("%w: key is required", errs.ErrInvalidConfig)
	}
	switch s.Kind {
	case metricpb.MetricDescriptor_GAUGE, metricpb.MetricDescriptor_DELTA, metricpb.MetricDescriptor_CUMULATIVE:
	default:
		return fmt.Errorf("%w: metric kind %s", errs.ErrInvalidConfig, s.Kind)
	}
	if !typedvalue.Supported(s.ValueType) {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedValueType, s.ValueType)
	}
	if cfg.CallTimeout < 0 {
		return fmt.Errorf("%w: negative call timeout", errs.ErrInvalidConfig)
	}
	return nil
}

// Start resolves the metric descriptor. It may be called once.
func (s *Sink) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.started {
		return errs.ErrAlreadyStarted
	}
	d, err := s.resolver.Resolve(ctx, s.cfg.Schema)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.desc = d
	s.mu.Unlock()
	s.started = true
	s.logger.Infow("sink started",
		"metric", d.GetType(),
		"kind", d.GetMetricKind().String(),
		"value_type", d.GetValueType().String(),
	)
	return nil
}

// Started reports whether the sink accepts chunks.
func (s *Sink) Started() bool {
	return s.descriptor() != nil
}

// Descriptor returns the resolved descriptor, nil before Start.
func (s *Sink) Descriptor() *metricpb.MetricDescriptor {
	return s.descriptor()
}

// Close stops accepting chunks. A closed sink cannot be started again.
func (s *Sink) Close() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.started = true

	s.mu.Lock()
	s.desc = nil
	s.mu.Unlock()
}

func (s *Sink) descriptor() *metricpb.MetricDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desc
}

// AcceptChunk publishes records in order, one write per record. It returns
// how many records were written. The first failing record stops the chunk;
// the error names its index and tag.
func (s *Sink) AcceptChunk(ctx context.Context, records []model.Record) (int, error) {
	desc := s.descriptor()
	if desc == nil {
		return 0, errs.ErrNotStarted
	}

	parent := backend.ProjectPath(s.cfg.Project)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("record %d (tag %q): %w", i, rec.Tag, err)
		}

		value, err := typedvalue.Coerce(rec.Fields[s.cfg.Schema.Key], desc.GetValueType())
		if err != nil {
			return i, fmt.Errorf("record %d (tag %q): %w", i, rec.Tag, err)
		}

		series := timeseries.Build(desc, s.resource, rec.Time, value)
		s.logger.Debugw("create time series", "time", rec.Time, "value", value)

		if err := s.write(ctx, parent, series); err != nil {
			return i, fmt.Errorf("%w: record %d (tag %q): %w", errs.ErrWrite, i, rec.Tag, err)
		}
	}
	return len(records), nil
}

func (s *Sink) write(ctx context.Context, parent string, series *monitoringpb.TimeSeries) error {
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}
	return s.client.CreateTimeSeries(ctx, &monitoringpb.CreateTimeSeriesRequest{
		Name:       parent,
		TimeSeries: []*monitoringpb.TimeSeries{series},
	}, backend.NoRetry)
}
