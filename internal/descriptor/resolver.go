// Package descriptor makes sure the metric descriptor the sink writes to exists.
package descriptor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/and161185/stackdriver-sink/internal/backend"
	"github.com/and161185/stackdriver-sink/internal/errs"
	"github.com/and161185/stackdriver-sink/internal/typedvalue"
	"github.com/and161185/stackdriver-sink/internal/utils"
	"github.com/and161185/stackdriver-sink/model"
	"go.uber.org/zap"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Resolver looks a descriptor up by type and creates it when it is missing.
type Resolver struct {
	client  backend.MetricClient
	project string
	logger  *zap.SugaredLogger
	delays  []time.Duration
}

// NewResolver returns a Resolver for descriptors of project.
func NewResolver(client backend.MetricClient, project string, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		client:  client,
		project: project,
		logger:  logger,
		delays:  utils.DefaultRetryDelays,
	}
}

// Resolve returns the existing descriptor for schema.Type as is. When the
// backend reports it missing, a descriptor built from schema is created and
// the acknowledged one is returned.
func (r *Resolver) Resolve(ctx context.Context, schema model.MetricSchema) (*metricpb.MetricDescriptor, error) {
	name := backend.MetricDescriptorPath(r.project, schema.Type)

	var got *metricpb.MetricDescriptor
	err := utils.WithRetryDelays(ctx, r.delays, func() error {
		var err error
		got, err = r.client.GetMetricDescriptor(ctx, &monitoringpb.GetMetricDescriptorRequest{Name: name}, backend.NoRetry)
		return err
	})
	if err == nil && got == nil {
		err = errors.New("empty response")
	}
	if err == nil {
		r.logger.Infow("succeed to get metric descriptor", "name", got.GetName())
		r.warnDrift(got, schema)
		if err := publishable(got); err != nil {
			return nil, err
		}
		return got, nil
	}
	if status.Code(err) != codes.NotFound {
		return nil, fmt.Errorf("%w: get %s: %w", errs.ErrDescriptorResolution, name, err)
	}

	req := &monitoringpb.CreateMetricDescriptorRequest{
		Name: backend.ProjectPath(r.project),
		MetricDescriptor: &metricpb.MetricDescriptor{
			Type:        schema.Type,
			MetricKind:  schema.Kind,
			ValueType:   schema.ValueType,
			Unit:        schema.Unit,
			Description: schema.Description,
			DisplayName: schema.DisplayName,
		},
	}
	var created *metricpb.MetricDescriptor
	err = utils.WithRetryDelays(ctx, r.delays, func() error {
		var err error
		created, err = r.client.CreateMetricDescriptor(ctx, req, backend.NoRetry)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", errs.ErrDescriptorResolution, schema.Type, err)
	}
	if created == nil {
		return nil, fmt.Errorf("%w: create %s: %w", errs.ErrDescriptorResolution, schema.Type, errors.New("empty response"))
	}

	r.logger.Infow("succeed to create metric descriptor", "name", created.GetName())
	if err := publishable(created); err != nil {
		return nil, err
	}
	return created, nil
}

// publishable fails when points of d's value type cannot be built.
func publishable(d *metricpb.MetricDescriptor) error {
	if vt := d.GetValueType(); !typedvalue.Supported(vt) {
		return fmt.Errorf("%w: %s: %w: %s", errs.ErrDescriptorResolution, d.GetType(), errs.ErrUnsupportedValueType, vt)
	}
	return nil
}

// warnDrift logs when the remote descriptor disagrees with the local schema.
// The remote one still wins.
func (r *Resolver) warnDrift(d *metricpb.MetricDescriptor, schema model.MetricSchema) {
	if d.GetMetricKind() != schema.Kind || d.GetValueType() != schema.ValueType {
		r.logger.Warnw("existing metric descriptor differs from configuration",
			"name", d.GetName(),
			"remote_kind", d.GetMetricKind().String(),
			"remote_value_type", d.GetValueType().String(),
			"local_kind", schema.Kind.String(),
			"local_value_type", schema.ValueType.String(),
		)
	}
}
