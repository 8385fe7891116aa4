// Package timeseries turns one coerced value into a single-point series.
package timeseries

import (
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/and161185/stackdriver-sink/model"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// GlobalResource is the monitored resource type used when none is configured.
const GlobalResource = "global"

// NewResource builds the monitored resource series are attributed to. An empty
// type means global, and a global resource gets project_id when it is not set.
func NewResource(r model.Resource, project string) *monitoredres.MonitoredResource {
	typ := r.Type
	if typ == "" {
		typ = GlobalResource
	}
	labels := make(map[string]string, len(r.Labels)+1)
	for k, v := range r.Labels {
		labels[k] = v
	}
	if _, ok := labels["project_id"]; !ok && typ == GlobalResource && project != "" {
		labels["project_id"] = project
	}
	return &monitoredres.MonitoredResource{Type: typ, Labels: labels}
}

// Build returns a new series for desc holding value at ts (Unix seconds).
// The interval is a single instant and the series has exactly one point.
// Metric type, kind and value type come from desc. resource is copied.
func Build(desc *metricpb.MetricDescriptor, resource *monitoredres.MonitoredResource, ts int64, value *monitoringpb.TypedValue) *monitoringpb.TimeSeries {
	at := time.Unix(ts, 0)

	var res *monitoredres.MonitoredResource
	if resource != nil {
		res = proto.Clone(resource).(*monitoredres.MonitoredResource)
	}

	return &monitoringpb.TimeSeries{
		Metric:     &metricpb.Metric{Type: desc.GetType()},
		Resource:   res,
		MetricKind: desc.GetMetricKind(),
		ValueType:  desc.GetValueType(),
		Points: []*monitoringpb.Point{{
			Interval: &monitoringpb.TimeInterval{
				StartTime: timestamppb.New(at),
				EndTime:   timestamppb.New(at),
			},
			Value: proto.Clone(value).(*monitoringpb.TypedValue),
		}},
	}
}
