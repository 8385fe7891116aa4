// Package model contains core data types for the project.
package model

import (
	"fmt"
	"strings"

	"github.com/and161185/stackdriver-sink/internal/errs"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
)

// MetricSchema describes the custom metric the sink publishes to.
type MetricSchema struct {
	Type        string                               // Metric type, e.g. custom.googleapis.com/foo.
	Kind        metricpb.MetricDescriptor_MetricKind // GAUGE, DELTA or CUMULATIVE.
	ValueType   metricpb.MetricDescriptor_ValueType  // BOOL, INT64, DOUBLE or STRING.
	Key         string                               // Record field holding the value.
	Unit        string                               // Optional unit, e.g. "ms" or "1".
	Description string                               // Optional descriptor description.
	DisplayName string                               // Optional descriptor display name.
}

// Record is a single tagged event delivered by the pipeline.
type Record struct {
	Tag    string         `json:"tag"`
	Time   int64          `json:"time"` // Unix seconds.
	Fields map[string]any `json:"record"`
}

// Resource is the monitored resource every point is attributed to.
type Resource struct {
	Type   string
	Labels map[string]string
}

// ParseMetricKind maps a configured kind name onto the descriptor enum.
func ParseMetricKind(s string) (metricpb.MetricDescriptor_MetricKind, error) {
	switch k := metricpb.MetricDescriptor_MetricKind(metricpb.MetricDescriptor_MetricKind_value[strings.ToUpper(s)]); k {
	case metricpb.MetricDescriptor_GAUGE, metricpb.MetricDescriptor_DELTA, metricpb.MetricDescriptor_CUMULATIVE:
		return k, nil
	}
	return metricpb.MetricDescriptor_METRIC_KIND_UNSPECIFIED, fmt.Errorf("%w: unknown metric kind %q", errs.ErrInvalidConfig, s)
}

// ParseValueType maps a configured value type name onto the descriptor enum.
// Names the backend knows but the sink cannot publish (DISTRIBUTION, MONEY)
// parse successfully and are rejected when the sink is configured.
func ParseValueType(s string) (metricpb.MetricDescriptor_ValueType, error) {
	v, ok := metricpb.MetricDescriptor_ValueType_value[strings.ToUpper(s)]
	if !ok || v == int32(metricpb.MetricDescriptor_VALUE_TYPE_UNSPECIFIED) {
		return metricpb.MetricDescriptor_VALUE_TYPE_UNSPECIFIED, fmt.Errorf("%w: unknown value type %q", errs.ErrInvalidConfig, s)
	}
	return metricpb.MetricDescriptor_ValueType(v), nil
}

// ChunkResponse is what the ingest server answers to a chunk.
type ChunkResponse struct {
	Published int    `json:"published"`       // Records written before any failure.
	Error     string `json:"error,omitempty"` // Failure description, empty on success.
}
