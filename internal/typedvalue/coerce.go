// Package typedvalue converts raw record fields into Cloud Monitoring typed values.
package typedvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/and161185/stackdriver-sink/internal/errs"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
)

// Supported reports whether Coerce can produce values of the given type.
func Supported(vt metricpb.MetricDescriptor_ValueType) bool {
	switch vt {
	case metricpb.MetricDescriptor_BOOL,
		metricpb.MetricDescriptor_INT64,
		metricpb.MetricDescriptor_DOUBLE,
		metricpb.MetricDescriptor_STRING:
		return true
	}
	return false
}

// Coerce converts raw into a freshly allocated TypedValue of type vt.
// A nil raw value is only accepted for STRING, where it becomes "".
func Coerce(raw any, vt metricpb.MetricDescriptor_ValueType) (*monitoringpb.TypedValue, error) {
	switch vt {
	case metricpb.MetricDescriptor_BOOL:
		b, err := toBool(raw)
		if err != nil {
			return nil, err
		}
		return &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_BoolValue{BoolValue: b}}, nil
	case metricpb.MetricDescriptor_INT64:
		i, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		return &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_Int64Value{Int64Value: i}}, nil
	case metricpb.MetricDescriptor_DOUBLE:
		f, err := toDouble(raw)
		if err != nil {
			return nil, err
		}
		return &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: f}}, nil
	case metricpb.MetricDescriptor_STRING:
		return &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_StringValue{StringValue: toString(raw)}}, nil
	}
	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedValueType, vt)
}

// TypeOf returns the value type tag carried by v.
func TypeOf(v *monitoringpb.TypedValue) metricpb.MetricDescriptor_ValueType {
	switch v.GetValue().(type) {
	case *monitoringpb.TypedValue_BoolValue:
		return metricpb.MetricDescriptor_BOOL
	case *monitoringpb.TypedValue_Int64Value:
		return metricpb.MetricDescriptor_INT64
	case *monitoringpb.TypedValue_DoubleValue:
		return metricpb.MetricDescriptor_DOUBLE
	case *monitoringpb.TypedValue_StringValue:
		return metricpb.MetricDescriptor_STRING
	case *monitoringpb.TypedValue_DistributionValue:
		return metricpb.MetricDescriptor_DISTRIBUTION
	}
	return metricpb.MetricDescriptor_VALUE_TYPE_UNSPECIFIED
}

func coercionError(raw any, vt metricpb.MetricDescriptor_ValueType) error {
	if raw == nil {
		return fmt.Errorf("%w: missing value for %s", errs.ErrCoercion, vt)
	}
	return fmt.Errorf("%w: cannot convert %T %v to %s", errs.ErrCoercion, raw, raw, vt)
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, coercionError(raw, metricpb.MetricDescriptor_BOOL)
		}
		return b, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return false, coercionError(raw, metricpb.MetricDescriptor_BOOL)
		}
		return f != 0, nil
	}
	if f, ok := asFloat(raw); ok {
		return f != 0, nil
	}
	return false, coercionError(raw, metricpb.MetricDescriptor_BOOL)
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v), raw)
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v, raw)
	case float32:
		return truncate(float64(v), raw)
	case float64:
		return truncate(v, raw)
	case json.Number:
		return parseInt64(string(v), raw)
	case string:
		return parseInt64(v, raw)
	}
	return 0, coercionError(raw, metricpb.MetricDescriptor_INT64)
}

func parseInt64(s string, raw any) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, coercionError(raw, metricpb.MetricDescriptor_INT64)
	}
	return truncate(f, raw)
}

func uintToInt64(u uint64, raw any) (int64, error) {
	if u > math.MaxInt64 {
		return 0, coercionError(raw, metricpb.MetricDescriptor_INT64)
	}
	return int64(u), nil
}

// truncate drops the fractional part, rejecting values outside int64.
func truncate(f float64, raw any) (int64, error) {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, coercionError(raw, metricpb.MetricDescriptor_INT64)
	}
	return int64(math.Trunc(f)), nil
}

func toDouble(raw any) (float64, error) {
	var (
		f  float64
		ok bool
	)
	switch v := raw.(type) {
	case json.Number:
		var err error
		f, err = v.Float64()
		ok = err == nil
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		ok = err == nil
	default:
		f, ok = asFloat(raw)
	}
	// NaN and infinities are not publishable points
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, coercionError(raw, metricpb.MetricDescriptor_DOUBLE)
	}
	return f, nil
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func toString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(raw)
}
