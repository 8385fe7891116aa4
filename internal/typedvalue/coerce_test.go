package typedvalue

import (
	"encoding/json"
	"math"
	"testing"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/and161185/stackdriver-sink/internal/errs"
	"github.com/stretchr/testify/require"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
)

func TestCoerceInt64(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    int64
		wantErr bool
	}{
		{"string", "42", 42, false},
		{"string_spaces", " 7 ", 7, false},
		{"string_float_truncates", "4.9", 4, false},
		{"negative_float_truncates", -3.7, -3, false},
		{"int", 12, 12, false},
		{"int8", int8(-5), -5, false},
		{"uint32", uint32(9), 9, false},
		{"json_number", json.Number("100"), 100, false},
		{"json_number_float", json.Number("2.5"), 2, false},
		{"uint64_overflow", uint64(math.MaxUint64), 0, true},
		{"nan", math.NaN(), 0, true},
		{"inf", math.Inf(1), 0, true},
		{"text", "abc", 0, true},
		{"bool", true, 0, true},
		{"nil", nil, 0, true},
		{"map", map[string]any{"a": 1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.raw, metricpb.MetricDescriptor_INT64)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrCoercion)
				require.Nil(t, v)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, v.GetInt64Value())
			require.Equal(t, metricpb.MetricDescriptor_INT64, TypeOf(v))
		})
	}
}

func TestCoerceDouble(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    float64
		wantErr bool
	}{
		{"float", 3.14, 3.14, false},
		{"float32", float32(0.5), 0.5, false},
		{"int", 2, 2, false},
		{"string", "1e3", 1000, false},
		{"json_number", json.Number("-0.25"), -0.25, false},
		{"text", "n/a", 0, true},
		{"bool", false, 0, true},
		{"nil", nil, 0, true},
		{"nan_text", "NaN", 0, true},
		{"inf_text", "Inf", 0, true},
		{"infinity_number", json.Number("-Infinity"), 0, true},
		{"nan_float", math.NaN(), 0, true},
		{"inf_float", math.Inf(1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.raw, metricpb.MetricDescriptor_DOUBLE)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrCoercion)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.want, v.GetDoubleValue(), 1e-9)
			require.Equal(t, metricpb.MetricDescriptor_DOUBLE, TypeOf(v))
		})
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    bool
		wantErr bool
	}{
		{"true", true, true, false},
		{"false", false, false, false},
		{"string_true", "true", true, false},
		{"string_zero", "0", false, false},
		{"string_T", "T", true, false},
		{"int_nonzero", 5, true, false},
		{"float_zero", 0.0, false, false},
		{"json_number", json.Number("1"), true, false},
		{"string_garbage", "maybe", false, true},
		{"nil", nil, false, true},
		{"slice", []any{1}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.raw, metricpb.MetricDescriptor_BOOL)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrCoercion)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, v.GetBoolValue())
			require.Equal(t, metricpb.MetricDescriptor_BOOL, TypeOf(v))
		})
	}
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"string", "hello", "hello"},
		{"nil", nil, ""},
		{"bytes", []byte("raw"), "raw"},
		{"int", 42, "42"},
		{"float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"json_number", json.Number("8"), "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.raw, metricpb.MetricDescriptor_STRING)
			require.NoError(t, err)
			require.Equal(t, tt.want, v.GetStringValue())
			require.Equal(t, metricpb.MetricDescriptor_STRING, TypeOf(v))
		})
	}
}

func TestCoerceUnsupported(t *testing.T) {
	inputs := []any{nil, "1", 1, 1.5, true, map[string]any{}}
	for _, vt := range []metricpb.MetricDescriptor_ValueType{
		metricpb.MetricDescriptor_DISTRIBUTION,
		metricpb.MetricDescriptor_MONEY,
		metricpb.MetricDescriptor_VALUE_TYPE_UNSPECIFIED,
	} {
		require.False(t, Supported(vt), vt.String())
		for _, raw := range inputs {
			_, err := Coerce(raw, vt)
			require.ErrorIs(t, err, errs.ErrUnsupportedValueType, "%s %v", vt, raw)
		}
	}
}

func TestCoerceReturnsFreshValues(t *testing.T) {
	a, err := Coerce("1", metricpb.MetricDescriptor_INT64)
	require.NoError(t, err)
	b, err := Coerce("1", metricpb.MetricDescriptor_INT64)
	require.NoError(t, err)

	require.NotSame(t, a, b)
	require.Equal(t, a.GetInt64Value(), b.GetInt64Value())
}

func TestTypeOfEmpty(t *testing.T) {
	require.Equal(t, metricpb.MetricDescriptor_VALUE_TYPE_UNSPECIFIED, TypeOf(&monitoringpb.TypedValue{}))
	require.Equal(t, metricpb.MetricDescriptor_VALUE_TYPE_UNSPECIFIED, TypeOf(nil))
}
