package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/and161185/stackdriver-sink/internal/errs"
	"github.com/stretchr/testify/require"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("sink", flag.ContinueOnError)
}

func writeJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sink.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(newFlagSet(), nil)
	require.NoError(t, err)
	require.Equal(t, "localhost:8080", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Zero(t, cfg.CallTimeout)
	require.NotNil(t, cfg.Logger)
}

func TestParse_Flags(t *testing.T) {
	cfg, err := parse(newFlagSet(), []string{
		"-a", ":9090",
		"-project", "p",
		"-metric-type", "custom.googleapis.com/foo",
		"-metric-kind", "gauge",
		"-value-type", "INT64",
		"-key", "value",
		"-k", "secret",
		"-t", "10.0.0.0/8",
		"-call-timeout", "2s",
		"-insecure",
		"-endpoint", "localhost:8085",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "p", cfg.Project)
	require.Equal(t, "custom.googleapis.com/foo", cfg.MetricType)
	require.Equal(t, "value", cfg.Key)
	require.Equal(t, "secret", cfg.HashKey)
	require.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
	require.Equal(t, 2*time.Second, cfg.CallTimeout)
	require.True(t, cfg.Insecure)

	schema, err := cfg.Schema()
	require.NoError(t, err)
	require.Equal(t, metricpb.MetricDescriptor_GAUGE, schema.Kind)
	require.Equal(t, metricpb.MetricDescriptor_INT64, schema.ValueType)

	opts := cfg.Backend()
	require.Equal(t, "localhost:8085", opts.Endpoint)
	require.True(t, opts.Insecure)
}

func TestParse_JSONFillsUnsetFlags(t *testing.T) {
	path := writeJSON(t, `{
		"address": ":7070",
		"project": "from-json",
		"metric_type": "custom.googleapis.com/json",
		"metric_kind": "CUMULATIVE",
		"value_type": "DOUBLE",
		"key": "latency",
		"display_name": "Request latency",
		"resource_type": "gce_instance",
		"resource_labels": {"zone": "europe-west1-b"},
		"call_timeout": "500ms"
	}`)

	cfg, err := parse(newFlagSet(), []string{"-c", path, "-project", "from-flag"})
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Addr)
	require.Equal(t, "from-flag", cfg.Project)
	require.Equal(t, "custom.googleapis.com/json", cfg.MetricType)
	require.Equal(t, 500*time.Millisecond, cfg.CallTimeout)

	res := cfg.Resource()
	require.Equal(t, "gce_instance", res.Type)
	require.Equal(t, map[string]string{"zone": "europe-west1-b"}, res.Labels)

	schema, err := cfg.Schema()
	require.NoError(t, err)
	require.Equal(t, metricpb.MetricDescriptor_CUMULATIVE, schema.Kind)
	require.Equal(t, metricpb.MetricDescriptor_DOUBLE, schema.ValueType)
	require.Equal(t, "latency", schema.Key)
	require.Equal(t, "Request latency", schema.DisplayName)
}

func TestParse_DisplayName(t *testing.T) {
	cfg, err := parse(newFlagSet(), []string{"-display-name", "From flag"})
	require.NoError(t, err)
	require.Equal(t, "From flag", cfg.DisplayName)

	t.Setenv("DISPLAY_NAME", "From env")
	cfg, err = parse(newFlagSet(), []string{"-display-name", "From flag"})
	require.NoError(t, err)
	require.Equal(t, "From env", cfg.DisplayName)
}

func TestParse_ConfigFromEnv(t *testing.T) {
	path := writeJSON(t, `{"project": "env-file"}`)
	t.Setenv("CONFIG", path)

	cfg, err := parse(newFlagSet(), nil)
	require.NoError(t, err)
	require.Equal(t, "env-file", cfg.Project)
}

func TestParse_EnvironmentWins(t *testing.T) {
	path := writeJSON(t, `{"project": "json", "metric_kind": "DELTA"}`)
	t.Setenv("PROJECT", "env")
	t.Setenv("ADDRESS", "0.0.0.0:1")
	t.Setenv("KEY", "hash")
	t.Setenv("KEY_FIELD", "count")
	t.Setenv("CALL_TIMEOUT", "3s")
	t.Setenv("RESOURCE_LABELS", "a=1, b=2")

	cfg, err := parse(newFlagSet(), []string{"-config", path, "-project", "flag"})
	require.NoError(t, err)
	require.Equal(t, "env", cfg.Project)
	require.Equal(t, "0.0.0.0:1", cfg.Addr)
	require.Equal(t, "hash", cfg.HashKey)
	require.Equal(t, "count", cfg.Key)
	require.Equal(t, "DELTA", cfg.MetricKind)
	require.Equal(t, 3*time.Second, cfg.CallTimeout)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, cfg.ResourceLabels)
}

func TestParse_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("CALL_TIMEOUT", "soon")
	t.Setenv("INSECURE", "maybe")

	cfg, err := parse(newFlagSet(), []string{"-call-timeout", "1s"})
	require.NoError(t, err)
	require.Equal(t, time.Second, cfg.CallTimeout)
	require.False(t, cfg.Insecure)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing_file", []string{"-c", filepath.Join(t.TempDir(), "none.json")}},
		{"bad_json", []string{"-c", writeJSON(t, `{`)}},
		{"bad_json_timeout", []string{"-c", writeJSON(t, `{"call_timeout": "x"}`)}},
		{"bad_flag_timeout", []string{"-call-timeout", "x"}},
		{"bad_log_level", []string{"-log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFlagSet()
			fs.SetOutput(io.Discard)
			_, err := parse(fs, tt.args)
			require.Error(t, err)
		})
	}
}

func TestSchema_Invalid(t *testing.T) {
	cfg := &SinkConfig{MetricKind: "SOMETIMES", ValueType: "INT64"}
	_, err := cfg.Schema()
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	cfg = &SinkConfig{MetricKind: "GAUGE", ValueType: ""}
	_, err = cfg.Schema()
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestParseLabels(t *testing.T) {
	got, err := parseLabels("project_id=p,zone=z")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"project_id": "p", "zone": "z"}, got)

	_, err = parseLabels("novalue")
	require.Error(t, err)
}
