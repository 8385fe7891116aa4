package main

import (
	"context"
	"testing"

	"github.com/and161185/stackdriver-sink/internal/config"
	"github.com/and161185/stackdriver-sink/internal/errs"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun_InvalidSchemaBeforeDial(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.SinkConfig)
		want   error
	}{
		{name: "missing_prefix", mutate: func(c *config.SinkConfig) { c.MetricType = "foo" }, want: errs.ErrInvalidConfig},
		{name: "missing_project", mutate: func(c *config.SinkConfig) { c.Project = "" }, want: errs.ErrInvalidConfig},
		{name: "distribution", mutate: func(c *config.SinkConfig) { c.ValueType = "DISTRIBUTION" }, want: errs.ErrUnsupportedValueType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.SinkConfig{
				Project:    "p",
				MetricType: "custom.googleapis.com/foo",
				MetricKind: "GAUGE",
				ValueType:  "INT64",
				Key:        "value",
				// dialing with this file would fail with a credentials error
				CredentialsFile: "/nonexistent/credentials.json",
				Logger:          zap.NewNop().Sugar(),
			}
			tt.mutate(cfg)

			err := run(context.Background(), cfg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
