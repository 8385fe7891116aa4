// Command sink receives chunks of log records over HTTP and publishes them
// as Cloud Monitoring custom metric points.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/stackdriver-sink/internal/backend"
	"github.com/and161185/stackdriver-sink/internal/buildinfo"
	"github.com/and161185/stackdriver-sink/internal/config"
	"github.com/and161185/stackdriver-sink/internal/server"
	"github.com/and161185/stackdriver-sink/internal/sink"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewSinkConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	defer func() { _ = cfg.Logger.Sync() }()

	buildinfo.New(buildVersion, buildDate, buildCommit).Log(cfg.Logger)

	if err := run(ctx, cfg); err != nil {
		cfg.Logger.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.SinkConfig) error {
	schema, err := cfg.Schema()
	if err != nil {
		return err
	}

	cfg.Logger.Infow("sink config",
		"addr", cfg.Addr,
		"project", cfg.Project,
		"metric_type", schema.Type,
		"metric_kind", schema.Kind.String(),
		"value_type", schema.ValueType.String(),
		"key", schema.Key,
		"call_timeout", cfg.CallTimeout,
		"hash_key_set", cfg.HashKey != "",
		"trusted_subnet", cfg.TrustedSubnet,
	)

	sinkCfg := sink.Config{
		Project:     cfg.Project,
		Schema:      schema,
		Resource:    cfg.Resource(),
		CallTimeout: cfg.CallTimeout,
	}
	if err := sink.Validate(sinkCfg); err != nil {
		return err
	}

	client, err := backend.NewClient(ctx, cfg.Backend())
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := sink.New(sinkCfg, client, cfg.Logger)
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Close()

	return server.NewServer(s, cfg).Run(ctx)
}
