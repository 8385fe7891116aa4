// Command forward reads log records and posts them to the sink as one chunk.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/stackdriver-sink/internal/client"
	"github.com/and161185/stackdriver-sink/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewForwardConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.ForwardConfig, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if cfg.Input != "" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	records, err := client.ReadRecords(in)
	if err != nil {
		return err
	}

	resp, err := client.NewClient(cfg).SendChunk(ctx, records)
	if encErr := json.NewEncoder(stdout).Encode(resp); encErr != nil && err == nil {
		err = encErr
	}
	return err
}
