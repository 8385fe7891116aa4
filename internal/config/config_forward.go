package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Chunk body formats the forwarder can send.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// ForwardConfig holds the configuration settings for the chunk forwarder.
type ForwardConfig struct {
	ServerAddr string        // Sink address, must include http(s)://
	HashKey    string        // Key for HashSHA256 signing
	Timeout    time.Duration // HTTP client timeout
	Format     string        // json or msgpack
	RealIP     string        // X-Real-IP value, detected when empty
	Input      string        // Records file, stdin when empty
}

// NewForwardConfig parses the process flags and environment into a ForwardConfig.
func NewForwardConfig() (*ForwardConfig, error) {
	return parseForward(flag.CommandLine, os.Args[1:])
}

func parseForward(fs *flag.FlagSet, args []string) (*ForwardConfig, error) {
	cfg := &ForwardConfig{
		ServerAddr: "http://localhost:8080",
		Timeout:    10 * time.Second,
		Format:     FormatJSON,
	}

	var fAddr, fKey, fFormat, fIP, fInput, fConf strFlag
	var fTO durationFlag
	fs.Var(&fAddr, "a", "HTTP server address (must include http(s)://)")
	fs.Var(&fKey, "k", "Hash key string")
	fs.Var(&fTO, "t", "client timeout")
	fs.Var(&fFormat, "format", "chunk format: json or msgpack")
	fs.Var(&fIP, "real-ip", "X-Real-IP header value")
	fs.Var(&fInput, "f", "records file, stdin when empty")
	fs.Var(&fConf, "c", "Path to JSON config file")
	fs.Var(&fConf, "config", "Path to JSON config file (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	pick(&cfg.ServerAddr, fAddr)
	pick(&cfg.HashKey, fKey)
	pick(&cfg.Format, fFormat)
	pick(&cfg.RealIP, fIP)
	pick(&cfg.Input, fInput)
	if fTO.set {
		cfg.Timeout = fTO.v
	}

	if fConf.v == "" {
		if v := os.Getenv("CONFIG"); v != "" {
			fConf.v = v
		}
	}
	if fConf.v != "" {
		js, err := loadForwardJSON(fConf.v)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", fConf.v, err)
		}
		fill(&cfg.ServerAddr, js.Address, fAddr)
		fill(&cfg.HashKey, js.HashKey, fKey)
		fill(&cfg.Format, js.Format, fFormat)
		fill(&cfg.RealIP, js.RealIP, fIP)
		if js.Timeout != nil && !fTO.set {
			d, err := time.ParseDuration(*js.Timeout)
			if err != nil {
				return nil, fmt.Errorf("config timeout: %w", err)
			}
			cfg.Timeout = d
		}
	}

	readForwardEnvironment(cfg)

	if !strings.HasPrefix(cfg.ServerAddr, "http://") && !strings.HasPrefix(cfg.ServerAddr, "https://") {
		cfg.ServerAddr = "http://" + cfg.ServerAddr
	}
	switch cfg.Format {
	case FormatJSON, FormatMsgpack:
	default:
		return nil, fmt.Errorf("unknown format %q", cfg.Format)
	}
	return cfg, nil
}

func readForwardEnvironment(cfg *ForwardConfig) {
	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.ServerAddr = addr
	}
	if key := os.Getenv("KEY"); key != "" {
		cfg.HashKey = key
	}
	if format := os.Getenv("FORMAT"); format != "" {
		cfg.Format = format
	}
	if ip := os.Getenv("REAL_IP"); ip != "" {
		cfg.RealIP = ip
	}
	if v := os.Getenv("CLIENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			cfg.Timeout = d
		} else {
			log.Printf("invalid CLIENT_TIMEOUT env var: %v", err)
		}
	}
}
