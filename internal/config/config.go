// Package config provides the sink configuration and its loaders.
//
// Values are layered: defaults, then command-line flags, then the JSON file
// named by -c/-config or CONFIG for anything not set by a flag, and finally
// environment variables.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/stackdriver-sink/internal/backend"
	"github.com/and161185/stackdriver-sink/model"
	"go.uber.org/zap"
)

// SinkConfig holds the configuration settings for the sink process.
type SinkConfig struct {
	Addr            string // HTTP ingest address
	Project         string // Cloud project id
	MetricType      string // custom.googleapis.com/...
	MetricKind      string // GAUGE, DELTA or CUMULATIVE
	ValueType       string // BOOL, INT64, DOUBLE or STRING
	Key             string // Record field holding the value
	Unit            string
	Description     string
	DisplayName     string
	ResourceType    string            // Monitored resource type, global when empty
	ResourceLabels  map[string]string // Monitored resource labels
	HashKey         string            // Key for HashSHA256 verification
	TrustedSubnet   string            // CIDR, ex. "192.168.1.0/24"
	CallTimeout     time.Duration     // Timeout of one CreateTimeSeries call
	CredentialsFile string            // Service account JSON
	Endpoint        string            // Metric service endpoint override
	Insecure        bool              // Plaintext connection to Endpoint
	LogLevel        string
	LogFile         string

	Logger *zap.SugaredLogger
}

// NewSinkConfig parses the process flags and environment into a SinkConfig.
func NewSinkConfig() (*SinkConfig, error) {
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) (*SinkConfig, error) {
	cfg := &SinkConfig{
		Addr:     "localhost:8080",
		LogLevel: "info",
	}

	var fAddr, fProject, fType, fKind, fValue, fKey, fUnit, fDesc, fDisplay, fRes strFlag
	var fHash, fSubnet, fCreds, fEndpoint, fLevel, fLogFile, fConf strFlag
	var fTimeout durationFlag
	var fInsecure boolFlag

	fs.Var(&fAddr, "a", "HTTP ingest address")
	fs.Var(&fProject, "project", "Cloud project id")
	fs.Var(&fType, "metric-type", "metric type, must start with "+backend.CustomMetricPrefix)
	fs.Var(&fKind, "metric-kind", "GAUGE, DELTA or CUMULATIVE")
	fs.Var(&fValue, "value-type", "BOOL, INT64, DOUBLE or STRING")
	fs.Var(&fKey, "key", "record field holding the value")
	fs.Var(&fUnit, "unit", "metric unit")
	fs.Var(&fDesc, "description", "metric description")
	fs.Var(&fDisplay, "display-name", "metric display name")
	fs.Var(&fRes, "resource-type", "monitored resource type")
	fs.Var(&fHash, "k", "Hash key string")
	fs.Var(&fSubnet, "t", "trusted subnet")
	fs.Var(&fTimeout, "call-timeout", "timeout of one write call")
	fs.Var(&fCreds, "credentials", "path to service account JSON")
	fs.Var(&fEndpoint, "endpoint", "metric service endpoint")
	fs.Var(&fInsecure, "insecure", "plaintext connection to endpoint")
	fs.Var(&fLevel, "log-level", "debug, info, warn or error")
	fs.Var(&fLogFile, "log-file", "additional log file")
	fs.Var(&fConf, "c", "Path to JSON config file")
	fs.Var(&fConf, "config", "Path to JSON config file (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	pick(&cfg.Addr, fAddr)
	pick(&cfg.Project, fProject)
	pick(&cfg.MetricType, fType)
	pick(&cfg.MetricKind, fKind)
	pick(&cfg.ValueType, fValue)
	pick(&cfg.Key, fKey)
	pick(&cfg.Unit, fUnit)
	pick(&cfg.Description, fDesc)
	pick(&cfg.DisplayName, fDisplay)
	pick(&cfg.ResourceType, fRes)
	pick(&cfg.HashKey, fHash)
	pick(&cfg.TrustedSubnet, fSubnet)
	pick(&cfg.CredentialsFile, fCreds)
	pick(&cfg.Endpoint, fEndpoint)
	pick(&cfg.LogLevel, fLevel)
	pick(&cfg.LogFile, fLogFile)
	if fTimeout.set {
		cfg.CallTimeout = fTimeout.v
	}
	if fInsecure.set {
		cfg.Insecure = fInsecure.v
	}

	// JSON fills only what no flag set
	if fConf.v == "" {
		if v := os.Getenv("CONFIG"); v != "" {
			fConf.v = v
		}
	}
	if fConf.v != "" {
		js, err := loadSinkJSON(fConf.v)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", fConf.v, err)
		}
		fill(&cfg.Addr, js.Address, fAddr)
		fill(&cfg.Project, js.Project, fProject)
		fill(&cfg.MetricType, js.MetricType, fType)
		fill(&cfg.MetricKind, js.MetricKind, fKind)
		fill(&cfg.ValueType, js.ValueType, fValue)
		fill(&cfg.Key, js.Key, fKey)
		fill(&cfg.Unit, js.Unit, fUnit)
		fill(&cfg.Description, js.Description, fDesc)
		fill(&cfg.DisplayName, js.DisplayName, fDisplay)
		fill(&cfg.ResourceType, js.ResourceType, fRes)
		fill(&cfg.HashKey, js.HashKey, fHash)
		fill(&cfg.TrustedSubnet, js.TrustedSubnet, fSubnet)
		fill(&cfg.CredentialsFile, js.CredentialsFile, fCreds)
		fill(&cfg.Endpoint, js.Endpoint, fEndpoint)
		fill(&cfg.LogLevel, js.LogLevel, fLevel)
		fill(&cfg.LogFile, js.LogFile, fLogFile)
		if js.CallTimeout != nil && !fTimeout.set {
			d, err := time.ParseDuration(*js.CallTimeout)
			if err != nil {
				return nil, fmt.Errorf("config call_timeout: %w", err)
			}
			cfg.CallTimeout = d
		}
		if js.Insecure != nil && !fInsecure.set {
			cfg.Insecure = *js.Insecure
		}
		if js.ResourceLabels != nil {
			cfg.ResourceLabels = js.ResourceLabels
		}
	}

	readEnvironment(cfg)

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger
	return cfg, nil
}

func pick(dst *string, f strFlag) {
	if f.set {
		*dst = f.v
	}
}

func fill(dst *string, js *string, f strFlag) {
	if js != nil && !f.set {
		*dst = *js
	}
}

func readEnvironment(cfg *SinkConfig) {
	for env, dst := range map[string]*string{
		"ADDRESS":          &cfg.Addr,
		"PROJECT":          &cfg.Project,
		"METRIC_TYPE":      &cfg.MetricType,
		"METRIC_KIND":      &cfg.MetricKind,
		"VALUE_TYPE":       &cfg.ValueType,
		"KEY_FIELD":        &cfg.Key,
		"UNIT":             &cfg.Unit,
		"DESCRIPTION":      &cfg.Description,
		"DISPLAY_NAME":     &cfg.DisplayName,
		"RESOURCE_TYPE":    &cfg.ResourceType,
		"KEY":              &cfg.HashKey,
		"TRUSTED_SUBNET":   &cfg.TrustedSubnet,
		"CREDENTIALS_FILE": &cfg.CredentialsFile,
		"ENDPOINT":         &cfg.Endpoint,
		"LOG_LEVEL":        &cfg.LogLevel,
		"LOG_FILE":         &cfg.LogFile,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("CALL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			cfg.CallTimeout = d
		} else {
			log.Printf("invalid CALL_TIMEOUT env var: %v", err)
		}
	}

	if v := os.Getenv("INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.Insecure = b
		} else {
			log.Printf("invalid INSECURE env var: %v", err)
		}
	}

	if v := os.Getenv("RESOURCE_LABELS"); v != "" {
		labels, err := parseLabels(v)
		if err == nil {
			cfg.ResourceLabels = labels
		} else {
			log.Printf("invalid RESOURCE_LABELS env var: %v", err)
		}
	}
}

// parseLabels reads "k1=v1,k2=v2".
func parseLabels(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad label %q", pair)
		}
		out[k] = v
	}
	return out, nil
}

func newLogger(level, file string) (*zap.SugaredLogger, error) {
	logCfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logCfg.Level = lvl
	logCfg.OutputPaths = []string{"stdout"}
	if file != "" {
		logCfg.OutputPaths = append(logCfg.OutputPaths, file)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Schema converts the metric settings into a model.MetricSchema.
func (c *SinkConfig) Schema() (model.MetricSchema, error) {
	kind, err := model.ParseMetricKind(c.MetricKind)
	if err != nil {
		return model.MetricSchema{}, err
	}
	vt, err := model.ParseValueType(c.ValueType)
	if err != nil {
		return model.MetricSchema{}, err
	}
	return model.MetricSchema{
		Type:        c.MetricType,
		Kind:        kind,
		ValueType:   vt,
		Key:         c.Key,
		Unit:        c.Unit,
		Description: c.Description,
		DisplayName: c.DisplayName,
	}, nil
}

// Resource returns the monitored resource settings.
func (c *SinkConfig) Resource() model.Resource {
	return model.Resource{Type: c.ResourceType, Labels: c.ResourceLabels}
}

// Backend returns the options for dialing the metric service.
func (c *SinkConfig) Backend() backend.Options {
	return backend.Options{
		Endpoint:        c.Endpoint,
		CredentialsFile: c.CredentialsFile,
		Insecure:        c.Insecure,
	}
}
