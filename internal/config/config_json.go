package config

import (
	"encoding/json"
	"os"
)

type sinkJSON struct {
	Address         *string           `json:"address"`
	Project         *string           `json:"project"`
	MetricType      *string           `json:"metric_type"`
	MetricKind      *string           `json:"metric_kind"`
	ValueType       *string           `json:"value_type"`
	Key             *string           `json:"key"`
	Unit            *string           `json:"unit"`
	Description     *string           `json:"description"`
	DisplayName     *string           `json:"display_name"`
	ResourceType    *string           `json:"resource_type"`
	ResourceLabels  map[string]string `json:"resource_labels"`
	HashKey         *string           `json:"hash_key"`
	TrustedSubnet   *string           `json:"trusted_subnet"`
	CallTimeout     *string           `json:"call_timeout"` // "5s"
	CredentialsFile *string           `json:"credentials_file"`
	Endpoint        *string           `json:"endpoint"`
	Insecure        *bool             `json:"insecure"`
	LogLevel        *string           `json:"log_level"`
	LogFile         *string           `json:"log_file"`
}

func loadSinkJSON(path string) (*sinkJSON, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg sinkJSON
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type forwardJSON struct {
	Address *string `json:"address"`
	HashKey *string `json:"hash_key"`
	Timeout *string `json:"timeout"` // "10s"
	Format  *string `json:"format"`
	RealIP  *string `json:"real_ip"`
}

func loadForwardJSON(path string) (*forwardJSON, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg forwardJSON
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
