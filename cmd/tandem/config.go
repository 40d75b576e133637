package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// serveConfig is the serve command's effective configuration: defaults,
// overlaid by the optional TOML file, overlaid by flags.
type serveConfig struct {
	Addr             string
	PingInterval     time.Duration
	ReadLimit        int64
	MetricsNamespace string
}

func defaultServeConfig() serveConfig {
	return serveConfig{
		Addr:             ":8433",
		PingInterval:     30 * time.Second,
		ReadLimit:        4 * 1024 * 1024,
		MetricsNamespace: "tandem",
	}
}

type fileConfig struct {
	Addr             string `toml:"addr"`
	PingInterval     string `toml:"ping_interval"`
	ReadLimit        int64  `toml:"read_limit"`
	MetricsNamespace string `toml:"metrics_namespace"`
}

// loadServeConfig overlays the TOML file at path onto cfg. Only keys
// present in the file override; absent keys keep their values.
func loadServeConfig(path string, cfg serveConfig) (serveConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serveConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("addr") {
		if addr := strings.TrimSpace(raw.Addr); addr != "" {
			cfg.Addr = addr
		}
	}

	if meta.IsDefined("ping_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PingInterval))
		if err != nil {
			return serveConfig{}, fmt.Errorf("parse ping_interval: %w", err)
		}
		cfg.PingInterval = d
	}

	if meta.IsDefined("read_limit") {
		if raw.ReadLimit <= 0 {
			return serveConfig{}, fmt.Errorf("read_limit must be positive, got %d", raw.ReadLimit)
		}
		cfg.ReadLimit = raw.ReadLimit
	}

	if meta.IsDefined("metrics_namespace") {
		if ns := strings.TrimSpace(raw.MetricsNamespace); ns != "" {
			cfg.MetricsNamespace = ns
		}
	}

	return cfg, nil
}
