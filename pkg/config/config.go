// Package config loads the service configuration from an optional .yaml or
// .toml file, merged over defaults. Endpoints can still be overridden by
// environment variables in main.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig captures configuration for the server, collaborators and facet
// labels.
type AppConfig struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Redis   RedisConfig   `toml:"redis" yaml:"redis"`
	Rabbit  RabbitConfig  `toml:"rabbit" yaml:"rabbit"`
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	Search  SearchConfig  `toml:"search" yaml:"search"`
	Labels  LabelsConfig  `toml:"labels" yaml:"labels"`
}

// ServerConfig controls network settings.
type ServerConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

// RedisConfig points at the response cache. Empty Addr disables caching.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

// RabbitConfig points at the course-change broker. Empty Url disables
// replication and tracking.
type RabbitConfig struct {
	Url   string `toml:"url" yaml:"url"`
	VHost string `toml:"vhost" yaml:"vhost"`
}

// StorageConfig configures the on-disk snapshot.
type StorageConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// SearchConfig bounds query execution.
type SearchConfig struct {
	MaxRunsPerCourse int `toml:"max_runs_per_course" yaml:"max_runs_per_course"`
	CacheTTLSeconds  int `toml:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
}

// CacheTTL is the response cache expiry as a duration.
func (s SearchConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// LabelsConfig carries human-readable facet names, keyed by dimension and
// by dimension/value.
type LabelsConfig struct {
	Dimensions map[string]string            `toml:"dimensions" yaml:"dimensions"`
	Values     map[string]map[string]string `toml:"values" yaml:"values"`
}

// Default returns the baseline configuration used when no file is supplied.
func Default() AppConfig {
	return AppConfig{
		Server:  ServerConfig{Listen: ":8080"},
		Storage: StorageConfig{Path: "data"},
		Search: SearchConfig{
			MaxRunsPerCourse: 512,
			CacheTTLSeconds:  60,
		},
	}
}

// Load reads the provided config path, merging it onto the defaults.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	var fileCfg AppConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return AppConfig{}, errors.New("config file must be .toml, .yaml, or .yml")
	}

	return merge(cfg, fileCfg), nil
}

func merge(base, override AppConfig) AppConfig {
	if override.Server.Listen != "" {
		base.Server.Listen = override.Server.Listen
	}
	if override.Redis.Addr != "" {
		base.Redis = override.Redis
	}
	if override.Rabbit.Url != "" {
		base.Rabbit = override.Rabbit
	}
	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}
	if override.Search.MaxRunsPerCourse > 0 {
		base.Search.MaxRunsPerCourse = override.Search.MaxRunsPerCourse
	}
	if override.Search.CacheTTLSeconds > 0 {
		base.Search.CacheTTLSeconds = override.Search.CacheTTLSeconds
	}
	if len(override.Labels.Dimensions) > 0 || len(override.Labels.Values) > 0 {
		base.Labels = override.Labels
	}
	return base
}
