// Package config loads sbomlens settings from a TOML file, the environment
// and command-line flags.
//
// Sources are layered with viper, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. sbomlens.toml from the config search path, or an explicit file
//  3. SBOMLENS_* environment variables ("cache.dir" is SBOMLENS_CACHE_DIR)
//
// GITHUB_TOKEN is honored as a fallback for github.token.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/pipeline"
)

const (
	appName  = "sbomlens"
	fileName = appName + ".toml"

	// DefaultAddr is where the HTTP API listens by default.
	DefaultAddr = ":8080"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// CacheConfig selects the upstream response cache.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	Dir           string        `mapstructure:"dir"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisURL      string        `mapstructure:"redis_url"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
}

// HTTPConfig tunes outbound requests.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// PipelineConfig sets the pacing of the enrichment stages.
type PipelineConfig struct {
	VulnConcurrency   int           `mapstructure:"vuln_concurrency"`
	VulnPause         time.Duration `mapstructure:"vuln_pause"`
	HealthConcurrency int           `mapstructure:"health_concurrency"`
	HealthPause       time.Duration `mapstructure:"health_pause"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: DefaultAddr},
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			Dir:           CacheDir(),
			TTL:           cache.DefaultTTL,
			MongoDatabase: appName,
		},
		HTTP: HTTPConfig{Timeout: pipeline.DefaultCallTimeout},
		Pipeline: PipelineConfig{
			VulnConcurrency:   pipeline.DefaultVulnConcurrency,
			VulnPause:         pipeline.DefaultVulnPause,
			HealthConcurrency: pipeline.DefaultHealthConcurrency,
			HealthPause:       pipeline.DefaultHealthPause,
		},
	}
}

// Load reads the configuration. If path is empty the search path is used
// and a missing file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		for _, dir := range SearchPath() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", "SBOMLENS_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.mongo_uri", d.Cache.MongoURI)
	v.SetDefault("cache.mongo_database", d.Cache.MongoDatabase)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.retries", d.HTTP.Retries)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("pipeline.vuln_concurrency", d.Pipeline.VulnConcurrency)
	v.SetDefault("pipeline.vuln_pause", d.Pipeline.VulnPause)
	v.SetDefault("pipeline.health_concurrency", d.Pipeline.HealthConcurrency)
	v.SetDefault("pipeline.health_pause", d.Pipeline.HealthPause)
}

var backends = []string{cache.BackendFile, cache.BackendBolt, cache.BackendRedis, cache.BackendMongo, cache.BackendNone}

// Validate checks value ranges and backend requirements.
func (c *Config) Validate() error {
	if !slices.Contains(backends, c.Cache.Backend) {
		return fmt.Errorf("cache.backend: unknown backend %q (want one of %s)", c.Cache.Backend, strings.Join(backends, ", "))
	}
	switch c.Cache.Backend {
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return fmt.Errorf("cache.mongo_uri is required for the mongo backend")
		}
	}
	if c.HTTP.Timeout < 0 || c.Cache.TTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must not be negative")
	}
	if c.Pipeline.VulnConcurrency < 0 || c.Pipeline.HealthConcurrency < 0 {
		return fmt.Errorf("pipeline concurrency must not be negative")
	}
	return nil
}

// =============================================================================
// Conversions
// =============================================================================

// CacheOptions returns the options for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisURL:      c.Cache.RedisURL,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}
}

// SourceOptions returns the upstream client settings.
func (c *Config) SourceOptions() pipeline.SourceOptions {
	return pipeline.SourceOptions{
		GitHubToken: c.GitHub.Token,
		CacheTTL:    c.Cache.TTL,
		Timeout:     c.HTTP.Timeout,
		Retries:     c.HTTP.Retries,
	}
}

// PipelineOptions returns the stage pacing for a pipeline run.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		VulnConcurrency:   c.Pipeline.VulnConcurrency,
		VulnPause:         c.Pipeline.VulnPause,
		HealthConcurrency: c.Pipeline.HealthConcurrency,
		HealthPause:       c.Pipeline.HealthPause,
		CallTimeout:       c.HTTP.Timeout,
	}
}

// =============================================================================
// TOML Encoding
// =============================================================================

// file mirrors Config in its on-disk form; durations are strings.
type file struct {
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
	Cache struct {
		Backend       string `toml:"backend"`
		Dir           string `toml:"dir"`
		TTL           string `toml:"ttl"`
		RedisURL      string `toml:"redis_url"`
		MongoURI      string `toml:"mongo_uri"`
		MongoDatabase string `toml:"mongo_database"`
	} `toml:"cache"`
	HTTP struct {
		Timeout string `toml:"timeout"`
		Retries int    `toml:"retries"`
	} `toml:"http"`
	GitHub struct {
		Token string `toml:"token"`
	} `toml:"github"`
	Pipeline struct {
		VulnConcurrency   int    `toml:"vuln_concurrency"`
		VulnPause         string `toml:"vuln_pause"`
		HealthConcurrency int    `toml:"health_concurrency"`
		HealthPause       string `toml:"health_pause"`
	} `toml:"pipeline"`
}

// Encode writes c as TOML. Secrets are masked unless showSecrets is set.
func (c *Config) Encode(w io.Writer, showSecrets bool) error {
	var f file
	f.Server.Addr = c.Server.Addr
	f.Cache.Backend = c.Cache.Backend
	f.Cache.Dir = c.Cache.Dir
	f.Cache.TTL = c.Cache.TTL.String()
	f.Cache.RedisURL = c.Cache.RedisURL
	f.Cache.MongoURI = c.Cache.MongoURI
	f.Cache.MongoDatabase = c.Cache.MongoDatabase
	f.HTTP.Timeout = c.HTTP.Timeout.String()
	f.HTTP.Retries = c.HTTP.Retries
	f.GitHub.Token = c.GitHub.Token
	if f.GitHub.Token != "" && !showSecrets {
		f.GitHub.Token = "********"
	}
	f.Pipeline.VulnConcurrency = c.Pipeline.VulnConcurrency
	f.Pipeline.VulnPause = c.Pipeline.VulnPause.String()
	f.Pipeline.HealthConcurrency = c.Pipeline.HealthConcurrency
	f.Pipeline.HealthPause = c.Pipeline.HealthPause.String()
	return toml.NewEncoder(w).Encode(f)
}

// WriteFile writes c to path, creating parent directories. An existing
// file is only replaced when overwrite is set.
func (c *Config) WriteFile(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Encode(out, true); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
