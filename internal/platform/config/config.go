// Package config loads runtime configuration from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. INNBOT_HTTP_ADDR.
const EnvPrefix = "INNBOT"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Tracing exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config is the full runtime configuration.
type Config struct {
	Environment string         `mapstructure:"environment"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
	DaData      DaDataConfig   `mapstructure:"dadata"`
	Lookup      LookupConfig   `mapstructure:"lookup"`
	Retry       RetryConfig    `mapstructure:"retry"`
	Breaker     BreakerConfig  `mapstructure:"breaker"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
	Log         LogConfig      `mapstructure:"log"`
}

// HTTPConfig captures HTTP server level configuration.
type HTTPConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// TelegramConfig configures the chat front end. An empty token disables it.
type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	Workers     int           `mapstructure:"workers"`
	Debug       bool          `mapstructure:"debug"`
}

// DaDataConfig configures the primary registry provider and an optional
// fallback endpoint speaking the same protocol.
type DaDataConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	FallbackURL string        `mapstructure:"fallback_url"`
}

// LookupConfig bounds a single end-to-end lookup.
type LookupConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// RetryConfig is the per-provider backoff policy.
type RetryConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
}

// BreakerConfig is the per-provider circuit breaker policy.
type BreakerConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
}

// CacheConfig selects the reply cache.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig configures the Redis client used by the redis cache backend.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TracingConfig selects the span exporter. Endpoint is the OTLP gRPC
// collector address.
type TracingConfig struct {
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

// LogConfig sets the minimum log level (debug, info, warn, error).
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Environment: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			RequestTimeout:    10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Telegram: TelegramConfig{
			PollTimeout: 60 * time.Second,
			Workers:     8,
		},
		DaData: DaDataConfig{
			BaseURL: "https://suggestions.dadata.ru/suggestions/api/4_1/rs",
			Timeout: 5 * time.Second,
		},
		Lookup: LookupConfig{
			Timeout: 5 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries:   2,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     time.Second,
			Multiplier:   2.0,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Cooldown:         30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     5 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Tracing: TracingConfig{
			Exporter:    ExporterNone,
			Endpoint:    "localhost:4317",
			SampleRate:  1.0,
			ServiceName: "innbot",
		},
		Log:     LogConfig{Level: "info"},
	}
}

// SetDefaults registers every default on v so that environment overrides
// apply to keys that appear in no config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("environment", d.Environment)

	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.read_header_timeout", d.HTTP.ReadHeaderTimeout)
	v.SetDefault("http.request_timeout", d.HTTP.RequestTimeout)
	v.SetDefault("http.shutdown_timeout", d.HTTP.ShutdownTimeout)

	v.SetDefault("telegram.token", d.Telegram.Token)
	v.SetDefault("telegram.poll_timeout", d.Telegram.PollTimeout)
	v.SetDefault("telegram.workers", d.Telegram.Workers)
	v.SetDefault("telegram.debug", d.Telegram.Debug)

	v.SetDefault("dadata.base_url", d.DaData.BaseURL)
	v.SetDefault("dadata.api_key", d.DaData.APIKey)
	v.SetDefault("dadata.timeout", d.DaData.Timeout)
	v.SetDefault("dadata.fallback_url", d.DaData.FallbackURL)

	v.SetDefault("lookup.timeout", d.Lookup.Timeout)

	v.SetDefault("retry.max_retries", d.Retry.MaxRetries)
	v.SetDefault("retry.initial_delay", d.Retry.InitialDelay)
	v.SetDefault("retry.max_delay", d.Retry.MaxDelay)
	v.SetDefault("retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("breaker.failure_threshold", d.Breaker.FailureThreshold)
	v.SetDefault("breaker.success_threshold", d.Breaker.SuccessThreshold)
	v.SetDefault("breaker.cooldown", d.Breaker.Cooldown)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("redis.url", d.Redis.URL)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", d.Redis.MinIdleConns)
	v.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", d.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", d.Redis.WriteTimeout)

	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
}

// BindEnv enables INNBOT_* overrides for every key and the bare secret names
// deployments already export.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return fmt.Errorf("bind telegram token: %w", err)
	}
	if err := v.BindEnv("dadata.api_key", EnvPrefix+"_DADATA_API_KEY", "DADATA_API_KEY"); err != nil {
		return fmt.Errorf("bind dadata api key: %w", err)
	}
	return nil
}

// Load reads configFile (when non-empty) and the environment into a Config.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return Config{}, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required when cache.backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	if c.Cache.Backend != CacheNone && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}

	switch c.Tracing.Exporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint is required for the otlp exporter"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown tracing.exporter %q", c.Tracing.Exporter))
	}

	if c.DaData.BaseURL == "" {
		errs = append(errs, errors.New("dadata.base_url is required"))
	}
	for name, d := range map[string]time.Duration{
		"dadata.timeout":           c.DaData.Timeout,
		"lookup.timeout":           c.Lookup.Timeout,
		"http.read_header_timeout": c.HTTP.ReadHeaderTimeout,
		"http.request_timeout":     c.HTTP.RequestTimeout,
		"http.shutdown_timeout":    c.HTTP.ShutdownTimeout,
		"telegram.poll_timeout":    c.Telegram.PollTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Telegram.Workers <= 0 {
		errs = append(errs, errors.New("telegram.workers must be positive"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry.multiplier must be at least 1"))
	}

	return errors.Join(errs...)
}
