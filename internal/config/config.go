package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// EnvSolanaRPCURL selects the Solana RPC endpoint and wins over the config file.
	EnvSolanaRPCURL = "SOLANA_RPC_URL"

	DefaultSolanaRPCURL = "https://api.mainnet-beta.solana.com"
	DefaultCommitment   = "confirmed"

	DefaultRequestTimeoutMillis int64 = 15000
)

// Config holds the overall configuration for the application.
type Config struct {
	Solana        SolanaConfig                 `yaml:"solana"`
	DEX           map[string]DEXEndpointConfig `yaml:"dex"`
	HTTPClient    HTTPClientConfig             `yaml:"httpClient"`
	ProviderCache ProviderCacheConfig          `yaml:"providerCache"`
	Logging       LoggingConfig                `yaml:"logging"`
	Diagnostics   DiagnosticsConfig            `yaml:"diagnostics"`
}

// SolanaConfig holds the blockchain RPC settings.
type SolanaConfig struct {
	RPCURL     string `yaml:"rpcURL"`
	Commitment string `yaml:"commitment"`
}

// DEXEndpointConfig overrides the built-in endpoints of a DEX provider.
type DEXEndpointConfig struct {
	PairsURL string `yaml:"pairsURL"`
	PoolsURL string `yaml:"poolsURL"`
}

// HTTPClientConfig holds the DEX REST client settings.
type HTTPClientConfig struct {
	// RequestTimeoutMillis defaults to 15000 when absent. An explicit 0 disables the timeout.
	RequestTimeoutMillis *int64 `yaml:"requestTimeoutMillis"`
	UserAgent            string `yaml:"userAgent"`
}

// RequestTimeout returns the per-request timeout, zero meaning none.
func (h HTTPClientConfig) RequestTimeout() time.Duration {
	if h.RequestTimeoutMillis == nil || *h.RequestTimeoutMillis <= 0 {
		return 0
	}
	return time.Duration(*h.RequestTimeoutMillis) * time.Millisecond
}

// ProviderCacheConfig controls the optional provider response cache. A zero TTL disables it.
type ProviderCacheConfig struct {
	TTLSeconds             int `yaml:"ttlSeconds"`
	CleanupIntervalSeconds int `yaml:"cleanupIntervalSeconds"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
}

// DiagnosticsConfig controls the optional HTTP diagnostics server.
type DiagnosticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

var log = newLoaderLogger()

func newLoaderLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return l
}

// SetLoaderLevel adjusts the verbosity of the loader's own diagnostics.
func SetLoaderLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid loader log level %q, keeping %s", level, log.GetLevel())
		return
	}
	log.SetLevel(parsed)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment
// without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debugf("No env file at %s, skipping", p)
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
		log.Infof("Loaded environment from %s", p)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file. A missing file is not an error when
// optional is true; defaults and environment overrides are applied either way.
func LoadConfig(path string, optional bool) (*Config, error) {
	var cfg Config

	if path != "" {
		log.Infof("Loading configuration from path: %s", path)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				log.Errorf("Failed to unmarshal config data from %s: %v", path, err)
				return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && optional:
			log.Infof("Config file %s not found, using defaults", path)
		default:
			log.Errorf("Failed to read config file %s: %v", path, err)
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// Порядок важен: переменные окружения перекрывают файл, затем дефолты
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvSolanaRPCURL)); v != "" {
		c.Solana.RPCURL = v
		log.Infof("%s set, using RPC endpoint from environment", EnvSolanaRPCURL)
	}
}

func (c *Config) applyDefaults() {
	if c.Solana.RPCURL == "" {
		c.Solana.RPCURL = DefaultSolanaRPCURL
		log.Infof("Solana.RPCURL not set, defaulting to %s", c.Solana.RPCURL)
	}
	if c.Solana.Commitment == "" {
		c.Solana.Commitment = DefaultCommitment
	}
	if c.HTTPClient.RequestTimeoutMillis == nil {
		timeout := DefaultRequestTimeoutMillis
		c.HTTPClient.RequestTimeoutMillis = &timeout
		log.Debugf("HTTPClient.RequestTimeoutMillis not set, defaulting to %d ms", timeout)
	} else if *c.HTTPClient.RequestTimeoutMillis <= 0 {
		log.Infof("HTTPClient.RequestTimeoutMillis is %d, provider requests run without a timeout", *c.HTTPClient.RequestTimeoutMillis)
	}
	if c.HTTPClient.UserAgent == "" {
		c.HTTPClient.UserAgent = "solana-pairs-liquidity-mcp/1.0"
	}
	if c.ProviderCache.TTLSeconds > 0 && c.ProviderCache.CleanupIntervalSeconds <= 0 {
		c.ProviderCache.CleanupIntervalSeconds = c.ProviderCache.TTLSeconds * 2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Diagnostics.Enabled && c.Diagnostics.Listen == "" {
		c.Diagnostics.Listen = "127.0.0.1:9464"
		log.Infof("Diagnostics.Listen not set, defaulting to %s", c.Diagnostics.Listen)
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Solana.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("unsupported solana commitment %q", c.Solana.Commitment)
	}
	if c.ProviderCache.TTLSeconds < 0 {
		return fmt.Errorf("providerCache.ttlSeconds must not be negative, got %d", c.ProviderCache.TTLSeconds)
	}
	for name := range c.DEX {
		switch strings.ToLower(name) {
		case "raydium", "orca", "jupiter":
		default:
			log.Warnf("Ignoring endpoint override for unknown DEX '%s'", name)
		}
	}
	return nil
}
