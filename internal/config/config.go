// Package config loads the CLI profile and the service settings.
//
// The profile (~/.config/talklike/config.yaml) holds user defaults for the
// CLI and can be overridden by TALKLIKE_* variables, with a double
// underscore for nesting (TALKLIKE_CACHE__TTL=2h). Long-running commands
// read their settings from the environment into [Service].
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	kenv "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/matzehuels/talklike/pkg/cache"
)

// EnvPrefix prefixes every talklike environment variable.
const EnvPrefix = "TALKLIKE_"

// Profile is the CLI configuration.
type Profile struct {
	// FiltersDirs are searched before the built-in filters, first match wins.
	FiltersDirs []string `koanf:"filters_dir"`
	// RemoteURL is an optional HTTP catalog searched after the directories.
	RemoteURL string `koanf:"remote_base_url"`
	// DefaultFilter is used by `talklike interactive` without an argument.
	DefaultFilter string `koanf:"default_filter"`

	Cache CacheProfile `koanf:"cache"`
	Log   LogProfile   `koanf:"log"`
}

// CacheProfile configures the CLI cache. TTL applies to definitions
// fetched from the remote catalog.
type CacheProfile struct {
	Disabled bool          `koanf:"disabled"`
	Dir      string        `koanf:"dir"`
	TTL      time.Duration `koanf:"ttl"`
}

// LogProfile configures the CLI logger.
type LogProfile struct {
	Level string `koanf:"level"`
}

// DefaultProfile returns the built-in defaults.
func DefaultProfile() Profile {
	return Profile{
		DefaultFilter: "pirate",
		Cache:         CacheProfile{TTL: cache.TTLDefinition},
		Log:           LogProfile{Level: "info"},
	}
}

// ProfilePath returns $XDG_CONFIG_HOME/talklike/config.yaml, falling back
// to ~/.config.
func ProfilePath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "talklike", "config.yaml"), nil
}

// LoadProfile merges the defaults, the YAML file at path (if it exists)
// and TALKLIKE_* variables, in that order.
func LoadProfile(path string) (Profile, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return Profile{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(kenv.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return Profile{}, fmt.Errorf("load environment: %w", err)
	}

	p := DefaultProfile()
	if err := k.Unmarshal("", &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.Cache.TTL < 0 {
		return Profile{}, fmt.Errorf("cache.ttl must not be negative")
	}
	return p, nil
}

// envValue maps TALKLIKE_CACHE__TTL to cache.ttl. Service variables such
// as TALKLIKE_HTTP_ADDR are not profile keys and are dropped.
func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	switch key {
	case "filters_dir":
		return key, filepath.SplitList(value)
	case "remote_base_url", "default_filter", "cache.disabled", "cache.dir", "cache.ttl", "log.level":
		return key, value
	}
	return "", nil
}

// Service configures `talklike serve`, `stream` and `mcp`. Flags override
// these values.
type Service struct {
	HTTPAddr        string        `env:"TALKLIKE_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr        string        `env:"TALKLIKE_GRPC_ADDR" envDefault:":9090"`
	ShutdownTimeout time.Duration `env:"TALKLIKE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Metrics         bool          `env:"TALKLIKE_METRICS" envDefault:"true"`
	Watch           bool          `env:"TALKLIKE_WATCH"`

	CacheSize   int    `env:"TALKLIKE_CACHE_SIZE" envDefault:"10000"`
	RedisAddr   string `env:"TALKLIKE_REDIS_ADDR"`
	RedisURL    string `env:"TALKLIKE_REDIS_URL"`
	RedisPrefix string `env:"TALKLIKE_REDIS_PREFIX" envDefault:"talklike"`

	MongoURI        string `env:"TALKLIKE_MONGO_URI"`
	MongoDatabase   string `env:"TALKLIKE_MONGO_DATABASE" envDefault:"talklike"`
	MongoCollection string `env:"TALKLIKE_MONGO_COLLECTION" envDefault:"filters"`

	KafkaBrokers   []string `env:"TALKLIKE_KAFKA_BROKERS" envSeparator:","`
	KafkaGroup     string   `env:"TALKLIKE_KAFKA_GROUP" envDefault:"talklike"`
	KafkaTopics    []string `env:"TALKLIKE_KAFKA_TOPICS" envSeparator:","`
	KafkaOutput    string   `env:"TALKLIKE_KAFKA_OUTPUT"`
	KafkaVersion   string   `env:"TALKLIKE_KAFKA_VERSION"`
	KafkaStartFrom string   `env:"TALKLIKE_KAFKA_START_FROM" envDefault:"newest"`

	OTelEndpoint string `env:"TALKLIKE_OTEL_ENDPOINT"`
}

// LoadService parses the service settings from the environment.
func LoadService() (Service, error) {
	var s Service
	if err := env.Parse(&s); err != nil {
		return Service{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}
