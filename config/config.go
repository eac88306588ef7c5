// Package config loads service configuration from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	ConfigPathEnvVar = "CONFIG_PATH"
	EnvPrefix        = "WARDROBE_"
)

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	DB      DBConfig      `koanf:"db"`
	Broker  BrokerConfig  `koanf:"broker"`
	Storage StorageConfig `koanf:"storage"`
	Google  GoogleConfig  `koanf:"google"`
	Weather WeatherConfig `koanf:"weather"`
	Sentry  SentryConfig  `koanf:"sentry"`
	Log     LogConfig     `koanf:"log"`
	Auth    AuthConfig    `koanf:"auth"`
	IDs     IDConfig      `koanf:"ids"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// RateLimit is requests per second per client, 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
}

type DBConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.Username, c.Password, c.Name, c.Port, c.SSLMode)
}

type BrokerConfig struct {
	Addr        string `koanf:"addr"`
	Concurrency int    `koanf:"concurrency"`
}

type StorageConfig struct {
	AccountID       string `koanf:"account_id"`
	AccessKeyID     string `koanf:"access_key_id"`
	AccessKeySecret string `koanf:"access_key_secret"`
	Bucket          string `koanf:"bucket"`
}

type GoogleConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
	// FirebaseCredentials is a service account JSON path. Empty disables pushes.
	FirebaseCredentials string `koanf:"firebase_credentials"`
}

type WeatherConfig struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxRetries   int           `koanf:"max_retries"`
	WarmCities   []string      `koanf:"warm_cities"`
	WarmInterval int           `koanf:"warm_interval_minutes"`
}

type SentryConfig struct {
	DSN         string `koanf:"dsn"`
	Environment string `koanf:"environment"`
	Release     string `koanf:"release"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

type IDConfig struct {
	Node int64 `koanf:"node"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, RateLimit: 20},
		DB:     DBConfig{Host: "localhost", Port: "5432", SSLMode: "disable"},
		Broker: BrokerConfig{Addr: "localhost:6379", Concurrency: 10},
		Google: GoogleConfig{Model: "gemini-2.5-flash"},
		Weather: WeatherConfig{
			BaseURL:      "https://api.openweathermap.org",
			CacheTTL:     10 * time.Minute,
			Timeout:      10 * time.Second,
			MaxRetries:   3,
			WarmCities:   []string{"Taipei"},
			WarmInterval: 15,
		},
		Sentry: SentryConfig{Environment: "development"},
		Log:    LogConfig{Level: "info", Format: "json"},
		IDs:    IDConfig{Node: -1},
	}
}

// legacyEnv maps the unprefixed variable names the deployments already use.
var legacyEnv = map[string]string{
	"db_host":              "db.host",
	"db_port":              "db.port",
	"db_username":          "db.username",
	"db_password":          "db.password",
	"db_name":              "db.name",
	"async_broker_address": "broker.addr",
	"r2_account_id":        "storage.account_id",
	"r2_access_key_id":     "storage.access_key_id",
	"r2_access_key_secret": "storage.access_key_secret",
	"r2_bucket_name":       "storage.bucket",
	"google_api_key":       "google.api_key",
	"openweather_api_key":  "weather.api_key",
	"sentry_dsn":           "sentry.dsn",
	"jwt_secret":           "auth.jwt_secret",
	"log_level":            "log.level",
	"log_format":           "log.format",
	"port":                 "server.port",
	"firebase_credentials": "google.firebase_credentials",
}

// envTransformFunc maps WARDROBE_WEATHER_CACHE_TTL to weather.cache_ttl and
// the legacy names above to their sections. Anything else is ignored.
func envTransformFunc(key string) string {
	if strings.HasPrefix(key, EnvPrefix) {
		rest := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		section, field, ok := strings.Cut(rest, "_")
		if !ok {
			return ""
		}
		return section + "." + field
	}
	return legacyEnv[strings.ToLower(key)]
}

var sliceConfigPaths = []string{"weather.warm_cities"}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads an optional .env file and then layers defaults, config file and
// environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Weather.CacheTTL < 0 {
		errs = append(errs, errors.New("weather.cache_ttl must not be negative"))
	}
	if c.Weather.MaxRetries < 0 {
		errs = append(errs, errors.New("weather.max_retries must not be negative"))
	}
	if c.Weather.WarmInterval < 0 {
		errs = append(errs, errors.New("weather.warm_interval_minutes must not be negative"))
	}
	// -1 means derive the node from the hostname
	if c.IDs.Node < -1 || c.IDs.Node > 1023 {
		errs = append(errs, fmt.Errorf("ids.node %d out of range", c.IDs.Node))
	}
	if c.Broker.Concurrency < 1 {
		errs = append(errs, errors.New("broker.concurrency must be positive"))
	}
	return errors.Join(errs...)
}
