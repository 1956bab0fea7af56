package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultEnvironment      = "local"
	defaultRegionsPath      = "assets/data/regions.json"
	defaultServiceAreaPath  = "config/service_area.yaml"
	defaultMapWidth         = 975
	defaultMapHeight        = 610
	defaultPublishPrefix    = "maps"
	defaultPublishCacheCtrl = "public, max-age=300"
)

var defaultLocales = []string{"en", "es"}

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	// ProjectID is the Google Cloud project used to link logs to traces.
	ProjectID string
	Server      ServerConfig
	Map         MapConfig
	Publish     PublishConfig
	Locales     []string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	// BaseURL is the public origin used for canonical and og:image links.
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// MapConfig locates the boundary table and the page-level map settings.
type MapConfig struct {
	RegionsPath     string
	ServiceAreaPath string
	Width           int
	Height          int
	ShowLabels      bool
}

// PublishConfig controls where generated artifacts are uploaded.
type PublishConfig struct {
	Bucket          string
	Prefix          string
	CacheControl    string
	CredentialsFile string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides and
// environment variables, in increasing precedence, then an explicit map.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Environment: stringWithDefault(lookup, "DECA_WEB_ENV", defaultEnvironment),
		ProjectID:   stringWithDefault(lookup, "DECA_WEB_GCP_PROJECT", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "DECA_WEB_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			BaseURL:      strings.TrimRight(stringWithDefault(lookup, "DECA_WEB_BASE_URL", ""), "/"),
			ReadTimeout:  durationWithDefault(lookup, "DECA_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "DECA_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "DECA_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Map: MapConfig{
			RegionsPath:     stringWithDefault(lookup, "DECA_WEB_REGIONS_PATH", defaultRegionsPath),
			ServiceAreaPath: stringWithDefault(lookup, "DECA_WEB_SERVICE_AREA_PATH", defaultServiceAreaPath),
			Width:           intWithDefault(lookup, "DECA_WEB_MAP_WIDTH", defaultMapWidth),
			Height:          intWithDefault(lookup, "DECA_WEB_MAP_HEIGHT", defaultMapHeight),
			ShowLabels:      boolWithDefault(lookup, "DECA_WEB_MAP_SHOW_LABELS", true),
		},
		Publish: PublishConfig{
			Bucket:          stringWithDefault(lookup, "DECA_MAP_BUCKET", ""),
			Prefix:          stringWithDefault(lookup, "DECA_MAP_PREFIX", defaultPublishPrefix),
			CacheControl:    stringWithDefault(lookup, "DECA_MAP_CACHE_CONTROL", defaultPublishCacheCtrl),
			CredentialsFile: stringWithDefault(lookup, "DECA_MAP_CREDENTIALS_FILE", ""),
		},
		Locales: csvWithDefault(lookup, "DECA_WEB_LOCALES", defaultLocales),
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	} else if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Map.RegionsPath) == "" {
		missing = append(missing, "Map.RegionsPath")
	}
	if cfg.Map.Width <= 0 {
		missing = append(missing, "Map.Width")
	}
	if cfg.Map.Height <= 0 {
		missing = append(missing, "Map.Height")
	}
	if len(cfg.Locales) == 0 {
		missing = append(missing, "Locales")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		out := make([]string, len(fallback))
		copy(out, fallback)
		return out
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
