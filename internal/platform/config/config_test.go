package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Environment != "local" {
		t.Errorf("expected local environment, got %s", cfg.Environment)
	}
	if cfg.Map.RegionsPath != defaultRegionsPath {
		t.Errorf("unexpected regions path: %s", cfg.Map.RegionsPath)
	}
	if cfg.Map.Width != 975 || cfg.Map.Height != 610 {
		t.Errorf("unexpected map size: %dx%d", cfg.Map.Width, cfg.Map.Height)
	}
	if !cfg.Map.ShowLabels {
		t.Errorf("expected labels on by default")
	}
	if !reflect.DeepEqual(cfg.Locales, []string{"en", "es"}) {
		t.Errorf("unexpected locales: %v", cfg.Locales)
	}
	if cfg.Publish.Prefix != "maps" || cfg.Publish.Bucket != "" {
		t.Errorf("unexpected publish defaults: %+v", cfg.Publish)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"DECA_WEB_ENV":              "prod",
		"GOOGLE_CLOUD_PROJECT":      "deca-web-prod",
		"DECA_WEB_PORT":             "9090",
		"DECA_WEB_BASE_URL":         "https://www.decawindows.com/",
		"DECA_WEB_READ_TIMEOUT":     "20s",
		"DECA_WEB_WRITE_TIMEOUT":    "not-a-duration",
		"DECA_WEB_REGIONS_PATH":     "/srv/regions.json",
		"DECA_WEB_MAP_WIDTH":        "640",
		"DECA_WEB_MAP_HEIGHT":       "400",
		"DECA_WEB_MAP_SHOW_LABELS":  "off",
		"DECA_WEB_LOCALES":          " es , en ,",
		"DECA_MAP_BUCKET":           "deca-site-assets",
		"DECA_MAP_CACHE_CONTROL":    "no-cache",
		"DECA_MAP_CREDENTIALS_FILE": "/secrets/sa.json",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ProjectID != "deca-web-prod" {
		t.Errorf("expected project from GOOGLE_CLOUD_PROJECT, got %s", cfg.ProjectID)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "https://www.decawindows.com" {
		t.Errorf("base URL should lose its trailing slash, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != defaultWriteTimeout {
		t.Errorf("invalid duration should fall back, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Map.RegionsPath != "/srv/regions.json" {
		t.Errorf("unexpected regions path: %s", cfg.Map.RegionsPath)
	}
	if cfg.Map.Width != 640 || cfg.Map.Height != 400 {
		t.Errorf("unexpected map size: %dx%d", cfg.Map.Width, cfg.Map.Height)
	}
	if cfg.Map.ShowLabels {
		t.Errorf("expected labels disabled")
	}
	if !reflect.DeepEqual(cfg.Locales, []string{"es", "en"}) {
		t.Errorf("unexpected locales: %v", cfg.Locales)
	}
	if cfg.Publish.Bucket != "deca-site-assets" || cfg.Publish.CacheControl != "no-cache" {
		t.Errorf("unexpected publish config: %+v", cfg.Publish)
	}
	if cfg.Publish.CredentialsFile != "/secrets/sa.json" {
		t.Errorf("unexpected credentials file: %s", cfg.Publish.CredentialsFile)
	}
}

func TestLoadDotEnvFallback(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# local overrides\nDECA_WEB_PORT=7070\nexport DECA_MAP_BUCKET=\"dev-bucket\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(context.Background(), WithEnvFile(envPath), WithoutSystemEnv(),
		WithEnvMap(map[string]string{"DECA_WEB_PORT": "6060"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "6060" {
		t.Errorf("explicit map should win over .env, got %s", cfg.Server.Port)
	}
	if cfg.Publish.Bucket != "dev-bucket" {
		t.Errorf("expected bucket from .env, got %s", cfg.Publish.Bucket)
	}
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(context.Background(), WithEnvFile(filepath.Join(t.TempDir(), "absent.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	env := map[string]string{
		"DECA_WEB_PORT":       "http",
		"DECA_WEB_MAP_WIDTH":  "-1",
		"DECA_WEB_MAP_HEIGHT": "0",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"Server.Port", "Map.Width", "Map.Height"}
	if !reflect.DeepEqual(vErr.Fields(), want) {
		t.Errorf("unexpected fields: %v", vErr.Fields())
	}
}
