// No t.Parallel(): env vars are process-global.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		envKeyConfigFile, envKeyPort, envKeyToken, envKeyHFToken, envKeyServerName, envKeyServerVersion,
		envKeyNominatimURL, envKeyGeocodeAgent, envKeyOpenMeteoURL, envKeyHFInferenceURL,
		envKeyToolTimeout, envKeyLogLevel, envKeyLogFormat, envKeyTLSCertFile, envKeyTLSKeyFile,
		envKeyOTLPEndpoint,
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
	if cfg.TLSEnabled() {
		t.Fatal("TLS should be off by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8443")
	t.Setenv("HF_TOKEN", "hf_abc")
	t.Setenv("TOOL_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TLS_CERT_FILE", "cert.pem")
	t.Setenv("TLS_KEY_FILE", "key.pem")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8443" || cfg.HFToken != "hf_abc" || cfg.ToolTimeout != 5*time.Second {
		t.Fatalf("env not applied: %#v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected lower-cased level, got %q", cfg.LogLevel)
	}
	if !cfg.TLSEnabled() {
		t.Fatal("expected TLS enabled")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "toolbox.yaml")
	body := "port: \"9000\"\nserverName: weather-box\ntoolTimeout: 12s\nlogFormat: json\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOOLBOX_CONFIG", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerName != "weather-box" || cfg.ToolTimeout != 12*time.Second || cfg.LogFormat != "json" {
		t.Fatalf("file not applied: %#v", cfg)
	}
	if cfg.Port != "9100" {
		t.Fatalf("env should win over file, got %q", cfg.Port)
	}
	if cfg.OpenMeteoURL != Defaults().OpenMeteoURL {
		t.Fatalf("defaults lost for unset keys: %q", cfg.OpenMeteoURL)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	t.Setenv("TOOL_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TEST_ENVOR_KEY", "custom-value")
	if got := envOr("TEST_ENVOR_KEY", "fallback"); got != "custom-value" {
		t.Errorf("expected 'custom-value', got %q", got)
	}
	t.Setenv("TEST_ENVOR_KEY", "")
	if got := envOr("TEST_ENVOR_KEY", "fallback"); got != "fallback" {
		t.Errorf("expected 'fallback', got %q", got)
	}
}
