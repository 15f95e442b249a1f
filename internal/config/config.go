// Package config loads server configuration from an optional YAML file and
// environment variables. Every field has a default so the binary runs without
// any setup; the image tool simply reports the missing credential.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port    string `yaml:"port"`    // PORT
	Token   string `yaml:"token"`   // MCP_TOKEN, bearer token for /mcp
	HFToken string `yaml:"hfToken"` // HF_TOKEN, image generation credential

	ServerName    string `yaml:"serverName"`    // SERVER_NAME
	ServerVersion string `yaml:"serverVersion"` // SERVER_VERSION

	NominatimURL   string `yaml:"nominatimURL"`   // NOMINATIM_URL
	GeocodeAgent   string `yaml:"geocodeAgent"`   // GEOCODE_USER_AGENT
	OpenMeteoURL   string `yaml:"openMeteoURL"`   // OPEN_METEO_URL
	HFInferenceURL string `yaml:"hfInferenceURL"` // HF_INFERENCE_URL

	ToolTimeout time.Duration `yaml:"toolTimeout"` // TOOL_TIMEOUT

	LogLevel  string `yaml:"logLevel"`  // LOG_LEVEL
	LogFormat string `yaml:"logFormat"` // LOG_FORMAT

	TLSCertFile string `yaml:"tlsCertFile"` // TLS_CERT_FILE
	TLSKeyFile  string `yaml:"tlsKeyFile"`  // TLS_KEY_FILE

	OTLPEndpoint string `yaml:"otlpEndpoint"` // OTEL_EXPORTER_OTLP_ENDPOINT
}

const (
	envKeyConfigFile     = "TOOLBOX_CONFIG"
	envKeyPort           = "PORT"
	envKeyToken          = "MCP_TOKEN"
	envKeyHFToken        = "HF_TOKEN"
	envKeyServerName     = "SERVER_NAME"
	envKeyServerVersion  = "SERVER_VERSION"
	envKeyNominatimURL   = "NOMINATIM_URL"
	envKeyGeocodeAgent   = "GEOCODE_USER_AGENT"
	envKeyOpenMeteoURL   = "OPEN_METEO_URL"
	envKeyHFInferenceURL = "HF_INFERENCE_URL"
	envKeyToolTimeout    = "TOOL_TIMEOUT"
	envKeyLogLevel       = "LOG_LEVEL"
	envKeyLogFormat      = "LOG_FORMAT"
	envKeyTLSCertFile    = "TLS_CERT_FILE"
	envKeyTLSKeyFile     = "TLS_KEY_FILE"
	envKeyOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:           "3000",
		ServerName:     "toolbox-mcp",
		ServerVersion:  "1.0.0",
		NominatimURL:   "https://nominatim.openstreetmap.org",
		GeocodeAgent:   "MCP-Geocode-Tool/1.0",
		OpenMeteoURL:   "https://api.open-meteo.com",
		HFInferenceURL: "https://router.huggingface.co/hf-inference/models",
		ToolTimeout:    30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads the YAML file at path (or TOOLBOX_CONFIG when path is empty)
// over the defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv(envKeyConfigFile)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr(envKeyPort, cfg.Port)
	cfg.Token = envOr(envKeyToken, cfg.Token)
	cfg.HFToken = envOr(envKeyHFToken, cfg.HFToken)
	cfg.ServerName = envOr(envKeyServerName, cfg.ServerName)
	cfg.ServerVersion = envOr(envKeyServerVersion, cfg.ServerVersion)
	cfg.NominatimURL = envOr(envKeyNominatimURL, cfg.NominatimURL)
	cfg.GeocodeAgent = envOr(envKeyGeocodeAgent, cfg.GeocodeAgent)
	cfg.OpenMeteoURL = envOr(envKeyOpenMeteoURL, cfg.OpenMeteoURL)
	cfg.HFInferenceURL = envOr(envKeyHFInferenceURL, cfg.HFInferenceURL)
	cfg.LogLevel = strings.ToLower(envOr(envKeyLogLevel, cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envOr(envKeyLogFormat, cfg.LogFormat))
	cfg.TLSCertFile = envOr(envKeyTLSCertFile, cfg.TLSCertFile)
	cfg.TLSKeyFile = envOr(envKeyTLSKeyFile, cfg.TLSKeyFile)
	cfg.OTLPEndpoint = envOr(envKeyOTLPEndpoint, cfg.OTLPEndpoint)

	if v := os.Getenv(envKeyToolTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envKeyToolTimeout, err)
		}
		cfg.ToolTimeout = d
	}
	if cfg.ToolTimeout < 0 {
		return Config{}, fmt.Errorf("tool timeout must not be negative")
	}
	return cfg, nil
}

// TLSEnabled reports whether both TLS files are configured.
func (c Config) TLSEnabled() bool { return c.TLSCertFile != "" && c.TLSKeyFile != "" }

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
