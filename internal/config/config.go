package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPListenAddr     string
	PublicURL          string
	BackendURL         string
	IncidentsEndpoint  string
	TeamsEndpoint      string
	AnnotationEndpoint string
	BackendTimeoutMs   int
	Timezone           string
	LogLevel           string
	LogFormat          string
	ServiceName        string
	CORSOrigins        []string
	MetricsListenAddr  string
	OTLPEndpoint       string
	SessionIdleTimeout time.Duration

	// Client certificate for a backend that requires mutual TLS.
	BackendTLSCert       string
	BackendTLSKey        string
	BackendTLSCACert     string
	BackendTLSServerName string
}

// fileConfig is the optional YAML file named by ALERTBOARD_CONFIG. Its
// values replace the built-in defaults; environment variables still win.
type fileConfig struct {
	HTTPListenAddr     string   `yaml:"http_listen_addr"`
	PublicURL          string   `yaml:"public_url"`
	BackendURL         string   `yaml:"backend_url"`
	IncidentsEndpoint  string   `yaml:"incidents_endpoint"`
	TeamsEndpoint      string   `yaml:"teams_endpoint"`
	AnnotationEndpoint string   `yaml:"annotation_endpoint"`
	BackendTimeoutMs   int      `yaml:"backend_timeout_ms"`
	Timezone           string   `yaml:"timezone"`
	LogLevel           string   `yaml:"log_level"`
	LogFormat          string   `yaml:"log_format"`
	ServiceName        string   `yaml:"service_name"`
	CORSOrigins        []string `yaml:"cors_origins"`
	MetricsListenAddr  string   `yaml:"metrics_listen_addr"`
	OTLPEndpoint       string   `yaml:"otlp_endpoint"`
	SessionIdleTimeout string   `yaml:"session_idle_timeout"`
	BackendTLS         struct {
		Cert       string `yaml:"cert"`
		Key        string `yaml:"key"`
		CACert     string `yaml:"ca_cert"`
		ServerName string `yaml:"server_name"`
	} `yaml:"backend_tls"`
}

func Load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("ALERTBOARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		HTTPListenAddr:       getEnv("HTTP_LISTEN_ADDR", or(file.HTTPListenAddr, ":8080")),
		PublicURL:            getEnv("PUBLIC_URL", or(file.PublicURL, "http://127.0.0.1:8080")),
		BackendURL:           getEnv("BACKEND_URL", or(file.BackendURL, "http://127.0.0.1:5000")),
		IncidentsEndpoint:    getEnv("INCIDENTS_ENDPOINT", or(file.IncidentsEndpoint, "api/v1/incidents")),
		TeamsEndpoint:        getEnv("TEAMS_ENDPOINT", or(file.TeamsEndpoint, "api/v1/teams")),
		AnnotationEndpoint:   getEnv("ANNOTATION_ENDPOINT", or(file.AnnotationEndpoint, "api/v1/incident")),
		Timezone:             getEnv("DASHBOARD_TIMEZONE", or(file.Timezone, "UTC")),
		LogLevel:             getEnv("LOG_LEVEL", or(file.LogLevel, "info")),
		LogFormat:            getEnv("LOG_FORMAT", or(file.LogFormat, "json")),
		ServiceName:          getEnv("SERVICE_NAME", or(file.ServiceName, "alertboard")),
		MetricsListenAddr:    getEnv("METRICS_LISTEN_ADDR", file.MetricsListenAddr),
		OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", file.OTLPEndpoint),
		BackendTLSCert:       getEnv("BACKEND_TLS_CERT", file.BackendTLS.Cert),
		BackendTLSKey:        getEnv("BACKEND_TLS_KEY", file.BackendTLS.Key),
		BackendTLSCACert:     getEnv("BACKEND_TLS_CA_CERT", file.BackendTLS.CACert),
		BackendTLSServerName: getEnv("BACKEND_TLS_SERVER_NAME", file.BackendTLS.ServerName),
		CORSOrigins:          file.CORSOrigins,
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	timeout := file.BackendTimeoutMs
	if timeout == 0 {
		timeout = 30000
	}
	if v := os.Getenv("BACKEND_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("BACKEND_TIMEOUT_MS: %w", err)
		}
		timeout = n
	}
	cfg.BackendTimeoutMs = timeout

	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", or(file.SessionIdleTimeout, "30m")))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT: %w", err)
	}
	cfg.SessionIdleTimeout = idle

	return cfg, nil
}

// Validate checks that the fields a binary needs are set and consistent.
func (c *Config) Validate(binary string) error {
	var missing []string
	require := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	switch binary {
	case "dashboard":
		require("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		require("PUBLIC_URL", c.PublicURL)
		require("BACKEND_URL", c.BackendURL)
	case "alertctl":
		require("PUBLIC_URL", c.PublicURL)
		require("BACKEND_URL", c.BackendURL)
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, fmt.Sprintf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}
	if (c.BackendTLSCert == "") != (c.BackendTLSKey == "") {
		problems = append(problems, "BACKEND_TLS_CERT and BACKEND_TLS_KEY must both be set")
	}
	if c.BackendTimeoutMs <= 0 {
		problems = append(problems, "BACKEND_TIMEOUT_MS must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("DASHBOARD_TIMEZONE: unknown time zone %q", c.Timezone))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed for %s: %s", binary, strings.Join(problems, "; "))
	}
	return nil
}

// BackendTimeout returns the backend HTTP timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMs) * time.Millisecond
}

// Location returns the dashboard time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
