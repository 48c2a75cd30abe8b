package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds all application configuration loaded from config.json.
type Config struct {
	ListenAddr         string
	LogLevel           string
	LogFormat          string
	StrictArguments    bool
	Stateless          bool
	JSONResponse       bool
	CORSAllowedOrigins []string
	MetricsEnabled     bool
	ShutdownTimeout    time.Duration
}

// jsonConfig is an intermediate struct for JSON unmarshalling.
// Pointer types distinguish "missing" (nil) from the zero value.
type jsonConfig struct {
	ListenAddr         string   `json:"listen_addr"`
	LogLevel           string   `json:"log_level"`
	LogFormat          string   `json:"log_format"`
	StrictArguments    *bool    `json:"strict_arguments"`
	Stateless          *bool    `json:"stateless"`
	JSONResponse       *bool    `json:"json_response"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
	MetricsEnabled     *bool    `json:"metrics_enabled"`
	ShutdownTimeoutSec *int     `json:"shutdown_timeout_sec"`
}

// DefaultListenAddr is used when listen_addr is not configured.
const DefaultListenAddr = "localhost:8000"

// userHomeDir is a package-level variable to allow overriding in tests.
var userHomeDir = os.UserHomeDir

// readFile is a package-level variable to allow overriding in tests.
var readFile = os.ReadFile

// Path returns the location of the config file.
func Path() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".rickroller", "config.json"), nil
}

// Load reads configuration from ~/.rickroller/config.json and returns a Config.
// A missing file yields the defaults.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}

	var jc jsonConfig
	data, err := readFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		standardJSON, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if err := json.Unmarshal(standardJSON, &jc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:         stringDefault(jc.ListenAddr, DefaultListenAddr),
		LogLevel:           stringDefault(jc.LogLevel, "info"),
		LogFormat:          stringDefault(jc.LogFormat, "text"),
		StrictArguments:    boolPtrDefault(jc.StrictArguments, false),
		Stateless:          boolPtrDefault(jc.Stateless, true),
		JSONResponse:       boolPtrDefault(jc.JSONResponse, false),
		CORSAllowedOrigins: jc.CORSAllowedOrigins,
		MetricsEnabled:     boolPtrDefault(jc.MetricsEnabled, true),
		ShutdownTimeout:    time.Duration(intPtrDefault(jc.ShutdownTimeoutSec, 10)) * time.Second,
	}
	if cfg.CORSAllowedOrigins == nil {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback.
func (c *Config) Validate() error {
	var invalid []string
	if c.ShutdownTimeout <= 0 {
		invalid = append(invalid, "shutdown_timeout_sec")
	}
	if c.ListenAddr == "" {
		invalid = append(invalid, "listen_addr")
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid config fields: %v", invalid)
	}
	return nil
}

func stringDefault(val, def string) string {
	if val != "" {
		return val
	}
	return def
}

func intPtrDefault(val *int, def int) int {
	if val != nil {
		return *val
	}
	return def
}

func boolPtrDefault(val *bool, def bool) bool {
	if val != nil {
		return *val
	}
	return def
}
