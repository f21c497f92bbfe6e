// Package config resolves the harness settings from defaults, a YAML file, a .env file, and
// the process environment. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "http://jsonplaceholder.typicode.com"
	DefaultEnvFile = ".env"

	EnvBaseURL         = "REST_BASE_URL"
	EnvTimeoutSeconds  = "REST_TIMEOUT_SECONDS"
	EnvContinueOnError = "CONTINUE_ON_ERROR"
)

// Config is the resolved configuration.
type Config struct {
	BaseURL            string            `yaml:"baseURL"`
	Headers            map[string]string `yaml:"headers"`
	TimeoutSeconds     int               `yaml:"timeoutSeconds"`
	InsecureSkipVerify bool              `yaml:"insecureSkipVerify"`
	Session            bool              `yaml:"session"`
	ContinueOnError    bool              `yaml:"continueOnError"`
}

// LoadOptions says where to look for settings.
type LoadOptions struct {
	// ConfigFile is an optional YAML file. It is an error if it is set but cannot be read.
	ConfigFile string

	// EnvFile is a dotenv file. A missing file is ignored. Defaults to ".env".
	EnvFile string

	// Lookup reads the process environment. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

func Defaults() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Headers:         map[string]string{"Accept": "application/json"},
		ContinueOnError: true,
	}
}

// Load resolves the configuration. Later sources override earlier ones: defaults, then the
// YAML file, then the .env file, then the environment.
func Load(opts LoadOptions) (Config, error) {
	cfg := Defaults()

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return cfg, fmt.Errorf("cannot read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config file %s: %w", opts.ConfigFile, err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("invalid env file %s: %w", envFile, err)
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		if v, ok := lookup(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}

	if v, ok := get(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := get(EnvTimeoutSeconds); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTimeoutSeconds, err)
		}
		cfg.TimeoutSeconds = n
	}
	if v, ok := get(EnvContinueOnError); ok && v != "" {
		b, err := ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvContinueOnError, err)
		}
		cfg.ContinueOnError = b
	}

	return cfg, cfg.Validate()
}

// Validate checks that the configuration can be used.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", c.BaseURL)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// ParseBool accepts 1/0, true/false, yes/no, and on/off, in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean value: %q", s)
}
