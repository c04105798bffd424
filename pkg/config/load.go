package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, applies defaults and LOOKUP_* environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Unparseable values are ignored.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("LOOKUP_URL"); val != "" {
		cfg.Lookup.URL = val
	}
	if val := os.Getenv("LOOKUP_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Lookup.Port = i
		}
	}
	if val, ok := os.LookupEnv("LOOKUP_AUTHORIZATION"); ok {
		cfg.Lookup.Authorization = val
	}
	if val := os.Getenv("LOOKUP_REQUESTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Lookup.Requests = i
		}
	}
	if val := os.Getenv("LOOKUP_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Lookup.Limit = i
		}
	}
	if val := os.Getenv("LOOKUP_ENGINE"); val != "" {
		cfg.Lookup.Engine = val
	}
	if val := os.Getenv("LOOKUP_ADMISSION"); val != "" {
		cfg.Lookup.Admission = val
	}

	if val := os.Getenv("LOOKUP_RETRY_MAX_ATTEMPTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retry.MaxAttempts = &i
		}
	}
	if val := os.Getenv("LOOKUP_RETRY_INITIAL_BACKOFF"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retry.InitialBackoff = d
		}
	}

	if val := os.Getenv("LOOKUP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Transport.Timeout = d
		}
	}
	if val := os.Getenv("LOOKUP_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Transport.Rate = f
		}
	}

	if val := os.Getenv("LOOKUP_REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv("LOOKUP_REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("LOOKUP_REDIS_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Redis.TTL = d
		}
	}

	if val := os.Getenv("LOOKUP_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("LOOKUP_LOG_PRETTY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.Pretty = b
		}
	}

	if val := os.Getenv("LOOKUP_METRICS_ADDR"); val != "" {
		cfg.Metrics.Addr = val
	}
}
