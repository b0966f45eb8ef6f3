package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "FAQ_"

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), a .env file in the working directory if one exists, and
// FAQ_ prefixed environment variables. Later sources win. Variables already
// set in the environment take precedence over .env.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrInvalidConfig, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envBinding struct {
	name string
	set  func(c *Config, value string) error
}

func stringVar(name string, field func(*Config) *string) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		*field(c) = v
		return nil
	}}
}

func intVar(name string, field func(*Config) *int) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}}
}

func floatVar(name string, field func(*Config) *float64) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}}
}

func boolVar(name string, field func(*Config) *bool) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}}
}

func durationVar(name string, field func(*Config) *time.Duration) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}}
}

// listVar accepts a YAML/JSON flow sequence or a comma separated list.
func listVar(name string, field func(*Config) *[]string) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		v = strings.TrimSpace(v)
		var items []string
		if strings.HasPrefix(v, "[") {
			if err := yaml.Unmarshal([]byte(v), &items); err != nil {
				return err
			}
		} else {
			for item := range strings.SplitSeq(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
		}
		*field(c) = items
		return nil
	}}
}

var envBindings = []envBinding{
	stringVar("SERVICE_NAME", func(c *Config) *string { return &c.ServiceName }),
	stringVar("SERVICE_VERSION", func(c *Config) *string { return &c.ServiceVersion }),
	boolVar("DEBUG", func(c *Config) *bool { return &c.Debug }),
	stringVar("HOST", func(c *Config) *string { return &c.Host }),
	intVar("PORT", func(c *Config) *int { return &c.Port }),
	listVar("CORS_ORIGINS", func(c *Config) *[]string { return &c.CORSOrigins }),
	boolVar("CORS_CREDENTIALS", func(c *Config) *bool { return &c.CORSCredentials }),
	listVar("CORS_METHODS", func(c *Config) *[]string { return &c.CORSMethods }),
	listVar("CORS_HEADERS", func(c *Config) *[]string { return &c.CORSHeaders }),
	floatVar("SIMILARITY_THRESHOLD", func(c *Config) *float64 { return &c.SimilarityThreshold }),
	intVar("MAX_MESSAGE_LENGTH", func(c *Config) *int { return &c.MaxMessageLength }),
	intVar("MAX_FEATURES", func(c *Config) *int { return &c.MaxFeatures }),
	intVar("FIT_WORKERS", func(c *Config) *int { return &c.FitWorkers }),
	stringVar("DATA_DIR", func(c *Config) *string { return &c.DataDir }),
	stringVar("FAQ_FILE", func(c *Config) *string { return &c.FAQFile }),
	stringVar("CORPUS_SOURCE", func(c *Config) *string { return &c.CorpusSource }),
	stringVar("STORE_DIR", func(c *Config) *string { return &c.StoreDir }),
	boolVar("RECORD_INTERACTIONS", func(c *Config) *bool { return &c.RecordInteractions }),
	stringVar("LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }),
	intVar("LOAD_RETRY_ATTEMPTS", func(c *Config) *int { return &c.LoadRetryAttempts }),
	durationVar("LOAD_RETRY_DELAY", func(c *Config) *time.Duration { return &c.LoadRetryDelay }),
}

// applyEnv overlays FAQ_ variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		key := EnvPrefix + b.name
		value, ok := lookup(key)
		if !ok {
			continue
		}
		if err := b.set(c, value); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidEnv, key, value, err)
		}
	}
	return nil
}
