// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Corpus source kinds.
const (
	SourceFile  = "file"
	SourceStore = "store"
)

// Config holds service settings. Load fills it from a YAML file, a .env
// file and FAQ_ prefixed environment variables, in that order.
type Config struct {
	// ServiceName and ServiceVersion are reported by the HTTP root endpoint.
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Debug          bool   `yaml:"debug"`

	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	CORSOrigins     []string `yaml:"cors_origins"`
	CORSCredentials bool     `yaml:"cors_credentials"`
	CORSMethods     []string `yaml:"cors_methods"`
	CORSHeaders     []string `yaml:"cors_headers"`

	// SimilarityThreshold is the score a match must exceed, in [0, 1].
	// Default: 0.3
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// MaxMessageLength caps chat messages, in characters.
	// Default: 1000
	MaxMessageLength int `yaml:"max_message_length"`

	// MaxFeatures caps the TF-IDF vocabulary.
	// Default: 5000
	MaxFeatures int `yaml:"max_features"`

	// FitWorkers tokenizes documents in parallel when greater than 1.
	FitWorkers int `yaml:"fit_workers"`

	DataDir string `yaml:"data_dir"`
	FAQFile string `yaml:"faq_file"`

	// CorpusSource selects where the corpus is read from: "file" reads
	// FAQFilePath, "store" reads entries imported into the store.
	CorpusSource string `yaml:"corpus_source"`

	// StoreDir is the badger directory. Empty keeps the store in memory.
	StoreDir string `yaml:"store_dir"`

	// RecordInteractions stores every answered chat message.
	RecordInteractions bool `yaml:"record_interactions"`

	LogLevel string `yaml:"log_level"`

	// LoadRetryAttempts and LoadRetryDelay control retries of corpus reads.
	LoadRetryAttempts int           `yaml:"load_retry_attempts"`
	LoadRetryDelay    time.Duration `yaml:"load_retry_delay"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithHost sets the listen host.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}

// WithPort sets the listen port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithThreshold sets the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(c *Config) {
		c.SimilarityThreshold = threshold
	}
}

// WithFAQFile points the corpus at path, splitting it into data dir and file name.
func WithFAQFile(path string) Option {
	return func(c *Config) {
		c.DataDir, c.FAQFile = filepath.Split(path)
		if c.DataDir == "" {
			c.DataDir = "."
		}
	}
}

// WithStoreDir sets the badger directory.
func WithStoreDir(dir string) Option {
	return func(c *Config) {
		c.StoreDir = dir
	}
}

// WithCorpusSource selects the corpus source kind.
func WithCorpusSource(kind string) Option {
	return func(c *Config) {
		c.CorpusSource = kind
	}
}

// WithRecordInteractions enables or disables interaction recording.
func WithRecordInteractions(enabled bool) Option {
	return func(c *Config) {
		c.RecordInteractions = enabled
	}
}

// WithLogLevel sets the log level name.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// DefaultConfig returns a Config with the stock service settings.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:         "FAQ Finance Chatbot",
		ServiceVersion:      "1.0.0",
		Host:                "0.0.0.0",
		Port:                8001,
		CORSOrigins:         []string{"http://localhost:3000"},
		CORSCredentials:     true,
		CORSMethods:         []string{"*"},
		CORSHeaders:         []string{"*"},
		SimilarityThreshold: 0.3,
		MaxMessageLength:    1000,
		MaxFeatures:         5000,
		FitWorkers:          1,
		DataDir:             "data",
		FAQFile:             "faq.json",
		CorpusSource:        SourceFile,
		LogLevel:            "INFO",
		LoadRetryAttempts:   1,
		LoadRetryDelay:      100 * time.Millisecond,
	}
}

// NewConfig creates a Config with the default values and applies opts.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	return cfg
}

// Apply applies opts in order.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// FAQFilePath joins DataDir and FAQFile.
func (c *Config) FAQFilePath() string {
	return filepath.Join(c.DataDir, c.FAQFile)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SlogLevel maps LogLevel onto a slog level. Debug forces the debug level;
// unknown names map to info.
func (c *Config) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name such as "debug" or "WARNING" onto a slog
// level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	level, _ := LookupLevel(name)
	return level
}

// LookupLevel is ParseLevel that also reports whether name is known.
func LookupLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "critical":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Normalize puts the configuration in canonical form.
func (c *Config) Normalize() {
	c.CorpusSource = strings.ToLower(strings.TrimSpace(c.CorpusSource))
	if c.CorpusSource == "" {
		c.CorpusSource = SourceFile
	}
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.FitWorkers < 1 {
		c.FitWorkers = 1
	}
	if c.LoadRetryAttempts < 1 {
		c.LoadRetryAttempts = 1
	}
}

// Validate normalizes the configuration and checks it.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 0 and 65535", ErrInvalidConfig)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold must be between 0.0 and 1.0", ErrInvalidConfig)
	}
	if c.MaxMessageLength < 1 {
		return fmt.Errorf("%w: max_message_length must be positive", ErrInvalidConfig)
	}
	if c.MaxFeatures < 1 {
		return fmt.Errorf("%w: max_features must be positive", ErrInvalidConfig)
	}
	if _, ok := LookupLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.LoadRetryDelay < 0 {
		return fmt.Errorf("%w: load_retry_delay cannot be negative", ErrInvalidConfig)
	}
	switch c.CorpusSource {
	case SourceFile:
		if c.FAQFile == "" {
			return fmt.Errorf("%w: faq_file is required", ErrInvalidConfig)
		}
	case SourceStore:
	default:
		return fmt.Errorf("%w: corpus_source must be %q or %q", ErrInvalidConfig, SourceFile, SourceStore)
	}
	return nil
}
