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


package faqmatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqmatch/config"
	"github.com/poiesic/faqmatch/knowledge"
	"github.com/poiesic/faqmatch/matching"
	"github.com/poiesic/faqmatch/search"
	"github.com/poiesic/faqmatch/storage"
	"github.com/poiesic/faqmatch/storage/badger"
	"github.com/poiesic/faqmatch/vectorize"
)

type Engine struct {
	cfg             *config.Config
	backend         *badger.Backend
	entryRepo       storage.EntryRepository
	interactionRepo storage.InteractionRepository
	kb              *knowledge.Base
	service         *matching.Service
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	logger  *slog.Logger
	source  knowledge.Source
	monitor search.Monitor
}

// WithLogger sets the logger handed to every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSource replaces the corpus source chosen by the config.
func WithSource(source knowledge.Source) Option {
	return func(o *engineOptions) {
		o.source = source
	}
}

// WithMonitor observes every query the service answers.
func WithMonitor(monitor search.Monitor) Option {
	return func(o *engineOptions) {
		o.monitor = monitor
	}
}

// Open validates cfg and builds an Engine. A nil cfg means
// config.DefaultConfig(). The service is not initialized.
func Open(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	backend, err := badger.OpenBackend(cfg.StoreDir, cfg.StoreDir == "")
	if err != nil {
		return nil, err
	}

	entryRepo := badger.NewEntryRepository(backend)

	interactionRepo, err := badger.NewInteractionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	source := options.source
	if source == nil {
		source = sourceFor(cfg, entryRepo)
	}

	kb, err := knowledge.New(source,
		knowledge.WithRetry(cfg.LoadRetryAttempts, cfg.LoadRetryDelay),
		knowledge.WithLogger(logger))
	if err != nil {
		interactionRepo.Close()
		backend.Close()
		return nil, err
	}

	vectorizer, err := vectorize.New(
		vectorize.WithMaxFeatures(cfg.MaxFeatures),
		vectorize.WithWorkers(cfg.FitWorkers),
		vectorize.WithLogger(logger))
	if err != nil {
		interactionRepo.Close()
		backend.Close()
		return nil, err
	}

	service, err := matching.New(kb,
		matching.WithThreshold(cfg.SimilarityThreshold),
		matching.WithVectorizer(vectorizer),
		matching.WithMonitor(options.monitor),
		matching.WithLogger(logger))
	if err != nil {
		interactionRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		cfg:             cfg,
		backend:         backend,
		entryRepo:       entryRepo,
		interactionRepo: interactionRepo,
		kb:              kb,
		service:         service,
		logger:          logger,
	}, nil
}

func sourceFor(cfg *config.Config, repo storage.EntryRepository) knowledge.Source {
	if cfg.CorpusSource == config.SourceStore {
		name := "store:memory"
		if cfg.StoreDir != "" {
			name = "store:" + cfg.StoreDir
		}
		return knowledge.NewRepositorySource(name, repo)
	}
	return knowledge.NewFileSource(cfg.FAQFilePath())
}

// Close closes both repositories and then the backend. Every step runs
// even when an earlier one fails; the errors are joined.
func (e *Engine) Close() error {
	var errs []error
	if err := e.interactionRepo.Close(); err != nil {
		e.logger.Error("error closing interaction repository", "err", err)
		errs = append(errs, err)
	}
	if err := e.entryRepo.Close(); err != nil {
		e.logger.Error("error closing entry repository", "err", err)
		errs = append(errs, err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) Config() *config.Config {
	return e.cfg
}

func (e *Engine) Service() *matching.Service {
	return e.service
}

func (e *Engine) Knowledge() *knowledge.Base {
	return e.kb
}

func (e *Engine) Entries() storage.EntryRepository {
	return e.entryRepo
}

func (e *Engine) Interactions() storage.InteractionRepository {
	return e.interactionRepo
}

// ImportFile validates the JSON or YAML corpus at path and stores it,
// replacing any previously imported entries. It returns the entry count.
func (e *Engine) ImportFile(ctx context.Context, path string) (int, error) {
	src := knowledge.NewFileSource(path)
	data, err := src.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", knowledge.ErrLoad, err)
	}
	entries, err := knowledge.Parse(data, src.Format())
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", knowledge.ErrLoad, path, err)
	}
	if err := e.entryRepo.ReplaceEntries(ctx, entries); err != nil {
		return 0, err
	}
	e.logger.Info("imported FAQ entries", "count", len(entries), "path", path)
	return len(entries), nil
}
