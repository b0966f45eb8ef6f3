package api

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/matching"
	"github.com/poiesic/faqmatch/storage"
)

// ErrRepositoryRequired is returned when NewRecorder is given no repository.
var ErrRepositoryRequired = errors.New("interaction repository required")

// Recorder stores answered queries in the background. Record never waits:
// when every writer is busy the interaction is dropped and logged.
type Recorder struct {
	repo    storage.InteractionRepository
	pool    *ants.Pool
	pending sync.WaitGroup
	logger  *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder) error

// WithPoolSize sets the number of concurrent writers.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) RecorderOption {
	return func(r *Recorder) error {
		if size < 1 {
			size = 1
		}
		pool, err := newRecorderPool(size)
		if err != nil {
			return err
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithRecorderLogger sets a custom logger.
// Default is slog.Default().
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo storage.InteractionRepository, opts ...RecorderOption) (*Recorder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	pool, err := newRecorderPool(max(runtime.NumCPU()/2, 1))
	if err != nil {
		return nil, err
	}
	r := &Recorder{repo: repo, pool: pool, logger: slog.Default()}

	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.pool.Release()
			return nil, optErr
		}
	}
	return r, nil
}

func newRecorderPool(size int) (*ants.Pool, error) {
	return ants.NewPool(size, ants.WithNonblocking(true))
}

// Record queues query and its response for storage. Failures are logged.
func (r *Recorder) Record(query string, resp matching.Response) {
	interaction := &core.Interaction{
		Query:     query,
		Sources:   append([]string(nil), resp.Sources...),
		Score:     resp.SimilarityScore,
		Matched:   resp.Matched,
		Timestamp: time.Now().UTC(),
	}

	r.pending.Add(1)
	err := r.pool.Submit(func() {
		defer r.pending.Done()
		if _, err := r.repo.AddInteractions(context.Background(), interaction); err != nil {
			r.logger.Error("error recording interaction", "err", err)
		}
	})
	if err != nil {
		r.pending.Done()
		r.logger.Warn("interaction dropped", "query", query, "err", err)
	}
}

// Flush blocks until every queued interaction has been written.
func (r *Recorder) Flush() {
	r.pending.Wait()
}

// Close flushes pending writes and releases the worker pool.
// The Recorder should not be used after calling Close.
func (r *Recorder) Close() error {
	r.Flush()
	return r.pool.ReleaseTimeout(5 * time.Second)
}
