package vectorize

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultMaxFeatures caps the vocabulary size.
	DefaultMaxFeatures = 5000

	poolReleaseTimeout = 5 * time.Second
)

// Vectorizer fits TF-IDF models. It holds configuration only and is safe
// for concurrent use.
type Vectorizer struct {
	maxFeatures int
	workers     int
	logger      *slog.Logger
}

// Option configures a Vectorizer.
type Option func(*Vectorizer) error

// WithMaxFeatures caps the vocabulary at n terms, keeping the most frequent.
// Default is DefaultMaxFeatures.
func WithMaxFeatures(n int) Option {
	return func(v *Vectorizer) error {
		if n <= 0 {
			return ErrInvalidMaxFeatures
		}
		v.maxFeatures = n
		return nil
	}
}

// WithWorkers tokenizes documents on a pool of n workers during Fit.
// Values below 2 fit sequentially, which is the default.
func WithWorkers(n int) Option {
	return func(v *Vectorizer) error {
		if n < 1 {
			n = 1
		}
		v.workers = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vectorizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
		return nil
	}
}

// New creates a Vectorizer.
func New(opts ...Option) (*Vectorizer, error) {
	v := &Vectorizer{
		maxFeatures: DefaultMaxFeatures,
		workers:     1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// MaxFeatures returns the vocabulary cap.
func (v *Vectorizer) MaxFeatures() int {
	return v.maxFeatures
}

// termStats accumulates corpus-wide counts for one term.
type termStats struct {
	total     int
	docs      int
	firstSeen int
}

// Fit builds a vocabulary, idf table and document-term matrix from docs.
// Row i of the resulting matrix corresponds to docs[i].
func (v *Vectorizer) Fit(docs []string) (*Model, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrFit, ErrEmptyCorpus)
	}

	start := time.Now()
	tokenized, err := v.tokenizeAll(docs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFit, err)
	}

	stats := make(map[string]*termStats)
	var order []string
	for _, terms := range tokenized {
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			st, ok := stats[term]
			if !ok {
				st = &termStats{firstSeen: len(order)}
				stats[term] = st
				order = append(order, term)
			}
			st.total++
			if !seen[term] {
				seen[term] = true
				st.docs++
			}
		}
	}

	// Capping ranks by corpus frequency; order is already first-seen, so a
	// stable sort keeps first-seen order among equal totals.
	if len(order) > v.maxFeatures {
		slices.SortStableFunc(order, func(a, b string) int {
			return stats[b].total - stats[a].total
		})
		order = order[:v.maxFeatures]
	}

	n := float64(len(docs))
	vocabulary := make(map[string]int, len(order))
	idf := make([]float64, len(order))
	for col, term := range order {
		vocabulary[term] = col
		idf[col] = math.Log((1+n)/(1+float64(stats[term].docs))) + 1
	}

	matrix := make([]Vector, len(tokenized))
	for row, terms := range tokenized {
		counts := make(map[int]int)
		for _, term := range terms {
			if col, ok := vocabulary[term]; ok {
				counts[col]++
			}
		}
		matrix[row] = weigh(counts, idf)
	}

	v.logger.Debug("fitted tf-idf model",
		"documents", len(docs),
		"distinctTerms", len(stats),
		"vocabulary", len(order),
		"elapsed", time.Since(start))

	return &Model{
		vocabulary: vocabulary,
		terms:      order,
		idf:        idf,
		matrix:     matrix,
	}, nil
}

// tokenizeAll tokenizes every document, fanning out to a worker pool when
// more than one worker is configured.
func (v *Vectorizer) tokenizeAll(docs []string) ([][]string, error) {
	tokenized := make([][]string, len(docs))
	if v.workers < 2 || len(docs) < 2 {
		for i, doc := range docs {
			tokenized[i] = Tokenize(doc)
		}
		return tokenized, nil
	}

	pool, err := ants.NewPool(min(v.workers, len(docs)))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := pool.ReleaseTimeout(poolReleaseTimeout); err != nil {
			v.logger.Warn("tokenizer pool did not release cleanly", "err", err)
		}
	}()

	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			tokenized[i] = Tokenize(docs[i])
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, submitErr
		}
	}
	wg.Wait()
	return tokenized, nil
}
