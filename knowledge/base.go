package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/poiesic/faqmatch/core"
)

// Snapshot is one immutable generation of the corpus.
type Snapshot struct {
	entries     []core.FAQEntry
	source      string
	fingerprint core.ID
	loadedAt    time.Time
	generation  uint64
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entry returns the entry at position i.
func (s *Snapshot) Entry(i int) (core.FAQEntry, bool) {
	if i < 0 || i >= len(s.entries) {
		return core.FAQEntry{}, false
	}
	return s.entries[i], true
}

// Entries returns a copy of the corpus in order.
func (s *Snapshot) Entries() []core.FAQEntry {
	out := make([]core.FAQEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Questions returns every question in corpus order.
func (s *Snapshot) Questions() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Question
	}
	return out
}

func (s *Snapshot) Fingerprint() core.ID { return s.fingerprint }
func (s *Snapshot) LoadedAt() time.Time  { return s.loadedAt }
func (s *Snapshot) Generation() uint64   { return s.generation }
func (s *Snapshot) Source() string       { return s.source }

// Stats describes the current corpus.
type Stats struct {
	TotalEntries      int       `json:"total_entries"`
	AvgQuestionLength float64   `json:"avg_question_length"`
	AvgAnswerLength   float64   `json:"avg_answer_length"`
	UniqueIDs         int       `json:"unique_ids"`
	UniqueQuestions   int       `json:"unique_questions"`
	Loaded            bool      `json:"loaded"`
	Source            string    `json:"file_path"`
	Fingerprint       string    `json:"fingerprint,omitempty"`
	Generation        uint64    `json:"generation"`
	LoadedAt          time.Time `json:"loaded_at,omitzero"`
}

// Base holds the corpus loaded from a Source.
type Base struct {
	source    Source
	snapshot  atomic.Pointer[Snapshot]
	loadMu    sync.Mutex
	loads     uint64
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

// Option configures a Base.
type Option func(*Base) error

// WithRetry retries failed source reads up to attempts times, doubling the
// delay after each failure. Parsing and validation errors are never retried.
// Default is a single attempt.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(b *Base) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.attempts = attempts
		b.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// New creates a Base reading from source. Nothing is loaded until Load.
func New(source Source, opts ...Option) (*Base, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	b := &Base{
		source:   source,
		attempts: 1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Load reads, validates and publishes the corpus. On failure the error
// wraps ErrLoad and any previously published snapshot stays in place.
func (b *Base) Load(ctx context.Context) error {
	b.loadMu.Lock()
	defer b.loadMu.Unlock()

	entries, err := b.fetch(ctx)
	if err != nil {
		b.logger.Error("failed to load FAQ data", "source", b.source.Name(), "err", err)
		return fmt.Errorf("%w: %s: %w", ErrLoad, b.source.Name(), err)
	}

	b.loads++
	snap := &Snapshot{
		entries:     entries,
		source:      b.source.Name(),
		fingerprint: core.Fingerprint(entries),
		loadedAt:    time.Now().UTC(),
		generation:  b.loads,
	}
	b.snapshot.Store(snap)

	b.logger.Info("loaded FAQ entries", "count", len(entries), "source", snap.source, "generation", snap.generation)
	return nil
}

// Reload re-reads the same source, replacing the corpus only on success.
func (b *Base) Reload(ctx context.Context) error {
	if err := b.Load(ctx); err != nil {
		return err
	}
	b.logger.Info("knowledge base reloaded")
	return nil
}

func (b *Base) fetch(ctx context.Context) ([]core.FAQEntry, error) {
	if es, ok := b.source.(EntrySource); ok {
		var entries []core.FAQEntry
		err := retryWithBackoff(ctx, b.logger, func() error {
			var readErr error
			entries, readErr = es.Entries(ctx)
			return readErr
		}, b.attempts, b.baseDelay)
		if err != nil {
			return nil, err
		}
		if err := ValidateEntries(entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var data []byte
	err := retryWithBackoff(ctx, b.logger, func() error {
		var readErr error
		data, readErr = b.source.Read(ctx)
		return readErr
	}, b.attempts, b.baseDelay)
	if err != nil {
		return nil, err
	}
	return Parse(data, b.source.Format())
}

// Snapshot returns the published corpus, or nil before the first
// successful load.
func (b *Base) Snapshot() *Snapshot {
	return b.snapshot.Load()
}

// IsLoaded reports whether a corpus has been published.
func (b *Base) IsLoaded() bool {
	return b.snapshot.Load() != nil
}

// SourceName identifies the configured source.
func (b *Base) SourceName() string {
	return b.source.Name()
}

// Questions returns the questions of the published corpus.
func (b *Base) Questions() []string {
	snap := b.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.Questions()
}

// GetByIndex returns the entry at position i. Out of range indices and an
// unloaded base report false.
func (b *Base) GetByIndex(i int) (core.FAQEntry, bool) {
	snap := b.snapshot.Load()
	if snap == nil {
		return core.FAQEntry{}, false
	}
	return snap.Entry(i)
}

// GetByID returns the first entry whose ID equals id.
func (b *Base) GetByID(id string) (core.FAQEntry, bool) {
	snap := b.snapshot.Load()
	if snap == nil {
		return core.FAQEntry{}, false
	}
	for _, e := range snap.entries {
		if e.ID == id {
			return e, true
		}
	}
	return core.FAQEntry{}, false
}

// SearchByKeyword returns entries whose question contains keyword,
// ignoring case, in corpus order.
func (b *Base) SearchByKeyword(keyword string) []core.FAQEntry {
	snap := b.snapshot.Load()
	if snap == nil {
		return nil
	}

	needle := strings.ToLower(keyword)
	var matches []core.FAQEntry
	for _, e := range snap.entries {
		if strings.Contains(strings.ToLower(e.Question), needle) {
			matches = append(matches, e)
		}
	}
	return matches
}

// Stats reports on the published corpus. Lengths are in characters.
func (b *Base) Stats() Stats {
	snap := b.snapshot.Load()
	if snap == nil {
		return Stats{Source: b.source.Name()}
	}
	return snap.Stats()
}

// Stats reports on this snapshot. Lengths are in characters.
func (s *Snapshot) Stats() Stats {
	st := Stats{
		TotalEntries: len(s.entries),
		Loaded:       true,
		Source:       s.source,
		Fingerprint:  fmt.Sprintf("%016x", uint64(s.fingerprint)),
		Generation:   s.generation,
		LoadedAt:     s.loadedAt,
	}
	if len(s.entries) == 0 {
		return st
	}

	ids := make(map[string]struct{}, len(s.entries))
	questions := make(map[core.ID]struct{}, len(s.entries))
	var qLen, aLen int
	for _, e := range s.entries {
		qLen += utf8.RuneCountInString(e.Question)
		aLen += utf8.RuneCountInString(e.Answer)
		ids[e.ID] = struct{}{}
		questions[questionKey(e.Question)] = struct{}{}
	}
	n := float64(len(s.entries))
	st.AvgQuestionLength = float64(qLen) / n
	st.AvgAnswerLength = float64(aLen) / n
	st.UniqueIDs = len(ids)
	st.UniqueQuestions = len(questions)
	return st
}

// questionKey identifies a question up to case and spacing.
func questionKey(q string) core.ID {
	return core.IDFromContent(strings.Join(strings.Fields(strings.ToLower(q)), " "))
}
