package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/faqmatch/knowledge"
	"github.com/poiesic/faqmatch/search"
	"github.com/poiesic/faqmatch/vectorize"
)

const (
	// DefaultThreshold is the similarity a match must exceed.
	DefaultThreshold = 0.3

	// DefaultFallbackAnswer is returned when no entry clears the threshold.
	DefaultFallbackAnswer = "Je suis désolé, je n'ai pas trouvé de réponse précise à votre question " +
		"dans ma base de connaissances. Pourriez-vous reformuler ou poser une " +
		"question sur l'EBITDA, les marges, le cash flow, ou d'autres " +
		"indicateurs financiers ?"
)

// generation is a corpus snapshot and the model fitted on its questions.
// Row i of the model is entry i of the snapshot.
type generation struct {
	number   uint64
	snapshot *knowledge.Snapshot
	model    *vectorize.Model
	fittedAt time.Time
}

// Service matches queries against a knowledge base.
type Service struct {
	kb         *knowledge.Base
	vectorizer *vectorize.Vectorizer
	current    atomic.Pointer[generation]
	threshold  atomic.Uint64
	state      atomic.Int32
	mu         sync.Mutex // serializes Initialize and Reload
	built      uint64
	fallback   string
	monitor    search.Monitor
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithThreshold sets the initial similarity threshold.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(s *Service) error {
		if err := validateThreshold(threshold); err != nil {
			return err
		}
		s.threshold.Store(math.Float64bits(threshold))
		return nil
	}
}

// WithFallbackAnswer sets the answer returned when nothing matches.
// Default is DefaultFallbackAnswer.
func WithFallbackAnswer(answer string) Option {
	return func(s *Service) error {
		if strings.TrimSpace(answer) == "" {
			return fmt.Errorf("%w: fallback answer cannot be empty", ErrValidation)
		}
		s.fallback = answer
		return nil
	}
}

// WithMonitor observes every query. Default ignores all callbacks.
func WithMonitor(monitor search.Monitor) Option {
	return func(s *Service) error {
		if monitor == nil {
			monitor = search.NoopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithVectorizer sets the vectorizer used for fitting.
// Default is vectorize.New() with default settings.
func WithVectorizer(v *vectorize.Vectorizer) Option {
	return func(s *Service) error {
		if v != nil {
			s.vectorizer = v
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates an uninitialized Service over kb.
func New(kb *knowledge.Base, opts ...Option) (*Service, error) {
	if kb == nil {
		return nil, ErrKnowledgeBaseRequired
	}

	s := &Service{
		kb:       kb,
		fallback: DefaultFallbackAnswer,
		monitor:  search.NoopMonitor{},
		logger:   slog.Default(),
	}
	s.threshold.Store(math.Float64bits(DefaultThreshold))

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.vectorizer == nil {
		v, err := vectorize.New(vectorize.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.vectorizer = v
	}
	return s, nil
}

// Initialize loads the knowledge base if needed and fits the model. Calling
// it on a Ready service does nothing.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Load() != nil {
		return nil
	}

	s.setState(StateInitializing)
	if !s.kb.IsLoaded() {
		if err := s.kb.Load(ctx); err != nil {
			s.setState(StateUninitialized)
			return err
		}
	}

	gen, err := s.build(s.kb.Snapshot())
	if err != nil {
		s.setState(StateUninitialized)
		return err
	}
	s.publish(gen)
	return nil
}

// Reload reloads the knowledge base and refits. On failure the previous
// generation, if any, keeps serving.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.State()
	if prev == StateReady {
		s.setState(StateReloading)
	} else {
		s.setState(StateInitializing)
	}

	if err := s.kb.Reload(ctx); err != nil {
		s.setState(prev)
		return err
	}

	gen, err := s.build(s.kb.Snapshot())
	if err != nil {
		s.setState(prev)
		return err
	}
	s.publish(gen)
	s.logger.Info("FAQ service reloaded", "generation", gen.number)
	return nil
}

func (s *Service) build(snap *knowledge.Snapshot) (*generation, error) {
	if snap == nil || snap.Len() == 0 {
		return nil, fmt.Errorf("%w: no FAQ questions available for vectorization", ErrNotReady)
	}

	model, err := s.vectorizer.Fit(snap.Questions())
	if err != nil {
		return nil, err
	}

	s.built++
	return &generation{
		number:   s.built,
		snapshot: snap,
		model:    model,
		fittedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) publish(gen *generation) {
	s.current.Store(gen)
	s.setState(StateReady)
	s.logger.Info("FAQ service initialized",
		"questions", gen.snapshot.Len(),
		"vocabulary", gen.model.VocabularySize(),
		"generation", gen.number)
}

func (s *Service) setState(state State) {
	s.state.Store(int32(state))
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	return State(s.state.Load())
}

// IsReady reports whether queries can be served.
func (s *Service) IsReady() bool {
	return s.current.Load() != nil
}

// Threshold returns the active similarity threshold.
func (s *Service) Threshold() float64 {
	return math.Float64frombits(s.threshold.Load())
}

// UpdateThreshold replaces the active threshold. Values outside [0, 1]
// are rejected and leave the threshold unchanged.
func (s *Service) UpdateThreshold(threshold float64) error {
	if err := validateThreshold(threshold); err != nil {
		return err
	}
	s.threshold.Store(math.Float64bits(threshold))
	s.logger.Info("updated similarity threshold", "threshold", threshold)
	return nil
}

func validateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: threshold must be between 0.0 and 1.0, got %v", ErrValidation, threshold)
	}
	return nil
}

func (s *Service) ready() (*generation, error) {
	gen := s.current.Load()
	if gen == nil {
		return nil, fmt.Errorf("%w: state is %s", ErrNotReady, s.State())
	}
	return gen, nil
}
