package matching

import (
	"time"

	"github.com/poiesic/faqmatch/knowledge"
)

// Stats merges model and knowledge base statistics.
type Stats struct {
	Initialized    bool      `json:"initialized"`
	State          string    `json:"state"`
	Threshold      float64   `json:"threshold"`
	VocabularySize int       `json:"vectorizer_vocab_size"`
	VectorsShape   [2]int    `json:"faq_vectors_shape"`
	ModelVersion   uint64    `json:"model_generation"`
	FittedAt       time.Time `json:"fitted_at,omitzero"`
	knowledge.Stats
}

// Stats reports on the published generation. Before initialization the
// knowledge base figures come straight from the base.
func (s *Service) Stats() Stats {
	st := Stats{
		State:     s.State().String(),
		Threshold: s.Threshold(),
	}

	gen := s.current.Load()
	if gen == nil {
		st.Stats = s.kb.Stats()
		return st
	}

	rows, cols := gen.model.Shape()
	st.Initialized = true
	st.VocabularySize = gen.model.VocabularySize()
	st.VectorsShape = [2]int{rows, cols}
	st.ModelVersion = gen.number
	st.FittedAt = gen.fittedAt
	st.Stats = gen.snapshot.Stats()
	return st
}
