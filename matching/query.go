package matching

import (
	"fmt"
	"strings"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/search"
)

// Response is the answer payload for a query.
type Response struct {
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources"`
	SimilarityScore float64  `json:"similarity_score"`
	Matched         bool     `json:"matched"`
}

// FindBestMatch returns the entry most similar to query when its score
// exceeds the threshold. A blank query, or one whose best score does not
// exceed the threshold, reports false. The only error is ErrNotReady.
func (s *Service) FindBestMatch(query string) (core.MatchResult, bool, error) {
	gen, err := s.ready()
	if err != nil {
		return core.MatchResult{}, false, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return core.MatchResult{}, false, nil
	}

	s.monitor.Start(query)
	vec := gen.model.Transform(query)
	s.monitor.AfterTransform(vec)

	best := search.Best(vec, gen.model.Matrix())
	s.monitor.AfterRanking([]search.Ranked{best})

	threshold := s.Threshold()
	s.logger.Debug("matched query", "query", query, "score", best.Score, "threshold", threshold)

	if best.Score <= threshold {
		s.monitor.Finish(nil)
		return core.MatchResult{}, false, nil
	}

	entry, ok := gen.snapshot.Entry(best.Index)
	if !ok {
		s.monitor.Finish(nil)
		return core.MatchResult{}, false, nil
	}
	result := core.MatchResult{Entry: entry, Score: best.Score}
	s.monitor.Finish([]core.MatchResult{result})
	return result, true, nil
}

// TopMatches returns up to k entries scoring above the threshold, best
// first, lower corpus position first among equal scores. A k below one
// yields no entries.
func (s *Service) TopMatches(query string, k int) ([]core.MatchResult, error) {
	gen, err := s.ready()
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return []core.MatchResult{}, nil
	}

	s.monitor.Start(query)
	vec := gen.model.Transform(query)
	s.monitor.AfterTransform(vec)

	ranked, err := search.TopK(vec, gen.model.Matrix(), k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	s.monitor.AfterRanking(ranked)

	threshold := s.Threshold()
	results := make([]core.MatchResult, 0, len(ranked))
	for _, r := range ranked {
		if r.Score <= threshold {
			// ranked is descending, nothing further can pass
			break
		}
		if entry, ok := gen.snapshot.Entry(r.Index); ok {
			results = append(results, core.MatchResult{Entry: entry, Score: r.Score})
		}
	}
	s.monitor.Finish(results)
	return results, nil
}

// ProcessQuery answers query, falling back to the fallback answer when
// nothing matches.
func (s *Service) ProcessQuery(query string) (Response, error) {
	match, ok, err := s.FindBestMatch(query)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		return Response{
			Answer:          s.fallback,
			Sources:         []string{},
			SimilarityScore: 0,
			Matched:         false,
		}, nil
	}
	return Response{
		Answer:          match.Entry.Answer,
		Sources:         []string{match.Entry.ID},
		SimilarityScore: match.Score,
		Matched:         true,
	}, nil
}

// FallbackAnswer returns the answer given when nothing matches.
func (s *Service) FallbackAnswer() string {
	return s.fallback
}
