package search

import (
	"slices"

	"github.com/poiesic/faqmatch/vectorize"
)

// Ranked is a matrix row paired with its similarity to a query.
type Ranked struct {
	Index int
	Score float64
}

// Cosine returns the cosine similarity of two unit vectors, clamped to
// [0, 1] to absorb floating point drift.
func Cosine(a, b vectorize.Vector) float64 {
	return clamp(vectorize.Dot(a, b))
}

// Scores returns the similarity of query to every row of matrix.
func Scores(query vectorize.Vector, matrix []vectorize.Vector) []float64 {
	scores := make([]float64, len(matrix))
	if query.IsZero() {
		return scores
	}
	for i, row := range matrix {
		scores[i] = Cosine(query, row)
	}
	return scores
}

// Best returns the row most similar to query. The first row wins ties, so
// a query sharing no terms with any row yields (0, 0). An empty matrix
// also yields (0, 0).
func Best(query vectorize.Vector, matrix []vectorize.Vector) Ranked {
	best := Ranked{}
	for i, score := range Scores(query, matrix) {
		if score > best.Score {
			best = Ranked{Index: i, Score: score}
		}
	}
	return best
}

// TopK returns at most k rows ordered by descending score, lower index
// first among equal scores. No threshold is applied.
func TopK(query vectorize.Vector, matrix []vectorize.Vector, k int) ([]Ranked, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	scores := Scores(query, matrix)
	ranked := make([]Ranked, len(scores))
	for i, score := range scores {
		ranked[i] = Ranked{Index: i, Score: score}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
