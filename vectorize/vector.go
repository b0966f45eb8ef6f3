package vectorize

import (
	"math"
	"slices"
)

// Vector is a sparse vector. Indices are strictly ascending and every
// weight is positive; the zero value is the zero vector.
type Vector struct {
	Indices []int
	Weights []float64
}

// Len returns the number of non-zero components.
func (v Vector) Len() int {
	return len(v.Indices)
}

// IsZero reports whether v has no non-zero components.
func (v Vector) IsZero() bool {
	return len(v.Indices) == 0
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of a and b.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// weigh builds a unit vector from per-column term counts.
func weigh(counts map[int]int, idf []float64) Vector {
	if len(counts) == 0 {
		return Vector{}
	}

	indices := make([]int, 0, len(counts))
	for col := range counts {
		indices = append(indices, col)
	}
	slices.Sort(indices)

	weights := make([]float64, len(indices))
	var sum float64
	for i, col := range indices {
		w := float64(counts[col]) * idf[col]
		weights[i] = w
		sum += w * w
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return Vector{}
	}
	for i := range weights {
		weights[i] /= norm
	}
	return Vector{Indices: indices, Weights: weights}
}
