package vectorize

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var financeQuestions = []string{
	"What is EBITDA?",
	"How do I calculate the gross margin?",
	"What is free cash flow?",
	"How is net debt calculated?",
	"What does CAPEX mean?",
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxFeatures, v.MaxFeatures())
	})

	t.Run("invalid max features", func(t *testing.T) {
		_, err := New(WithMaxFeatures(0))
		assert.ErrorIs(t, err, ErrInvalidMaxFeatures)
	})

	t.Run("workers below one are clamped", func(t *testing.T) {
		v, err := New(WithWorkers(-3), WithLogger(nil))
		require.NoError(t, err)
		assert.Equal(t, 1, v.workers)
		assert.NotNil(t, v.logger)
	})
}

func TestFit_Empty(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	_, err = v.Fit(nil)
	assert.ErrorIs(t, err, ErrFit)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = v.Fit([]string{})
	assert.ErrorIs(t, err, ErrFit)
}

func TestFit_Vocabulary(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	model, err := v.Fit([]string{"dette nette", "dette"})
	require.NoError(t, err)

	rows, cols := model.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 3, model.VocabularySize())

	// First-seen order when the cap is not reached
	for i, term := range []string{"dette", "nette", "dette nette"} {
		col, ok := model.Column(term)
		require.True(t, ok, term)
		assert.Equal(t, i, col)
		got, ok := model.Term(i)
		require.True(t, ok)
		assert.Equal(t, term, got)
	}

	_, ok := model.Column("missing")
	assert.False(t, ok)
	_, ok = model.Term(99)
	assert.False(t, ok)
}

func TestFit_IDF(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	model, err := v.Fit([]string{"dette nette", "dette"})
	require.NoError(t, err)

	idf, ok := model.IDF("dette")
	require.True(t, ok)
	assert.InDelta(t, 1.0, idf, 1e-12, "term in every document keeps a positive weight")

	idf, ok = model.IDF("nette")
	require.True(t, ok)
	assert.InDelta(t, math.Log(3.0/2.0)+1, idf, 1e-12)

	_, ok = model.IDF("ebitda")
	assert.False(t, ok)
}

func TestFit_RowsAreUnitVectors(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	model, err := v.Fit(financeQuestions)
	require.NoError(t, err)

	require.Len(t, model.Matrix(), len(financeQuestions))
	for i, row := range model.Matrix() {
		assert.InDelta(t, 1.0, row.Norm(), 1e-9, "row %d", i)
		for _, w := range row.Weights {
			assert.Greater(t, w, 0.0)
		}
	}

	_, ok := model.Row(len(financeQuestions))
	assert.False(t, ok)
	_, ok = model.Row(-1)
	assert.False(t, ok)
}

func TestFit_DocumentWithoutTerms(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	model, err := v.Fit([]string{"What is EBITDA?", "???"})
	require.NoError(t, err)

	row, ok := model.Row(1)
	require.True(t, ok)
	assert.True(t, row.IsZero())
}

func TestFit_MaxFeatures(t *testing.T) {
	// totals: cash=3, flow=2, "cash flow"=2, net=1, "net cash"=1, margin=1, ...
	docs := []string{"net cash flow", "cash flow", "cash margin"}

	v, err := New(WithMaxFeatures(3))
	require.NoError(t, err)

	model, err := v.Fit(docs)
	require.NoError(t, err)
	require.Equal(t, 3, model.VocabularySize())

	for i, term := range []string{"cash", "flow", "cash flow"} {
		col, ok := model.Column(term)
		require.True(t, ok, term)
		assert.Equal(t, i, col, term)
	}
	_, ok := model.Column("net")
	assert.False(t, ok)

	// "cash margin" only keeps "cash"
	row, _ := model.Row(2)
	assert.Equal(t, []int{0}, row.Indices)
}

func TestFit_TiesKeepFirstSeenOrder(t *testing.T) {
	v, err := New(WithMaxFeatures(2))
	require.NoError(t, err)

	model, err := v.Fit([]string{"alpha", "beta", "gamma"})
	require.NoError(t, err)

	_, ok := model.Column("alpha")
	assert.True(t, ok)
	_, ok = model.Column("beta")
	assert.True(t, ok)
	_, ok = model.Column("gamma")
	assert.False(t, ok)
}

func TestFit_WorkersMatchSequential(t *testing.T) {
	docs := make([]string, 0, 200)
	for i := range 200 {
		docs = append(docs, fmt.Sprintf("%s variant %d", financeQuestions[i%len(financeQuestions)], i%7))
	}

	sequential, err := New()
	require.NoError(t, err)
	parallel, err := New(WithWorkers(4))
	require.NoError(t, err)

	want, err := sequential.Fit(docs)
	require.NoError(t, err)
	got, err := parallel.Fit(docs)
	require.NoError(t, err)

	assert.Equal(t, want.terms, got.terms)
	assert.Equal(t, want.idf, got.idf)
	assert.Equal(t, want.matrix, got.matrix)
}

func TestTransform(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	model, err := v.Fit(financeQuestions)
	require.NoError(t, err)

	t.Run("unknown terms give zero vector", func(t *testing.T) {
		assert.True(t, model.Transform("banana smoothie recipe").IsZero())
		assert.True(t, model.Transform("").IsZero())
	})

	t.Run("does not grow the vocabulary", func(t *testing.T) {
		before := model.VocabularySize()
		model.Transform("completely novel words here")
		assert.Equal(t, before, model.VocabularySize())
	})

	t.Run("exact document text reproduces its row", func(t *testing.T) {
		for i, q := range financeQuestions {
			row, _ := model.Row(i)
			vec := model.Transform(q)
			assert.Equal(t, row.Indices, vec.Indices)
			assert.InDelta(t, 1.0, Dot(row, vec), 1e-9)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, model.Transform("ebitda"), model.Transform("EBITDA"))
	})

	t.Run("known terms give unit vector", func(t *testing.T) {
		assert.InDelta(t, 1.0, model.Transform("cash flow margin").Norm(), 1e-9)
	})
}
