package matching

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/knowledge"
	"github.com/poiesic/faqmatch/search"
	"github.com/poiesic/faqmatch/vectorize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const financeCorpus = `[
	{"id": "faq#ebitda", "q": "What is EBITDA?", "a": "EBITDA is earnings before interest, taxes, depreciation and amortization."},
	{"id": "faq#gross-margin", "q": "How do I calculate the gross margin?", "a": "Revenue minus cost of goods sold, divided by revenue."},
	{"id": "faq#fcf", "q": "What is free cash flow?", "a": "Operating cash flow minus capital expenditure."},
	{"id": "faq#net-debt", "q": "How is net debt calculated?", "a": "Gross debt minus cash and equivalents."},
	{"id": "faq#capex", "q": "What does CAPEX mean?", "a": "Capital expenditure on long-lived assets."},
	{"id": "faq#wcr", "q": "What is the working capital requirement?", "a": "Inventory plus receivables minus payables."}
]`

// mutableSource serves whatever content it currently holds.
type mutableSource struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func (s *mutableSource) Name() string             { return "mutable" }
func (s *mutableSource) Format() knowledge.Format { return knowledge.FormatJSON }

func (s *mutableSource) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.err
}

func (s *mutableSource) set(data string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = []byte(data)
	s.err = err
}

func newService(t *testing.T, corpus string, opts ...Option) (*Service, *mutableSource) {
	t.Helper()
	src := &mutableSource{}
	src.set(corpus, nil)
	kb, err := knowledge.New(src)
	require.NoError(t, err)
	svc, err := New(kb, opts...)
	require.NoError(t, err)
	return svc, src
}

func readyService(t *testing.T, corpus string, opts ...Option) (*Service, *mutableSource) {
	t.Helper()
	svc, src := newService(t, corpus, opts...)
	require.NoError(t, svc.Initialize(context.Background()))
	return svc, src
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrKnowledgeBaseRequired)

	kb, err := knowledge.New(knowledge.NewBytesSource("x", nil, knowledge.FormatJSON))
	require.NoError(t, err)

	tests := []struct {
		name string
		opt  Option
	}{
		{"threshold above one", WithThreshold(1.01)},
		{"negative threshold", WithThreshold(-0.1)},
		{"blank fallback", WithFallbackAnswer("  ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(kb, tt.opt)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	svc, err := New(kb, WithMonitor(nil), WithLogger(nil), WithVectorizer(nil))
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, svc.State())
	assert.Equal(t, DefaultThreshold, svc.Threshold())
	assert.Equal(t, DefaultFallbackAnswer, svc.FallbackAnswer())
}

func TestService_NotReady(t *testing.T) {
	svc, _ := newService(t, financeCorpus)

	_, _, err := svc.FindBestMatch("What is EBITDA?")
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = svc.TopMatches("What is EBITDA?", 3)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = svc.ProcessQuery("What is EBITDA?")
	assert.ErrorIs(t, err, ErrNotReady)

	_, _, err = svc.FindBestMatch("")
	assert.ErrorIs(t, err, ErrNotReady, "not ready wins over empty query")

	stats := svc.Stats()
	assert.False(t, stats.Initialized)
	assert.Equal(t, "uninitialized", stats.State)
	assert.False(t, stats.Loaded)
}

func TestService_Initialize(t *testing.T) {
	t.Run("ready after initialize", func(t *testing.T) {
		svc, _ := readyService(t, financeCorpus)
		assert.Equal(t, StateReady, svc.State())
		assert.True(t, svc.IsReady())
	})

	t.Run("idempotent", func(t *testing.T) {
		svc, src := readyService(t, financeCorpus)
		before := svc.Stats()

		src.set(`[{"id": "other", "q": "Different question", "a": "Different answer."}]`, nil)
		require.NoError(t, svc.Initialize(context.Background()))

		after := svc.Stats()
		assert.Equal(t, before.ModelVersion, after.ModelVersion)
		assert.Equal(t, 6, after.TotalEntries)
	})

	t.Run("load failure leaves service uninitialized", func(t *testing.T) {
		svc, _ := newService(t, `[]`)
		err := svc.Initialize(context.Background())
		assert.ErrorIs(t, err, knowledge.ErrLoad)
		assert.Equal(t, StateUninitialized, svc.State())
		assert.False(t, svc.IsReady())
	})

	t.Run("recovers once the source is fixed", func(t *testing.T) {
		svc, src := newService(t, `not json`)
		require.Error(t, svc.Initialize(context.Background()))

		src.set(financeCorpus, nil)
		require.NoError(t, svc.Initialize(context.Background()))
		assert.Equal(t, StateReady, svc.State())
	})
}

func TestService_Scenarios(t *testing.T) {
	const single = `[{"id": "e1", "q": "What is EBITDA?", "a": "EBITDA is a metric."}]`

	t.Run("exact question matches", func(t *testing.T) {
		svc, _ := readyService(t, single, WithThreshold(0.1))
		resp, err := svc.ProcessQuery("What is EBITDA?")
		require.NoError(t, err)
		assert.True(t, resp.Matched)
		assert.Equal(t, []string{"e1"}, resp.Sources)
		assert.Equal(t, "EBITDA is a metric.", resp.Answer)
		assert.Greater(t, resp.SimilarityScore, 0.9)
	})

	t.Run("unrelated question falls back", func(t *testing.T) {
		svc, _ := readyService(t, single, WithThreshold(0.1))
		resp, err := svc.ProcessQuery("banana smoothie recipe")
		require.NoError(t, err)
		assert.False(t, resp.Matched)
		assert.Equal(t, []string{}, resp.Sources)
		assert.Equal(t, 0.0, resp.SimilarityScore)
		assert.Equal(t, DefaultFallbackAnswer, resp.Answer)
	})

	t.Run("empty query falls back without error", func(t *testing.T) {
		svc, _ := readyService(t, single, WithThreshold(0.1))
		for _, q := range []string{"", "   ", "\n\t"} {
			resp, err := svc.ProcessQuery(q)
			require.NoError(t, err)
			assert.False(t, resp.Matched)
		}
	})

	t.Run("reload with empty list keeps previous snapshot", func(t *testing.T) {
		svc, src := readyService(t, single, WithThreshold(0.1))
		src.set(`[]`, nil)

		err := svc.Reload(context.Background())
		assert.ErrorIs(t, err, knowledge.ErrLoad)
		assert.Equal(t, StateReady, svc.State())

		resp, err := svc.ProcessQuery("What is EBITDA?")
		require.NoError(t, err)
		assert.True(t, resp.Matched)
		assert.Equal(t, 1, svc.Stats().TotalEntries)
	})

	t.Run("out of range threshold is rejected", func(t *testing.T) {
		svc, _ := readyService(t, single, WithThreshold(0.1))
		err := svc.UpdateThreshold(1.5)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, 0.1, svc.Threshold())
	})

	t.Run("shorter exact document ranks first", func(t *testing.T) {
		svc, _ := readyService(t, `[
			{"id": "a", "q": "dette nette", "a": "A."},
			{"id": "b", "q": "dette", "a": "B."}
		]`)
		results, err := svc.TopMatches("dette", 2)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "b", results[0].Entry.ID)
		if len(results) == 2 {
			assert.Equal(t, "a", results[1].Entry.ID)
			assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
		}
	})
}

func TestService_FindBestMatch(t *testing.T) {
	svc, _ := readyService(t, financeCorpus)

	t.Run("every question matches itself", func(t *testing.T) {
		kb := svc.kb.Snapshot()
		for i := range kb.Len() {
			entry, _ := kb.Entry(i)
			got, ok, err := svc.FindBestMatch(entry.Question)
			require.NoError(t, err)
			require.True(t, ok, entry.Question)
			assert.Equal(t, entry.ID, got.Entry.ID)
			assert.GreaterOrEqual(t, got.Score, 0.99)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		upper, okUpper, err := svc.FindBestMatch("EBITDA")
		require.NoError(t, err)
		lower, okLower, err := svc.FindBestMatch("ebitda")
		require.NoError(t, err)
		assert.Equal(t, okUpper, okLower)
		assert.Equal(t, upper, lower)
	})

	t.Run("paraphrase matches", func(t *testing.T) {
		got, ok, err := svc.FindBestMatch("how to calculate gross margin")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "faq#gross-margin", got.Entry.ID)
	})

	t.Run("scores stay in range", func(t *testing.T) {
		for _, q := range []string{"cash", "what is", "debt net", "CAPEX capex capex", "working capital"} {
			results, err := svc.TopMatches(q, 6)
			require.NoError(t, err)
			for _, r := range results {
				assert.GreaterOrEqual(t, r.Score, 0.0)
				assert.LessOrEqual(t, r.Score, 1.0)
			}
		}
	})
}

func TestService_ThresholdIsStrict(t *testing.T) {
	svc, _ := readyService(t, `[{"id": "e1", "q": "What is EBITDA?", "a": "A metric."}]`)

	// the exact question scores 1 (within rounding)
	match, ok, err := svc.FindBestMatch("What is EBITDA?")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.UpdateThreshold(match.Score))
	_, ok, err = svc.FindBestMatch("What is EBITDA?")
	require.NoError(t, err)
	assert.False(t, ok, "a score equal to the threshold is rejected")

	require.NoError(t, svc.UpdateThreshold(1.0))
	_, ok, err = svc.FindBestMatch("What is EBITDA?")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.UpdateThreshold(0.0))
	_, ok, err = svc.FindBestMatch("banana")
	require.NoError(t, err)
	assert.False(t, ok, "zero similarity never clears a zero threshold")
}

func TestService_ThresholdMonotonic(t *testing.T) {
	svc, _ := readyService(t, financeCorpus)
	queries := []string{"what is cash flow", "net debt", "margin", "capital", "EBITDA definition"}

	accepted := func(q string) int {
		results, err := svc.TopMatches(q, 6)
		require.NoError(t, err)
		return len(results)
	}

	for _, q := range queries {
		prev := -1
		for _, th := range []float64{0, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1} {
			require.NoError(t, svc.UpdateThreshold(th))
			n := accepted(q)
			if prev >= 0 {
				assert.LessOrEqual(t, n, prev, "query %q threshold %v", q, th)
			}
			prev = n
		}
	}
}

func TestService_TopMatches(t *testing.T) {
	svc, _ := readyService(t, financeCorpus, WithThreshold(0))

	t.Run("ranked, bounded and above threshold", func(t *testing.T) {
		results, err := svc.TopMatches("what is cash flow", 3)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), 3)
		require.NotEmpty(t, results)
		assert.Equal(t, "faq#fcf", results[0].Entry.ID)
		for i, r := range results {
			assert.Greater(t, r.Score, svc.Threshold())
			if i > 0 {
				assert.GreaterOrEqual(t, results[i-1].Score, r.Score)
			}
		}
	})

	t.Run("equal scores keep corpus order", func(t *testing.T) {
		tied, _ := readyService(t, `[
			{"id": "first", "q": "cash", "a": "1"},
			{"id": "other", "q": "debt", "a": "2"},
			{"id": "second", "q": "cash", "a": "3"}
		]`, WithThreshold(0))
		results, err := tied.TopMatches("cash", 3)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].Entry.ID)
		assert.Equal(t, "second", results[1].Entry.ID)
	})

	t.Run("empty query", func(t *testing.T) {
		results, err := svc.TopMatches("  ", 3)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("non-positive k yields nothing", func(t *testing.T) {
		for _, k := range []int{0, -3} {
			results, err := svc.TopMatches("What is EBITDA?", k)
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		}
	})
}

func TestService_UpdateThreshold(t *testing.T) {
	svc, _ := readyService(t, financeCorpus)

	for _, th := range []float64{0, 0.5, 1} {
		require.NoError(t, svc.UpdateThreshold(th))
		assert.Equal(t, th, svc.Threshold())
	}
	assert.ErrorIs(t, svc.UpdateThreshold(-0.01), ErrValidation)
	assert.Equal(t, 1.0, svc.Threshold())
}

func TestService_Reload(t *testing.T) {
	svc, src := readyService(t, financeCorpus)
	ctx := context.Background()

	t.Run("replaces corpus and model", func(t *testing.T) {
		src.set(`[{"id": "roe", "q": "How to compute return on equity?", "a": "Net income over equity."}]`, nil)
		require.NoError(t, svc.Reload(ctx))

		stats := svc.Stats()
		assert.Equal(t, uint64(2), stats.ModelVersion)
		assert.Equal(t, 1, stats.TotalEntries)

		resp, err := svc.ProcessQuery("return on equity")
		require.NoError(t, err)
		assert.True(t, resp.Matched)
		assert.Equal(t, []string{"roe"}, resp.Sources)

		resp, err = svc.ProcessQuery("What is EBITDA?")
		require.NoError(t, err)
		assert.False(t, resp.Matched)
	})

	t.Run("source error keeps serving", func(t *testing.T) {
		src.set("", errors.New("unreachable"))
		assert.ErrorIs(t, svc.Reload(ctx), knowledge.ErrLoad)
		assert.Equal(t, StateReady, svc.State())
		assert.Equal(t, uint64(2), svc.Stats().ModelVersion)
	})

	t.Run("reload initializes an uninitialized service", func(t *testing.T) {
		fresh, _ := newService(t, financeCorpus)
		require.NoError(t, fresh.Reload(ctx))
		assert.Equal(t, StateReady, fresh.State())
	})
}

func TestService_Stats(t *testing.T) {
	svc, _ := readyService(t, financeCorpus, WithThreshold(0.25))

	stats := svc.Stats()
	assert.True(t, stats.Initialized)
	assert.Equal(t, "ready", stats.State)
	assert.Equal(t, 0.25, stats.Threshold)
	assert.Equal(t, 6, stats.TotalEntries)
	assert.Equal(t, 6, stats.UniqueIDs)
	assert.True(t, stats.Loaded)
	assert.Equal(t, "mutable", stats.Source)
	assert.Positive(t, stats.VocabularySize)
	assert.Equal(t, [2]int{6, stats.VocabularySize}, stats.VectorsShape)
	assert.False(t, stats.FittedAt.IsZero())
}

func TestService_WithVectorizer(t *testing.T) {
	v, err := vectorize.New(vectorize.WithMaxFeatures(4))
	require.NoError(t, err)

	svc, _ := readyService(t, financeCorpus, WithVectorizer(v))
	assert.Equal(t, 4, svc.Stats().VocabularySize)
}

// recordingMonitor captures callbacks for assertions.
type recordingMonitor struct {
	mu      sync.Mutex
	starts  []string
	ranked  [][]search.Ranked
	finals  [][]core.MatchResult
	vectors int
}

func (m *recordingMonitor) Start(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts = append(m.starts, query)
}

func (m *recordingMonitor) AfterTransform(_ vectorize.Vector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors++
}

func (m *recordingMonitor) AfterRanking(ranked []search.Ranked) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranked = append(m.ranked, ranked)
}

func (m *recordingMonitor) Finish(results []core.MatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finals = append(m.finals, results)
}

func TestService_Monitor(t *testing.T) {
	mon := &recordingMonitor{}
	svc, _ := readyService(t, financeCorpus, WithMonitor(mon))

	_, _, err := svc.FindBestMatch("  What is EBITDA?  ")
	require.NoError(t, err)
	_, err = svc.TopMatches("cash flow", 2)
	require.NoError(t, err)
	_, _, err = svc.FindBestMatch("   ")
	require.NoError(t, err)

	assert.Equal(t, []string{"What is EBITDA?", "cash flow"}, mon.starts, "blank queries never reach the vectorizer")
	assert.Equal(t, 2, mon.vectors)
	require.Len(t, mon.ranked, 2)
	assert.Len(t, mon.ranked[0], 1)
	assert.Len(t, mon.ranked[1], 2)
	require.Len(t, mon.finals, 2)
	require.Len(t, mon.finals[0], 1)
	assert.Equal(t, "faq#ebitda", mon.finals[0][0].Entry.ID)
}

func TestService_ConcurrentQueriesDuringReload(t *testing.T) {
	const corpusA = `[{"id": "a1", "q": "What is EBITDA?", "a": "A"}, {"id": "a2", "q": "What is free cash flow?", "a": "A"}]`
	const corpusB = `[{"id": "b1", "q": "What is EBITDA?", "a": "B"}, {"id": "b2", "q": "What is free cash flow?", "a": "B"}, {"id": "b3", "q": "What is net debt?", "a": "B"}]`

	svc, src := readyService(t, corpusA)
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				resp, err := svc.ProcessQuery("What is EBITDA?")
				if !assert.NoError(t, err) || !assert.True(t, resp.Matched) {
					return
				}
				// answer and source always come from the same generation
				switch resp.Sources[0] {
				case "a1":
					assert.Equal(t, "A", resp.Answer)
				case "b1":
					assert.Equal(t, "B", resp.Answer)
				default:
					t.Errorf("unexpected source %q", resp.Sources[0])
				}

				stats := svc.Stats()
				assert.Equal(t, stats.TotalEntries, stats.VectorsShape[0])
			}
		}()
	}

	for i := range 20 {
		if i%2 == 0 {
			src.set(corpusB, nil)
		} else {
			src.set(corpusA, nil)
		}
		require.NoError(t, svc.Reload(ctx))
		if i%5 == 0 {
			require.NoError(t, svc.UpdateThreshold(0.2+float64(i%3)*0.1))
		}
	}
	close(stop)
	wg.Wait()
}
