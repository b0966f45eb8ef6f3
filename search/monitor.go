package search

import (
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/vectorize"
)

// Monitor provides hooks to observe the matching process.
// Implement this interface to track intermediate steps and results.
type Monitor interface {
	Start(query string)
	AfterTransform(query vectorize.Vector)
	AfterRanking(ranked []Ranked)
	Finish(results []core.MatchResult)
}

// NoopMonitor ignores every callback.
type NoopMonitor struct{}

var _ Monitor = NoopMonitor{}

func (NoopMonitor) Start(_ string)                    {}
func (NoopMonitor) AfterTransform(_ vectorize.Vector) {}
func (NoopMonitor) AfterRanking(_ []Ranked)           {}
func (NoopMonitor) Finish(_ []core.MatchResult)       {}
