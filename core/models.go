package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored records.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FAQEntry is a single curated question/answer pair.
// The wire names (id, q, a) match the corpus file format.
type FAQEntry struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"q" yaml:"q"`
	Answer   string `json:"a" yaml:"a"`
}

// Fingerprint returns a content ID covering the ordered corpus.
// Two corpora with the same entries in the same order share a fingerprint.
func Fingerprint(entries []FAQEntry) ID {
	h, _ := blake2b.New(8, nil)
	for _, e := range entries {
		h.Write([]byte(e.ID))
		h.Write([]byte{0})
		h.Write([]byte(e.Question))
		h.Write([]byte{0})
		h.Write([]byte(e.Answer))
		h.Write([]byte{0x1e})
	}
	return ID(binary.LittleEndian.Uint64(h.Sum(nil)))
}

// MatchResult pairs a corpus entry with its similarity to a query.
// Score is in [0, 1].
type MatchResult struct {
	Entry FAQEntry
	Score float64
}

// Interaction records one answered query.
type Interaction struct {
	Id        ID
	Query     string
	Sources   []string  // IDs of the entries used for the answer; empty on fallback
	Score     float64
	Matched   bool
	Timestamp time.Time // When the query was answered
}
