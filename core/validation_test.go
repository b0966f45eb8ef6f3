package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *FAQEntry
		wantErr error
	}{
		{
			name:    "valid entry",
			entry:   &FAQEntry{ID: "faq#ebitda", Question: "What is EBITDA?", Answer: "An operating metric."},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "empty id",
			entry:   &FAQEntry{ID: "", Question: "q", Answer: "a"},
			wantErr: ErrEmptyID,
		},
		{
			name:    "whitespace id",
			entry:   &FAQEntry{ID: "  \t", Question: "q", Answer: "a"},
			wantErr: ErrEmptyID,
		},
		{
			name:    "whitespace question",
			entry:   &FAQEntry{ID: "x", Question: "   ", Answer: "a"},
			wantErr: ErrEmptyQuestion,
		},
		{
			name:    "empty answer",
			entry:   &FAQEntry{ID: "x", Question: "q", Answer: "\n"},
			wantErr: ErrEmptyAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("ValidateEntry() error = %v, should wrap ErrInvalidEntry", err)
			}
		})
	}
}

func TestValidateInteraction(t *testing.T) {
	past := time.Now().Add(-1 * time.Minute)

	tests := []struct {
		name        string
		interaction *Interaction
		wantErr     error
	}{
		{
			name:        "valid match",
			interaction: &Interaction{Query: "q", Sources: []string{"e1"}, Score: 0.8, Matched: true, Timestamp: past},
		},
		{
			name:        "valid fallback",
			interaction: &Interaction{Query: "q", Timestamp: past},
		},
		{
			name:        "nil",
			interaction: nil,
			wantErr:     ErrInvalidInteraction,
		},
		{
			name:        "score above one",
			interaction: &Interaction{Query: "q", Score: 1.2, Timestamp: past},
			wantErr:     ErrScoreOutOfRange,
		},
		{
			name:        "negative score",
			interaction: &Interaction{Query: "q", Score: -0.1, Timestamp: past},
			wantErr:     ErrScoreOutOfRange,
		},
		{
			name:        "future timestamp",
			interaction: &Interaction{Query: "q", Timestamp: time.Now().Add(time.Hour)},
			wantErr:     ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInteraction(tt.interaction)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateInteraction() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateInteraction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
