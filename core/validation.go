// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateEntry checks that all three fields of an entry are non-empty
// after trimming whitespace.
func ValidateEntry(entry *FAQEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyID)
	}

	if strings.TrimSpace(entry.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyQuestion)
	}

	if strings.TrimSpace(entry.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyAnswer)
	}

	return nil
}

// ValidateInteraction validates an interaction before it is stored.
func ValidateInteraction(interaction *Interaction) error {
	if interaction == nil {
		return fmt.Errorf("%w: interaction is nil", ErrInvalidInteraction)
	}

	if interaction.Score < 0 || interaction.Score > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrScoreOutOfRange)
	}

	if !IsValidTimestamp(interaction.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp reports whether ts is not in the future.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
