package knowledge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/faqmatch/core"
	"gopkg.in/yaml.v3"
)

var requiredFields = []string{"id", "q", "a"}

// Parse decodes and validates an encoded corpus.
func Parse(data []byte, format Format) ([]core.FAQEntry, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidContent, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidContent, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, ErrNotList
	}
	if len(items) == 0 {
		return nil, ErrEmptyCorpus
	}

	entries := make([]core.FAQEntry, len(items))
	for i, item := range items {
		entry, err := decodeEntry(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries[i] = entry
	}
	return entries, nil
}

// ValidateEntries checks already decoded entries with the same rules Parse
// applies.
func ValidateEntries(entries []core.FAQEntry) error {
	if len(entries) == 0 {
		return ErrEmptyCorpus
	}
	for i := range entries {
		if err := core.ValidateEntry(&entries[i]); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func decodeEntry(item any) (core.FAQEntry, error) {
	record, ok := item.(map[string]any)
	if !ok {
		return core.FAQEntry{}, ErrNotRecord
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := record[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return core.FAQEntry{}, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	values := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		s, ok := record[field].(string)
		if !ok {
			return core.FAQEntry{}, fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		values[field] = s
	}

	entry := core.FAQEntry{ID: values["id"], Question: values["q"], Answer: values["a"]}
	if err := core.ValidateEntry(&entry); err != nil {
		return core.FAQEntry{}, err
	}
	return entry, nil
}
