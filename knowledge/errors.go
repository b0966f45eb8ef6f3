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


package knowledge

import "errors"

var (
	// ErrLoad wraps every failure to load a corpus.
	ErrLoad = errors.New("knowledge base load failed")

	// ErrSourceRequired is returned when a Base is created without a source.
	ErrSourceRequired = errors.New("source required")

	// ErrSourceNotFound is returned when a source has nothing to read.
	ErrSourceNotFound = errors.New("FAQ source not found")

	// ErrInvalidContent is returned when content is not valid JSON or YAML.
	ErrInvalidContent = errors.New("invalid FAQ content")

	// ErrNotList is returned when the top-level value is not a list.
	ErrNotList = errors.New("FAQ data must be a list of entries")

	// ErrEmptyCorpus is returned when the list has no entries.
	ErrEmptyCorpus = errors.New("FAQ data cannot be empty")

	// ErrNotRecord is returned when a list element is not a record.
	ErrNotRecord = errors.New("FAQ entry must be a record")

	// ErrMissingFields is returned when a record lacks id, q or a.
	ErrMissingFields = errors.New("FAQ entry missing required fields")

	// ErrInvalidField is returned when a required field is not a string.
	ErrInvalidField = errors.New("FAQ entry field must be a string")

	// ErrUnsupportedFormat is returned for content formats other than JSON and YAML.
	ErrUnsupportedFormat = errors.New("unsupported FAQ format")

	// ErrInvalidMaxAttempts is returned when retries are configured with fewer than one attempt.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
