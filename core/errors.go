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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates an FAQEntry failed validation.
	ErrInvalidEntry = errors.New("invalid FAQ entry")

	// ErrEmptyID indicates the id field is empty after trimming.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyQuestion indicates the question field is empty after trimming.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the answer field is empty after trimming.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrInvalidInteraction indicates an Interaction failed validation.
	ErrInvalidInteraction = errors.New("invalid interaction")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrScoreOutOfRange indicates a similarity score outside [0, 1].
	ErrScoreOutOfRange = errors.New("score must be between 0 and 1")
)
