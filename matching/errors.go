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


package matching

import "errors"

var (
	// ErrNotReady is returned when a query arrives before a model is published,
	// or when initialization finds no questions to fit.
	ErrNotReady = errors.New("FAQ service not initialized")

	// ErrValidation is returned for out of range arguments such as thresholds
	// outside [0, 1].
	ErrValidation = errors.New("validation failed")

	// ErrKnowledgeBaseRequired is returned when a Service is created without a knowledge base.
	ErrKnowledgeBaseRequired = errors.New("knowledge base required")
)
