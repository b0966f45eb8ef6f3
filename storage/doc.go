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

// Package storage provides the storage abstraction layer for faqmatch.
//
// This package defines repository interfaces that decouple persistence from
// the matching engine. Two kinds of data are stored:
//
//   - EntryRepository: a persisted copy of the FAQ corpus, kept in corpus order
//     so it can serve as a knowledge source.
//   - InteractionRepository: answered queries recorded by the serving layer.
//
// Computed vectors are never persisted; the corpus is re-vectorized on every
// load.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	entries, interactions, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
