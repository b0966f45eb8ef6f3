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


// Package vectorize turns text into sparse TF-IDF vectors.
//
// A Vectorizer is fitted on an ordered set of documents and produces an
// immutable Model holding:
//   - the vocabulary of lower-cased unigrams and bigrams
//   - a smoothed inverse document frequency per term
//   - one L2-normalized row per document
//
// Models are never mutated after Fit returns, so any number of goroutines
// may call Transform concurrently. Refitting produces a new Model.
package vectorize
