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


// Package search ranks fitted document vectors against a query vector.
//
// Vectors produced by the vectorize package are unit length with
// non-negative weights, so cosine similarity reduces to a sparse dot
// product bounded to [0, 1]. Best picks the single highest-scoring row;
// TopK returns a ranked list, breaking score ties by ascending row index.
// Neither function applies a threshold: callers decide what to accept.
//
// A Monitor receives callbacks at each stage of a match so callers can
// observe query vectors and rankings without changing results.
package search
