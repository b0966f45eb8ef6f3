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


// Package knowledge loads and serves the ordered FAQ corpus.
//
// A Base reads entries from a Source, validates every record before it
// enters the corpus, and publishes the result as an immutable Snapshot.
// Reloading builds a new Snapshot and swaps it in with a single atomic
// store, so readers always observe either the old corpus or the new one.
// A failed reload leaves the previous Snapshot in place.
//
// Sources:
//   - FileSource reads a JSON or YAML file
//   - BytesSource serves in-memory content
//   - RepositorySource reads entries persisted in a storage.EntryRepository
//
// Entries are records with the string fields id, q and a. All three must
// be non-empty after trimming whitespace. Duplicate ids are counted in
// Stats but not rejected; GetByID returns the first entry with a given id.
package knowledge
