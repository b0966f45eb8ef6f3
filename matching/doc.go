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


// Package matching answers free-text questions from a knowledge base.
//
// A Service fits a TF-IDF model on the questions of a knowledge.Base and
// answers queries with the entry whose question is most similar, provided
// the similarity exceeds the active threshold. The service moves through
// the states Uninitialized, Initializing, Ready and Reloading; queries are
// served only once a model has been published.
//
// The corpus snapshot and the model fitted on it form a generation. Reload
// builds a new generation aside and publishes it with one atomic store, so
// concurrent queries see either the previous generation or the new one in
// full. Threshold updates are a single atomic store as well.
//
// Basic usage:
//
//	kb, _ := knowledge.New(knowledge.NewFileSource("data/faq.json"))
//	svc, _ := matching.New(kb, matching.WithThreshold(0.3))
//	if err := svc.Initialize(ctx); err != nil {
//		return err
//	}
//	resp, _ := svc.ProcessQuery("What is EBITDA?")
package matching
