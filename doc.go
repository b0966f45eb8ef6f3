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


// Package faqmatch wires the FAQ matching engine together.
//
// Open builds the storage backend, the knowledge base and the matching
// service from a config.Config and returns them as an Engine. The caller
// owns the Engine and passes it to whatever serves queries.
//
//	eng, err := faqmatch.Open(config.NewConfig(config.WithFAQFile("data/faq.json")))
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//	if err := eng.Service().Initialize(ctx); err != nil {
//		return err
//	}
//	resp, err := eng.Service().ProcessQuery("What is EBITDA?")
package faqmatch
