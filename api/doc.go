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


// Package api serves the matching service over HTTP.
//
// Routes:
//   - GET  /                 service information
//   - POST /chat             answer one message
//   - GET  /health           readiness and corpus size
//   - GET  /stats            service and corpus statistics
//   - POST /search           top five matches with scores
//   - POST /admin/reload     reload the corpus and refit
//   - PUT  /admin/threshold  change the similarity threshold
//
// Every request gets an X-Request-ID and an access log line. Errors are
// returned as {"detail": "..."}. If the service failed to initialize at
// startup, the first request that needs it tries again.
package api
