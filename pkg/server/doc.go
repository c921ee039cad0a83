// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package server runs the optional status endpoint of a capture run.
//
// A capture of a large instance can take hours. While it runs, the server
// answers liveness and readiness probes, exposes the process Prometheus
// registry on /metrics and serves caller supplied routes (the CLI adds
// /v1/status) behind a middleware chain:
//
//   - request ids (X-Request-Id, validated as UUID)
//   - panic recovery
//   - token bucket rate limiting (golang.org/x/time/rate)
//   - request logging and RED metrics
//
// Usage:
//
//	srv := server.New(
//	    server.WithAddress("127.0.0.1:9090"),
//	    server.WithHandler(map[string]http.HandlerFunc{"/v1/status": h}),
//	)
//	srv.SetReady(true)
//	err := srv.Start(ctx) // returns after ctx is done and shutdown completes
//
// Errors use a fixed JSON body:
//
//	{"code":"RATE_LIMIT_EXCEEDED","message":"...","requestId":"...","timestamp":"...","retryable":true}
package server
