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

// Package xmclient is the HTTP side of the capture engine: an authenticated
// client for the xMatters REST API and a Pager that walks offset/limit
// collections.
//
// # Pagination
//
// Collections answer with
//
//	{"total": 250, "count": 100, "data": [...], "links": {"next": "/api/xm/1/people?offset=100&limit=100"}}
//
// The first request of a collection is built from the API root and the
// configured page size; every following request uses links.next appended to
// the service root. The traversal ends at the first page without a next link.
//
// # Errors
//
// The client never retries. Failures are pkg/errors StructuredErrors:
//   - TRANSPORT_FAILURE: no response (connection error, timeout, cancellation)
//   - NOT_FOUND: HTTP 404, wrapping a *StatusError
//   - UNEXPECTED_STATUS: any other non-200 status or a malformed body
//
// LogError logs them with the URL and the server's code, reason and message,
// at WARN for 404 and ERROR otherwise.
//
// # Usage
//
//	c, err := xmclient.New("https://acme.xmatters.com",
//	    xmclient.WithBasicAuth(user, pass),
//	    xmclient.WithPageSize(100),
//	)
//	p := c.Pages("sites", nil)
//	for p.Next(ctx) {
//	    for _, site := range p.Page().Data { ... }
//	}
//	if err := p.Err(); err != nil {
//	    xmclient.LogError(ctx, slog.Default(), "site traversal aborted", err)
//	}
package xmclient
