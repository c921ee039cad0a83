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

package defaults

import "time"

// HTTP client timeouts for outbound requests to the xMatters API.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 20 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinueTimeout is the timeout for Expect: 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second
)

// Status server timeouts.
const (
	// ServerReadHeaderTimeout bounds reading request headers.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 10 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLICaptureTimeout bounds a complete capture run. Large instances take a while.
	CLICaptureTimeout = 6 * time.Hour
)

// Capture defaults.
const (
	// APIPath is the REST API root appended to the instance URL.
	APIPath = "/api/xm/1"

	// PageSize is the number of records requested per page.
	PageSize = 100

	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 1000

	// CompanyAdminRole is the role name that marks a user as administrator.
	CompanyAdminRole = "Company Admin"

	// DeviceKeySeparator joins device type and name in the devices metadata set.
	DeviceKeySeparator = "|"

	// UserAgent is sent with every API request.
	UserAgent = "xmcapture/1.0"
)

// Output file names, relative to the output directory.
const (
	SitesFilename  = "sites.json"
	UsersFilename  = "users.json"
	GroupsFilename = "groups.json"
	AdminFilename  = "admin.json"
)
