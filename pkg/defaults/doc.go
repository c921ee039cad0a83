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

// Package defaults provides centralized configuration constants for xmcapture.
//
// This package defines timeout values, page sizes, output file names and other
// configuration defaults used across the codebase. Centralizing these values
// ensures consistency and makes tuning easier.
//
// # Categories
//
//   - HTTP client timeouts: For outbound requests to the xMatters API
//   - CLI timeouts: Upper bound for a complete capture run
//   - Capture defaults: API root, page size, admin role, device key separator
//   - Output file names: One JSON array per object type plus the admin metadata file
//
// # Usage
//
//	import "github.com/NVIDIA/xm-capture/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CLICaptureTimeout)
//	defer cancel()
package defaults
