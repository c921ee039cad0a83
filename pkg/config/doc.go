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

// Package config loads and validates capture configuration.
//
// A configuration file is JSON or YAML, picked by extension:
//
//	kind: CaptureConfig
//	apiVersion: xmcapture/v1
//	url: https://acme.xmatters.com
//	username: capture-bot
//	pageSize: 500
//	companyAdminRole: Company Admin
//	devicesNotFound: empty   # or omit
//	rateLimit: 10            # requests per second, 0 = unlimited
//	timeout: 30s
//	output:
//	  dir: ./capture
//
// The password is usually supplied through XMCAPTURE_PASSWORD rather than
// the file. Command line flags override file values.
package config
