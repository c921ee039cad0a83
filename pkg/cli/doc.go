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

// Package cli implements the xmcapture command line.
//
// # Commands
//
// capture - Capture instance data:
//
//	xmcapture capture --config capture.yaml all
//	xmcapture capture --url https://acme.xmatters.com --username bot sites groups
//
// Writes sites.json, users.json, groups.json and admin.json to the output
// directory and prints a run report. Object types are sites, users, devices
// (implies users), groups, or all.
//
// version - Print version information:
//
//	xmcapture version
//
// # Configuration
//
// Settings are layered: built-in defaults, then the --config file (JSON or
// YAML), then flags. Flags also read XMCAPTURE_* environment variables, e.g.
// XMCAPTURE_URL, XMCAPTURE_USERNAME and XMCAPTURE_PASSWORD.
//
// # Global Flags
//
//	--log-level    debug, info, warn, error (default: info, env LOG_LEVEL)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Report
//
//	--report, -o   Report file path (default: stdout)
//	--format, -t   yaml, json, table (default: yaml)
//
// # Monitoring
//
//	--status-addr   serve /health, /ready, /metrics and /v1/status during the run
//	--metrics-file  write run metrics in Prometheus text format when the run ends
//
// # Exit Codes
//
//	0  All selected types captured and metadata written
//	1  Invalid input, or the run finished incomplete (see log)
//
// SIGINT and SIGTERM cancel the in-flight request; open files are still
// closed as valid JSON and the metadata file is still written.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/xm-capture/pkg/cli.version=1.0.0'"
package cli
