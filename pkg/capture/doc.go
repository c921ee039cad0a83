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

// Package capture exports the object inventory of an xMatters instance to
// local JSON files.
//
// # Passes
//
// A run captures up to three object types, always in this order:
//
//   - sites: every site as returned by the API, written to sites.json. Site
//     names are cached for the groups pass.
//   - users: every person, re-read with roles and supervisors embedded, and
//     optionally their devices (with timeframes), written as
//     {"user": {...}, "devices": [...]} to users.json.
//   - groups: every group, re-read with supervisors embedded, its site id
//     replaced by the site name and its shifts (with members) attached,
//     written as {"group": {...}, "shifts": [...]} to groups.json.
//
// Each file is a JSON array streamed element by element and closed on every
// exit path, so a pass that fails halfway still leaves a valid file holding
// the records written so far.
//
// # Failure handling
//
// Nothing is fatal. A failed collection request ends that pass; the next pass
// still runs. A failed detail lookup skips that single record. A 404 from a
// device or shift collection means an empty list. Every failure is logged
// with its URL and the server's error payload.
//
// # Metadata
//
// While the passes run, distinct languages, timezones, countries, roles,
// administrator names, device keys (deviceType|name) and carriers are
// collected and written once to admin.json when the run ends.
//
// # Usage
//
//	client, _ := xmclient.New(cfg.URL, xmclient.WithBasicAuth(cfg.Username, cfg.Password))
//	session := capture.NewSession(client, capture.OptionsFromConfig(cfg))
//	sel, _ := capture.ParseSelection("all")
//	report, err := capture.NewCapturer(version, session).Run(ctx, sel)
package capture
