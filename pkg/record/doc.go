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

// Package record models the schema-less entities returned by the xMatters
// REST API.
//
// A Record is an ordered JSON object whose values stay raw until read. The
// capture engine passes most fields through untouched and only reads or
// rewrites a handful (id, targetName, site, roles, timeframes, deviceType,
// provider.id), so records keep their original field order and number
// formatting when written back to disk.
//
// Page is the envelope of a collection response:
//
//	{"total": 3, "count": 2, "data": [...], "links": {"next": "/api/xm/1/sites?offset=2&limit=2"}}
package record
