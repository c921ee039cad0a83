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

// Package aggregate collects the distinct metadata values observed while
// capturing an instance: administrator names, roles, timezones, countries,
// languages, device keys and carriers (usps).
//
// Values are plain strings kept in k8s.io/apimachinery sets, so repeated
// observations from different passes (a timezone seen on a site, a user and
// a device timeframe) collapse into one entry. At the end of a run the sets
// are written once as a single object of sorted arrays:
//
//	{
//	  "admins": ["jdoe"],
//	  "roles": ["Company Admin", "Standard User"],
//	  "timezones": ["America/New_York"],
//	  "countries": ["US"],
//	  "languages": ["en"],
//	  "devices": ["EMAIL|Work Email"],
//	  "usps": ["att"]
//	}
package aggregate
