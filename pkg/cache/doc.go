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

// Package cache provides Lookup, a generic read-through cache used to turn
// ids into display values (site id to site name) during a capture run.
//
// A Lookup never diverges from its source within a run: the first outcome
// for a key, success or failure, is the only one ever observed.
//
//	sites := cache.New("sites", func(ctx context.Context, id string) (string, error) {
//	    r, err := client.GetRecord(ctx, "sites/"+url.PathEscape(id), nil)
//	    if err != nil {
//	        return "", err
//	    }
//	    return r.Name(), nil
//	})
//	sites.Put("site-1", "Headquarters") // pre-warm from a traversal
//	name, found := sites.Resolve(ctx, "site-2")
package cache
