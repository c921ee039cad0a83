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

package capture

import (
	"context"

	"github.com/NVIDIA/xm-capture/pkg/aggregate"
	"github.com/NVIDIA/xm-capture/pkg/record"
)

// CaptureSites writes every site as returned by the API and pre-warms the
// site name cache for the groups pass.
func (s *Session) CaptureSites(ctx context.Context) *TypeReport {
	return s.captureCollection(ctx, Sites, "sites", s.Options.SitesPath, s.site)
}

func (s *Session) site(_ context.Context, site *record.Record) (any, bool) {
	s.log.Info("capturing site", "type", Sites, "id", site.ID(), "name", site.Name())

	if id := site.ID(); id != "" {
		s.Sites.Put(id, site.Name())
	}
	s.observeField(aggregate.Languages, site, "language")
	s.observeField(aggregate.Timezones, site, "timezone")
	s.observeField(aggregate.Countries, site, "country")
	return site, true
}
