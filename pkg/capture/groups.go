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
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"

	"github.com/NVIDIA/xm-capture/pkg/record"
	"github.com/NVIDIA/xm-capture/pkg/xmclient"
)

// CaptureGroups writes one {"group": ..., "shifts": [...]} entry per group.
// The group's site reference is replaced by the site name.
func (s *Session) CaptureGroups(ctx context.Context) *TypeReport {
	return s.captureCollection(ctx, Groups, "groups", s.Options.GroupsPath, s.group)
}

func (s *Session) group(ctx context.Context, item *record.Record) (any, bool) {
	log := s.log.With("type", Groups, "id", item.ID(), "targetName", item.TargetName())
	log.Info("capturing group")

	if item.ID() == "" {
		log.Warn("group skipped, no id")
		return nil, false
	}

	group, err := s.Client.GetRecord(ctx, "groups/"+url.PathEscape(item.ID()),
		url.Values{"embed": {"supervisors"}})
	if err != nil {
		xmclient.LogError(ctx, log, "group skipped, detail lookup failed", err)
		return nil, false
	}
	s.resolveSite(ctx, log, group)

	id := group.ID()
	if id == "" {
		id = item.ID()
	}
	shifts, err := s.Client.Collect(ctx, "groups/"+url.PathEscape(id)+"/shifts",
		url.Values{"embed": {"members"}})
	if err != nil {
		xmclient.LogError(ctx, log, "shift traversal incomplete", err, "kept", len(shifts))
	}
	if shifts == nil {
		shifts = []*record.Record{}
	}
	log.Debug("shifts collected", "count", len(shifts))

	entry := record.New()
	if err := errors.Join(entry.Set("group", group), entry.Set("shifts", shifts)); err != nil {
		log.Error("group skipped, cannot encode entry", "error", err)
		return nil, false
	}
	return entry, true
}

// resolveSite rewrites "site": {"id": ...} to "site": "<name>", or null when
// the site cannot be resolved. Groups without a site are left alone.
func (s *Session) resolveSite(ctx context.Context, log *slog.Logger, group *record.Record) {
	if !group.Has("site") {
		return
	}

	siteID, _ := group.Path("site", "id")
	if siteID != "" {
		if name, found := s.Sites.Resolve(ctx, siteID); found {
			if err := group.Set("site", name); err == nil {
				return
			}
		}
	}

	log.Warn("group site unresolved", "site", siteID)
	group.SetRaw("site", json.RawMessage("null"))
}
