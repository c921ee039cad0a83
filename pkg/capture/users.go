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
	"errors"
	"log/slog"
	"net/url"

	"github.com/NVIDIA/xm-capture/pkg/aggregate"
	"github.com/NVIDIA/xm-capture/pkg/config"
	"github.com/NVIDIA/xm-capture/pkg/record"
	"github.com/NVIDIA/xm-capture/pkg/xmclient"
)

// CaptureUsers writes one {"user": ..., "devices": [...]} entry per person.
// The user is the detail record with roles and supervisors embedded; devices
// are only fetched when includeDevices is set.
func (s *Session) CaptureUsers(ctx context.Context, includeDevices bool) *TypeReport {
	return s.captureCollection(ctx, Users, "people", s.Options.UsersPath,
		func(ctx context.Context, item *record.Record) (any, bool) {
			return s.user(ctx, item, includeDevices)
		})
}

func (s *Session) user(ctx context.Context, item *record.Record, includeDevices bool) (any, bool) {
	log := s.log.With("type", Users, "id", item.ID(), "targetName", item.TargetName())
	log.Info("capturing user")

	if item.ID() == "" {
		log.Warn("user skipped, no id")
		return nil, false
	}

	user, err := s.Client.GetRecord(ctx, "people/"+url.PathEscape(item.ID()),
		url.Values{"embed": {"roles,supervisors"}})
	if err != nil {
		xmclient.LogError(ctx, log, "user skipped, detail lookup failed", err)
		return nil, false
	}
	s.observeUser(user)

	entry := record.New()
	errs := []error{entry.Set("user", user)}
	if includeDevices {
		id := user.ID()
		if id == "" {
			id = item.ID()
		}
		if devices, keep := s.devices(ctx, log, id); keep {
			errs = append(errs, entry.Set("devices", devices))
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Error("user skipped, cannot encode entry", "error", err)
		return nil, false
	}
	return entry, true
}

// devices returns the user's devices and whether the field belongs in the
// entry. A missing collection follows the DevicesNotFound policy; any other
// failure keeps what was gathered before it.
func (s *Session) devices(ctx context.Context, log *slog.Logger, userID string) ([]*record.Record, bool) {
	items, err := s.Client.Collect(ctx, "people/"+url.PathEscape(userID)+"/devices",
		url.Values{"embed": {"timeframes"}})
	if err != nil {
		xmclient.LogError(ctx, log, "device traversal incomplete", err, "kept", len(items))
		if xmclient.IsNotFound(err) && len(items) == 0 && s.Options.DevicesNotFound == config.DevicesOmit {
			return nil, false
		}
	}

	for _, d := range items {
		s.observeDevice(d)
	}
	log.Debug("devices collected", "count", len(items))

	if items == nil {
		items = []*record.Record{}
	}
	return items, true
}

func (s *Session) observeUser(user *record.Record) {
	s.observeField(aggregate.Languages, user, "language")
	s.observeField(aggregate.Timezones, user, "timezone")

	for _, role := range user.Items("roles") {
		name := role.Name()
		s.observe(aggregate.Roles, name)
		if name != "" && name == s.Options.CompanyAdminRole {
			s.observe(aggregate.Admins, user.TargetName())
		}
	}
}

func (s *Session) observeDevice(device *record.Record) {
	for _, tf := range device.Items("timeframes") {
		s.observeField(aggregate.Timezones, tf, "timezone")
	}

	deviceType, _ := device.String("deviceType")
	if deviceType != "" || device.Name() != "" {
		s.observe(aggregate.Devices, deviceType+s.Options.DeviceSeparator+device.Name())
	}

	if carrier, ok := device.Path("provider", "id"); ok {
		s.observe(aggregate.USPs, carrier)
	}
}
