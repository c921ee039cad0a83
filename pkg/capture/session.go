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
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/NVIDIA/xm-capture/pkg/aggregate"
	"github.com/NVIDIA/xm-capture/pkg/cache"
	"github.com/NVIDIA/xm-capture/pkg/config"
	"github.com/NVIDIA/xm-capture/pkg/defaults"
	"github.com/NVIDIA/xm-capture/pkg/record"
	"github.com/NVIDIA/xm-capture/pkg/xmclient"
)

// Options tunes the capture routines.
type Options struct {
	CompanyAdminRole string
	DeviceSeparator  string
	DevicesNotFound  config.DevicesNotFound

	// Parallel runs users concurrently with the sites then groups chain.
	Parallel bool

	SitesPath  string
	UsersPath  string
	GroupsPath string
	AdminPath  string
}

// OptionsFromConfig maps a validated configuration onto Options.
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		CompanyAdminRole: c.CompanyAdminRole,
		DeviceSeparator:  c.DeviceSeparator,
		DevicesNotFound:  c.DevicesNotFound,
		Parallel:         c.Parallel,
		SitesPath:        c.SitesPath(),
		UsersPath:        c.UsersPath(),
		GroupsPath:       c.GroupsPath(),
		AdminPath:        c.AdminPath(),
	}
}

// Session is the state shared by every routine of one capture run: the API
// client, the site name cache and the metadata aggregator.
type Session struct {
	Client  *xmclient.Client
	Sites   *cache.Lookup[string, string]
	Meta    *aggregate.Aggregator
	Options Options
	RunID   string

	log *slog.Logger
}

// NewSession creates a Session with a fresh cache, aggregator and run id.
func NewSession(client *xmclient.Client, opts Options) *Session {
	if opts.CompanyAdminRole == "" {
		opts.CompanyAdminRole = defaults.CompanyAdminRole
	}
	if opts.DeviceSeparator == "" {
		opts.DeviceSeparator = defaults.DeviceKeySeparator
	}
	if opts.DevicesNotFound == "" {
		opts.DevicesNotFound = config.DevicesEmpty
	}

	runID := uuid.NewString()
	s := &Session{
		Client:  client,
		Meta:    aggregate.New(),
		Options: opts,
		RunID:   runID,
		log:     slog.Default().With("run", runID),
	}
	s.Sites = cache.New("sites", s.lookupSiteName)
	return s
}

func (s *Session) lookupSiteName(ctx context.Context, id string) (string, error) {
	site, err := s.Client.GetRecord(ctx, "sites/"+url.PathEscape(id), nil)
	if err != nil {
		xmclient.LogError(ctx, s.log, "site lookup failed", err, "site", id)
		return "", err
	}
	return site.Name(), nil
}

// observe records a metadata value. Failures only happen after the final
// flush and are logged.
func (s *Session) observe(category aggregate.Category, value string) {
	if err := s.Meta.Add(category, value); err != nil {
		s.log.Warn("metadata value dropped", "category", category, "value", value, "error", err)
	}
}

func (s *Session) observeField(category aggregate.Category, r *record.Record, key string) {
	if v, ok := r.String(key); ok {
		s.observe(category, v)
	}
}
