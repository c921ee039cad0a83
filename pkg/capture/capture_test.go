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
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/xm-capture/pkg/aggregate"
	"github.com/NVIDIA/xm-capture/pkg/config"
)

func TestCaptureSites_FollowsPages(t *testing.T) {
	f := newFakeXM()
	f.collections["sites"] = []string{
		`{"id":"A","name":"Alpha","language":"en","timezone":"America/New_York","country":"US","latitude":40.70}`,
		`{"id":"B","name":"Beta","language":"fr","timezone":"Europe/Paris","country":"FR"}`,
		`{"id":"C","name":"Gamma","language":"en","country":"US"}`,
	}
	s := newTestSession(t, f)

	tr := s.CaptureSites(context.Background())

	require.False(t, tr.Failed(), tr.Error)
	assert.Equal(t, 3, tr.Retrieved)
	assert.Equal(t, 3, tr.Written)
	assert.Equal(t, 2, tr.Pages)

	raw := readRawArray(t, s.Options.SitesPath)
	require.Len(t, raw, 3)
	assert.JSONEq(t, f.collections["sites"][0], string(raw[0]))
	assert.Contains(t, string(raw[0]), `"latitude":40.70`, "numbers pass through untouched")

	sites := readArray(t, s.Options.SitesPath)
	assert.Equal(t, []any{"A", "B", "C"}, []any{sites[0]["id"], sites[1]["id"], sites[2]["id"]})

	md := s.Meta.Snapshot()
	assert.Equal(t, []string{"en", "fr"}, md.Languages)
	assert.Equal(t, []string{"FR", "US"}, md.Countries)
	assert.Equal(t, []string{"America/New_York", "Europe/Paris"}, md.Timezones)

	name, found := s.Sites.Resolve(context.Background(), "B")
	assert.True(t, found)
	assert.Equal(t, "Beta", name)
	assert.Zero(t, f.hitCount("sites/B"), "pre-warmed site must not be fetched")
}

func TestCaptureSites_EmptyCollection(t *testing.T) {
	f := newFakeXM()
	f.collections["sites"] = nil
	s := newTestSession(t, f)

	tr := s.CaptureSites(context.Background())
	require.False(t, tr.Failed(), tr.Error)
	assert.Empty(t, readArray(t, s.Options.SitesPath))
	assert.Equal(t, 1, tr.Pages)
}

func TestCaptureSites_SkipsNullItems(t *testing.T) {
	f := newFakeXM()
	f.collections["sites"] = []string{
		`{"id":"s1","name":"Alpha"}`,
		`null`,
		`{"id":"s3","name":"Gamma"}`,
	}
	s := newTestSession(t, f)

	tr := s.CaptureSites(context.Background())
	require.False(t, tr.Failed(), tr.Error)
	assert.Equal(t, 3, tr.Retrieved)
	assert.Equal(t, 2, tr.Written)
	assert.Equal(t, 1, tr.Skipped)

	sites := readArray(t, s.Options.SitesPath)
	require.Len(t, sites, 2)
	assert.Equal(t, "s3", sites[1]["id"])
}

func TestCaptureSites_UnwritableOutput(t *testing.T) {
	f := newFakeXM()
	f.collections["sites"] = []string{`{"id":"A","name":"Alpha"}`}
	s := newTestSession(t, f, func(o *Options) { o.SitesPath = "/nonexistent/dir/sites.json" })

	tr := s.CaptureSites(context.Background())
	assert.True(t, tr.Failed())
	assert.Contains(t, tr.Error, "IO_FAILURE")
	assert.Zero(t, f.hitCount("sites"), "no request is made without an output file")
}

func usersFixture(f *fakeXM) {
	f.collections["people"] = []string{
		`{"id":"u1","targetName":"jdoe"}`,
		`{"id":"u2","targetName":"asmith"}`,
	}
	f.entities["people/u1"] = `{"id":"u1","targetName":"jdoe","firstName":"John","language":"en","timezone":"US/Eastern",` +
		`"roles":{"count":2,"total":2,"data":[{"id":"r1","name":"Company Admin"},{"id":"r2","name":"Standard User"}]}}`
	f.entities["people/u2"] = `{"id":"u2","targetName":"asmith","language":"de",` +
		`"roles":{"count":1,"total":1,"data":[{"id":"r2","name":"Standard User"}]}}`
	f.collections["people/u1/devices"] = []string{
		`{"id":"d1","name":"Work Email","deviceType":"EMAIL","timeframes":[{"name":"24x7","timezone":"US/Pacific"}]}`,
		`{"id":"d2","name":"Mobile","deviceType":"TEXT_PHONE","provider":{"id":"att"}}`,
		`{"id":"d3","name":"Work Email","deviceType":"EMAIL"}`,
	}
}

func TestCaptureUsers_WithDevices(t *testing.T) {
	f := newFakeXM()
	usersFixture(f)
	s := newTestSession(t, f)

	tr := s.CaptureUsers(context.Background(), true)
	require.False(t, tr.Failed(), tr.Error)
	assert.Equal(t, 2, tr.Written)

	users := readArray(t, s.Options.UsersPath)
	require.Len(t, users, 2)

	first := users[0]
	assert.Equal(t, "jdoe", first["user"].(map[string]any)["targetName"])
	devices := first["devices"].([]any)
	assert.Len(t, devices, 3, "devices from both pages")

	// u2 has no device collection: 404 means an empty list by default
	second := users[1]
	assert.Equal(t, []any{}, second["devices"])

	md := s.Meta.Snapshot()
	assert.Equal(t, []string{"jdoe"}, md.Admins)
	assert.Equal(t, []string{"Company Admin", "Standard User"}, md.Roles)
	assert.Equal(t, []string{"de", "en"}, md.Languages)
	assert.Equal(t, []string{"US/Eastern", "US/Pacific"}, md.Timezones)
	assert.Equal(t, []string{"EMAIL|Work Email", "TEXT_PHONE|Mobile"}, md.Devices)
	assert.Equal(t, []string{"att"}, md.USPs)
}

func TestCaptureUsers_AdminDetection(t *testing.T) {
	person := func(id, role string) string {
		return fmt.Sprintf(`{"id":%q,"targetName":%q,"roles":{"count":1,"total":1,"data":[{"id":"r-%s","name":%q}]}}`,
			id, id, id, role)
	}

	tests := []struct {
		name      string
		adminRole string
		roles     map[string]string
		admins    []string
		allRoles  []string
	}{
		{
			name:      "two admins and a viewer",
			adminRole: "Company Admin",
			roles:     map[string]string{"a": "Company Admin", "b": "Company Admin", "c": "Viewer"},
			admins:    []string{"a", "b"},
			allRoles:  []string{"Company Admin", "Viewer"},
		},
		{
			name:      "configured role name",
			adminRole: "Viewer",
			roles:     map[string]string{"a": "Company Admin", "b": "Company Admin", "c": "Viewer"},
			admins:    []string{"c"},
			allRoles:  []string{"Company Admin", "Viewer"},
		},
		{
			name:      "no admins",
			adminRole: "Company Admin",
			roles:     map[string]string{"a": "Viewer", "b": "Viewer"},
			admins:    []string{},
			allRoles:  []string{"Viewer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeXM()
			for _, id := range []string{"a", "b", "c"} {
				role, ok := tt.roles[id]
				if !ok {
					continue
				}
				f.collections["people"] = append(f.collections["people"], fmt.Sprintf(`{"id":%q,"targetName":%q}`, id, id))
				f.entities["people/"+id] = person(id, role)
			}
			s := newTestSession(t, f, func(o *Options) { o.CompanyAdminRole = tt.adminRole })

			tr := s.CaptureUsers(context.Background(), false)
			require.False(t, tr.Failed(), tr.Error)

			md := s.Meta.Snapshot()
			assert.ElementsMatch(t, tt.admins, md.Admins)
			assert.Equal(t, tt.allRoles, md.Roles)
		})
	}
}

func TestCaptureUsers_DevicesNotFoundOmit(t *testing.T) {
	f := newFakeXM()
	usersFixture(f)
	s := newTestSession(t, f, func(o *Options) { o.DevicesNotFound = config.DevicesOmit })

	tr := s.CaptureUsers(context.Background(), true)
	require.False(t, tr.Failed(), tr.Error)

	users := readArray(t, s.Options.UsersPath)
	require.Len(t, users, 2)
	assert.Contains(t, users[0], "devices")
	assert.NotContains(t, users[1], "devices")
}

func TestCaptureUsers_WithoutDevices(t *testing.T) {
	f := newFakeXM()
	usersFixture(f)
	s := newTestSession(t, f)

	tr := s.CaptureUsers(context.Background(), false)
	require.False(t, tr.Failed(), tr.Error)

	for _, u := range readArray(t, s.Options.UsersPath) {
		assert.NotContains(t, u, "devices")
	}
	assert.Zero(t, f.hitCount("people/u1/devices"))
	assert.Zero(t, s.Meta.Len(aggregate.Devices))
}

func TestCaptureUsers_SkipsOnDetailFailure(t *testing.T) {
	f := newFakeXM()
	usersFixture(f)
	f.statuses["people/u1"] = http.StatusInternalServerError
	s := newTestSession(t, f)

	tr := s.CaptureUsers(context.Background(), false)
	require.False(t, tr.Failed(), "a skipped record does not fail the pass")
	assert.Equal(t, 2, tr.Retrieved)
	assert.Equal(t, 1, tr.Written)
	assert.Equal(t, 1, tr.Skipped)

	users := readArray(t, s.Options.UsersPath)
	require.Len(t, users, 1)
	assert.Equal(t, "asmith", users[0]["user"].(map[string]any)["targetName"])
	assert.Empty(t, s.Meta.Snapshot().Admins)
}

func TestCaptureUsers_DeviceFailureKeepsPartialList(t *testing.T) {
	f := newFakeXM()
	usersFixture(f)
	f.failFromPage["people/u1/devices"] = 1
	s := newTestSession(t, f)

	tr := s.CaptureUsers(context.Background(), true)
	require.False(t, tr.Failed(), tr.Error)

	users := readArray(t, s.Options.UsersPath)
	require.Len(t, users, 2)
	assert.Len(t, users[0]["devices"].([]any), 2, "first page of devices is kept")
}

func TestCaptureUsers_CollectionFailureMidTraversal(t *testing.T) {
	f := newFakeXM()
	usersFixture(f)
	f.collections["people"] = append(f.collections["people"], `{"id":"u3","targetName":"late"}`)
	f.failFromPage["people"] = 1
	s := newTestSession(t, f)

	tr := s.CaptureUsers(context.Background(), false)
	assert.True(t, tr.Failed())
	assert.Contains(t, tr.Error, "UNEXPECTED_STATUS")
	assert.Equal(t, 2, tr.Written)
	assert.Equal(t, 1, tr.Pages)

	// the file is still a complete array of what was written
	assert.Len(t, readArray(t, s.Options.UsersPath), 2)
}

func groupsFixture(f *fakeXM) {
	f.collections["sites"] = []string{`{"id":"s1","name":"Headquarters"}`}
	f.collections["groups"] = []string{
		`{"id":"g1","targetName":"Ops"}`,
		`{"id":"g2","targetName":"Dev"}`,
		`{"id":"g3","targetName":"QA"}`,
	}
	f.entities["groups/g1"] = `{"id":"g1","targetName":"Ops","site":{"id":"s1","links":{"self":"/api/xm/1/sites/s1"}},"status":"ACTIVE"}`
	f.entities["groups/g2"] = `{"id":"g2","targetName":"Dev","site":{"id":"s9"}}`
	f.entities["groups/g3"] = `{"id":"g3","targetName":"QA","site":{"id":"s9"}}`
	f.collections["groups/g1/shifts"] = []string{`{"id":"sh1","name":"Day","members":{"count":0,"total":0,"data":[]}}`}
}

func TestCaptureGroups_ResolvesSitesFromCache(t *testing.T) {
	f := newFakeXM()
	groupsFixture(f)
	s := newTestSession(t, f)
	ctx := context.Background()

	require.False(t, s.CaptureSites(ctx).Failed())
	tr := s.CaptureGroups(ctx)
	require.False(t, tr.Failed(), tr.Error)
	assert.Equal(t, 3, tr.Written)

	groups := readArray(t, s.Options.GroupsPath)
	require.Len(t, groups, 3)

	g1 := groups[0]["group"].(map[string]any)
	assert.Equal(t, "Headquarters", g1["site"])
	assert.Equal(t, "ACTIVE", g1["status"])
	assert.Len(t, groups[0]["shifts"].([]any), 1)
	assert.Zero(t, f.hitCount("sites/s1"), "cached site needs no request")

	// unresolvable site: null, requested once for both groups
	assert.Contains(t, groups[1]["group"], "site")
	assert.Nil(t, groups[1]["group"].(map[string]any)["site"])
	assert.Nil(t, groups[2]["group"].(map[string]any)["site"])
	assert.Equal(t, 1, f.hitCount("sites/s9"))

	// no shift collection is an empty list
	assert.Equal(t, []any{}, groups[1]["shifts"])
}

func TestCaptureGroups_SiteResolvedOnDemand(t *testing.T) {
	f := newFakeXM()
	groupsFixture(f)
	f.entities["sites/s9"] = `{"id":"s9","name":"Branch"}`
	s := newTestSession(t, f)

	tr := s.CaptureGroups(context.Background())
	require.False(t, tr.Failed(), tr.Error)

	groups := readArray(t, s.Options.GroupsPath)
	assert.Equal(t, "Branch", groups[1]["group"].(map[string]any)["site"])
	assert.Equal(t, "Branch", groups[2]["group"].(map[string]any)["site"])
	assert.Equal(t, 1, f.hitCount("sites/s9"))
	assert.Equal(t, 1, f.hitCount("sites/s1"))
}

func TestCaptureGroups_KeyOrderPreserved(t *testing.T) {
	f := newFakeXM()
	groupsFixture(f)
	s := newTestSession(t, f)
	ctx := context.Background()
	s.CaptureSites(ctx)
	s.CaptureGroups(ctx)

	raw := readRawArray(t, s.Options.GroupsPath)
	require.NotEmpty(t, raw)
	assert.Regexp(t, `^\{"group":\{"id":"g1","targetName":"Ops","site":"Headquarters","status":"ACTIVE"\},"shifts":\[`, string(raw[0]))
}

func TestCapture_CanceledContext(t *testing.T) {
	f := newFakeXM()
	usersFixture(f)
	s := newTestSession(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := s.CaptureUsers(ctx, true)

	assert.True(t, tr.Failed())
	assert.Zero(t, tr.Written)
	data, err := os.ReadFile(s.Options.UsersPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
