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
	"github.com/NVIDIA/xm-capture/pkg/aggregate"
	"github.com/NVIDIA/xm-capture/pkg/header"
)

// Report summarizes one capture run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID     string   `json:"runId" yaml:"runId"`
	Selection []string `json:"selection" yaml:"selection"`
	Duration  string   `json:"duration" yaml:"duration"`

	// Types holds one entry per captured object type, in capture order.
	Types []*TypeReport `json:"types" yaml:"types"`

	Aggregates AggregateReport `json:"aggregates" yaml:"aggregates"`
}

// TypeReport is the outcome of one object type pass.
type TypeReport struct {
	Type      ObjectType `json:"type" yaml:"type"`
	File      string     `json:"file" yaml:"file"`
	Retrieved int        `json:"retrieved" yaml:"retrieved"`
	Written   int        `json:"written" yaml:"written"`
	Skipped   int        `json:"skipped" yaml:"skipped"`
	Pages     int        `json:"pages" yaml:"pages"`
	Duration  string     `json:"duration" yaml:"duration"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// AggregateReport describes the metadata file.
type AggregateReport struct {
	File   string         `json:"file" yaml:"file"`
	Counts map[string]int `json:"counts" yaml:"counts"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func newReport(version, runID string, sel Selection) *Report {
	r := &Report{
		RunID:     runID,
		Selection: sel.Tokens(),
		Types:     make([]*TypeReport, 0, 3),
	}
	r.Init(header.KindCaptureReport, header.APIVersion, version)
	r.Metadata["run"] = runID
	return r
}

// fail records the first error of a pass.
func (t *TypeReport) fail(err error) {
	if t.Error == "" && err != nil {
		t.Error = err.Error()
	}
}

// Failed reports whether the pass ended early.
func (t *TypeReport) Failed() bool {
	return t.Error != ""
}

// Type returns the report for t, or nil when t was not captured.
func (r *Report) Type(t ObjectType) *TypeReport {
	for _, tr := range r.Types {
		if tr.Type == t {
			return tr
		}
	}
	return nil
}

// Failed reports whether any pass or the metadata flush failed.
func (r *Report) Failed() bool {
	for _, tr := range r.Types {
		if tr.Failed() {
			return true
		}
	}
	return r.Aggregates.Error != ""
}

func (r *Report) add(trs ...*TypeReport) {
	for _, tr := range trs {
		if tr != nil {
			r.Types = append(r.Types, tr)
		}
	}
}

func aggregateCounts(md aggregate.Metadata) map[string]int {
	return map[string]int{
		string(aggregate.Admins):    len(md.Admins),
		string(aggregate.Roles):     len(md.Roles),
		string(aggregate.Timezones): len(md.Timezones),
		string(aggregate.Countries): len(md.Countries),
		string(aggregate.Languages): len(md.Languages),
		string(aggregate.Devices):   len(md.Devices),
		string(aggregate.USPs):      len(md.USPs),
	}
}
