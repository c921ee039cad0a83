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
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/xm-capture/pkg/aggregate"
	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
	"github.com/NVIDIA/xm-capture/pkg/serializer"
)

// State is the lifecycle position of a Capturer.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Capturer runs the selected capture passes once and finalizes the run.
type Capturer struct {
	// Version is the tool version recorded in the report.
	Version string

	// Session carries the client, cache, aggregator and options.
	Session *Session

	// Serializer receives the report when set.
	Serializer serializer.Serializer

	state atomic.Int32

	mu        sync.Mutex
	started   time.Time
	completed []TypeReport
}

// Status is a point-in-time view of a run.
type Status struct {
	RunID     string         `json:"runId"`
	State     string         `json:"state"`
	Elapsed   string         `json:"elapsed,omitempty"`
	Completed []TypeReport   `json:"completed"`
	Metadata  map[string]int `json:"metadata"`
}

// NewCapturer returns an idle Capturer for session.
func NewCapturer(version string, session *Session) *Capturer {
	return &Capturer{Version: version, Session: session}
}

// State returns the current lifecycle state.
func (c *Capturer) State() State {
	return State(c.state.Load())
}

// Status may be called from any goroutine while Run is in progress.
func (c *Capturer) Status() Status {
	st := Status{
		State:     c.State().String(),
		Completed: []TypeReport{},
		Metadata:  map[string]int{},
	}

	c.mu.Lock()
	st.Completed = append(st.Completed, c.completed...)
	if !c.started.IsZero() {
		st.Elapsed = time.Since(c.started).Round(time.Second).String()
	}
	c.mu.Unlock()

	if c.Session != nil {
		st.RunID = c.Session.RunID
		for _, cat := range aggregate.Categories() {
			st.Metadata[string(cat)] = c.Session.Meta.Len(cat)
		}
	}
	return st
}

// done keeps a copy of a finished pass for Status.
func (c *Capturer) done(tr *TypeReport) *TypeReport {
	if tr == nil {
		return nil
	}
	c.mu.Lock()
	c.completed = append(c.completed, *tr)
	c.mu.Unlock()
	return tr
}

// Run captures the selected object types in the order sites, users, groups.
// A failed pass is recorded in the report and does not stop the passes after
// it. The metadata file is written exactly once at the end, also when ctx has
// been canceled. The returned error only covers misuse (empty selection,
// second run) and report serialization; capture failures are in the report.
func (c *Capturer) Run(ctx context.Context, sel Selection) (*Report, error) {
	if sel.Empty() {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "no object types selected")
	}
	if c.Session == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "capturer has no session")
	}
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInternal,
			"capturer can only run once", map[string]any{"state": c.State().String()})
	}

	s := c.Session
	log := s.log
	start := time.Now()
	c.mu.Lock()
	c.started = start
	c.mu.Unlock()
	report := newReport(c.Version, s.RunID, sel)
	log.Info("capture run started", "selection", sel.String(), "parallel", s.Options.Parallel)

	if s.Options.Parallel {
		c.runParallel(ctx, sel, report)
	} else {
		c.runSequential(ctx, sel, report)
	}

	c.state.Store(int32(StateFinalizing))
	c.finalize(ctx, report)

	d := time.Since(start)
	report.Duration = d.Round(time.Millisecond).String()
	captureRunDuration.Observe(d.Seconds())
	status := "success"
	if report.Failed() {
		status = "partial"
	}
	captureRunsTotal.WithLabelValues(status).Inc()
	c.state.Store(int32(StateDone))

	log.Info("capture run finished", "status", status, "duration", report.Duration)

	if c.Serializer != nil {
		if err := c.Serializer.Serialize(context.WithoutCancel(ctx), report); err != nil {
			slog.Error("failed to serialize report", slog.String("error", err.Error()))
			return report, fmt.Errorf("failed to serialize report: %w", err)
		}
	}
	return report, nil
}

func (c *Capturer) runSequential(ctx context.Context, sel Selection, report *Report) {
	s := c.Session
	if sel.Sites {
		report.add(c.done(s.CaptureSites(ctx)))
	}
	if sel.CaptureUsers() {
		report.add(c.done(s.CaptureUsers(ctx, sel.Devices)))
	}
	if sel.Groups {
		report.add(c.done(s.CaptureGroups(ctx)))
	}
}

// runParallel runs users alongside sites followed by groups. Groups still wait
// for sites so the site cache is warm before any group is resolved.
func (c *Capturer) runParallel(ctx context.Context, sel Selection, report *Report) {
	s := c.Session
	var sites, users, groups *TypeReport

	// passes never return errors; failures live in their TypeReport
	var g errgroup.Group
	g.SetLimit(2)
	g.Go(func() error {
		if sel.Sites {
			sites = c.done(s.CaptureSites(ctx))
		}
		if sel.Groups {
			groups = c.done(s.CaptureGroups(ctx))
		}
		return nil
	})
	g.Go(func() error {
		if sel.CaptureUsers() {
			users = c.done(s.CaptureUsers(ctx, sel.Devices))
		}
		return nil
	})
	_ = g.Wait()

	report.add(sites, users, groups)
}

func (c *Capturer) finalize(ctx context.Context, report *Report) {
	s := c.Session
	report.Aggregates.File = s.Options.AdminPath

	if err := s.Meta.Flush(context.WithoutCancel(ctx), s.Options.AdminPath); err != nil {
		s.log.Error("failed to write metadata", "file", s.Options.AdminPath, "error", err)
		report.Aggregates.Error = err.Error()
	}

	report.Aggregates.Counts = aggregateCounts(s.Meta.Snapshot())
	for category, n := range report.Aggregates.Counts {
		metadataValues.WithLabelValues(category).Set(float64(n))
	}
}
