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
	"time"

	"github.com/NVIDIA/xm-capture/pkg/record"
	"github.com/NVIDIA/xm-capture/pkg/serializer"
	"github.com/NVIDIA/xm-capture/pkg/xmclient"
)

// transformFunc turns one collection item into the element written to the
// output file. Returning false drops the item; the function logs why.
type transformFunc func(ctx context.Context, item *record.Record) (any, bool)

// captureCollection walks one top-level collection page by page and streams
// every transformed item into path. The output file is closed, and therefore
// a valid JSON array, on every return path.
func (s *Session) captureCollection(ctx context.Context, t ObjectType, collection, path string, transform transformFunc) *TypeReport {
	tr := &TypeReport{Type: t, File: path}
	log := s.log.With("type", t)
	start := time.Now()
	defer func() {
		d := time.Since(start)
		tr.Duration = d.Round(time.Millisecond).String()
		typeDuration.WithLabelValues(string(t)).Observe(d.Seconds())
	}()

	log.Info("capture started", "file", path)

	w, err := serializer.NewArrayFileWriter(path)
	if err != nil {
		log.Error("cannot open output file", "file", path, "error", err)
		tr.fail(err)
		return tr
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Error("failed to close output file", "file", path, "error", err)
			tr.fail(err)
		}
	}()

	if err := w.Begin(); err != nil {
		log.Error("cannot write output file", "file", path, "error", err)
		tr.fail(err)
		return tr
	}

	p := s.Client.Pages(collection, nil)
pages:
	for p.Next(ctx) {
		page := p.Page()
		log.Debug("page received", "url", p.URL(), "count", page.Count, "total", page.Total)

		for i, item := range page.Data {
			if err := ctx.Err(); err != nil {
				log.Warn("capture interrupted", "remaining", len(page.Data)-i, "error", err)
				tr.fail(err)
				break pages
			}

			tr.Retrieved++
			recordsTotal.WithLabelValues(string(t), "retrieved").Inc()

			if item == nil {
				log.Warn("null item in collection page skipped", "url", p.URL(), "index", i)
				tr.Skipped++
				recordsTotal.WithLabelValues(string(t), "skipped").Inc()
				continue
			}

			out, ok := transform(ctx, item)
			if !ok {
				tr.Skipped++
				recordsTotal.WithLabelValues(string(t), "skipped").Inc()
				continue
			}
			if err := w.Write(out); err != nil {
				log.Error("failed to write record", "id", item.ID(), "file", path, "error", err)
				tr.fail(err)
				break pages
			}
			tr.Written++
			recordsTotal.WithLabelValues(string(t), "written").Inc()
		}
	}
	tr.Pages = p.Pages()

	if err := p.Err(); err != nil {
		xmclient.LogError(ctx, log, "collection traversal aborted", err, "written", tr.Written)
		tr.fail(err)
	}

	log.Info("capture finished",
		"retrieved", tr.Retrieved,
		"written", tr.Written,
		"skipped", tr.Skipped,
		"pages", tr.Pages,
	)
	return tr
}
