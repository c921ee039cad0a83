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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	captureRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "xmcapture_run_duration_seconds",
			Help:    "Time taken by a complete capture run",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		},
	)

	captureRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmcapture_runs_total",
			Help: "Total number of capture runs",
		},
		[]string{"status"}, // success or partial
	)

	typeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xmcapture_type_duration_seconds",
			Help:    "Time taken to capture one object type",
			Buckets: []float64{0.1, 1, 10, 60, 300, 900, 3600},
		},
		[]string{"type"},
	)

	recordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmcapture_records_total",
			Help: "Records seen during capture by object type and outcome",
		},
		[]string{"type", "outcome"}, // retrieved, written, skipped
	)

	metadataValues = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "xmcapture_metadata_values",
			Help: "Distinct metadata values collected in the last run",
		},
		[]string{"category"},
	)
)
