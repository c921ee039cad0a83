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

package xmclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmcapture_api_requests_total",
			Help: "Total number of xMatters API requests by response status",
		},
		[]string{"status"}, // HTTP status code or "error"
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "xmcapture_api_request_duration_seconds",
			Help:    "Duration of xMatters API requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	pagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xmcapture_api_pages_total",
			Help: "Total number of collection pages fetched",
		},
	)
)
