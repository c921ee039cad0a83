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

// Package header provides the common document header shared by capture
// reports and configuration files.
//
//	h := header.New(header.WithKind(header.KindCaptureReport))
//	h.Init(header.KindCaptureReport, header.APIVersion, version)
//
// Serialized:
//
//	kind: CaptureReport
//	apiVersion: xmcapture/v1
//	metadata:
//	  timestamp: "2026-01-30T10:30:00Z"
//	  version: v1.0.0
//
// The captured object files themselves carry no header: they are bare JSON
// arrays that the restore side reads as is.
package header
