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

// Package serializer encodes and decodes capture documents.
//
// # Document Writers
//
// Writer serializes a whole value at once in one of three formats:
//   - JSON: indented, machine-parseable
//   - YAML: gopkg.in/yaml.v3, two-space indentation
//   - Table: flattened FIELD/VALUE rows for terminals (write-only)
//
//	w := serializer.NewStdoutWriter(serializer.FormatTable)
//	defer w.Close()
//	err := w.Serialize(ctx, report)
//
// NewFileWriter returns an IO_FAILURE error when the file cannot be created;
// NewFileWriterOrStdout falls back to stdout instead.
//
// # Streaming Arrays
//
// ArrayWriter writes one JSON array incrementally. It moves through the
// states NotStarted, Open and Closed, and Close always leaves a well-formed
// array behind, including after a failure halfway through a traversal:
//
//	[
//	{"id":"A"},
//	{"id":"B"}
//	]
//
// # Readers
//
// Reader and FromFile[T] decode JSON or YAML, with FormatFromPath choosing the
// format from the file extension:
//
//	cfg, err := serializer.FromFile[config.Config]("capture.yaml")
package serializer
