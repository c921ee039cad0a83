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

package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"

	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
	"github.com/NVIDIA/xm-capture/pkg/serializer"
)

// Category names one distinct-value set.
type Category string

// Categories collected during a capture.
const (
	Admins    Category = "admins"
	Roles     Category = "roles"
	Timezones Category = "timezones"
	Countries Category = "countries"
	Languages Category = "languages"
	Devices   Category = "devices"
	USPs      Category = "usps"
)

// Categories returns every category in persisted order.
func Categories() []Category {
	return []Category{Admins, Roles, Timezones, Countries, Languages, Devices, USPs}
}

// ErrFlushed is returned by Add and Flush once the metadata has been persisted.
var ErrFlushed = errors.New("aggregator already flushed")

// Metadata is the persisted document: one sorted array per category.
type Metadata struct {
	Admins    []string `json:"admins" yaml:"admins"`
	Roles     []string `json:"roles" yaml:"roles"`
	Timezones []string `json:"timezones" yaml:"timezones"`
	Countries []string `json:"countries" yaml:"countries"`
	Languages []string `json:"languages" yaml:"languages"`
	Devices   []string `json:"devices" yaml:"devices"`
	USPs      []string `json:"usps" yaml:"usps"`
}

// Aggregator accumulates distinct values per category across every capture
// pass. Adding a value twice has no effect. It is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	sets    map[Category]sets.Set[string]
	flushed bool
}

// New returns an empty Aggregator.
func New() *Aggregator {
	a := &Aggregator{sets: make(map[Category]sets.Set[string], len(Categories()))}
	for _, c := range Categories() {
		a.sets[c] = sets.New[string]()
	}
	return a
}

// Add records value under category. Empty values are ignored.
func (a *Aggregator) Add(category Category, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.flushed {
		return ErrFlushed
	}
	s, ok := a.sets[category]
	if !ok {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"unknown metadata category", map[string]any{"category": string(category)})
	}
	if value != "" {
		s.Insert(value)
	}
	return nil
}

// Has reports whether value was recorded under category.
func (a *Aggregator) Has(category Category, value string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sets[category].Has(value)
}

// Len returns the number of distinct values recorded under category.
func (a *Aggregator) Len(category Category) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sets[category].Len()
}

// Snapshot returns the current values, sorted.
func (a *Aggregator) Snapshot() Metadata {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Aggregator) snapshot() Metadata {
	list := func(c Category) []string {
		return sets.List(a.sets[c])
	}
	return Metadata{
		Admins:    list(Admins),
		Roles:     list(Roles),
		Timezones: list(Timezones),
		Countries: list(Countries),
		Languages: list(Languages),
		Devices:   list(Devices),
		USPs:      list(USPs),
	}
}

// Flush persists the metadata to path, with the format taken from the file
// extension. It runs once: the aggregator is sealed even when writing fails,
// and any later Add or Flush returns ErrFlushed.
func (a *Aggregator) Flush(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.flushed {
		return ErrFlushed
	}
	a.flushed = true
	md := a.snapshot()

	w, err := serializer.NewFileWriter(serializer.FormatFromPath(path), path)
	if err != nil {
		return err
	}
	if err := w.Serialize(ctx, md); err != nil {
		_ = w.Close()
		return cnserrors.WrapWithContext(cnserrors.ErrCodeIOFailure,
			"failed to write metadata", err, map[string]any{"path": path})
	}
	if err := w.Close(); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeIOFailure,
			"failed to close metadata file", err, map[string]any{"path": path})
	}

	slog.Info("metadata written", "path", path, "summary", summary(md))
	return nil
}

func summary(md Metadata) string {
	return fmt.Sprintf("admins=%d roles=%d timezones=%d countries=%d languages=%d devices=%d usps=%d",
		len(md.Admins), len(md.Roles), len(md.Timezones), len(md.Countries),
		len(md.Languages), len(md.Devices), len(md.USPs))
}
