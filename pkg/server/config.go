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

package server

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/xm-capture/pkg/defaults"
)

// Config holds status server configuration.
type Config struct {
	// Name and Version are reported by the index route.
	Name    string
	Version string

	// Address is the listen address, for example ":9090" or "127.0.0.1:0".
	Address string

	// Handlers are extra routes served behind the middleware chain.
	Handlers map[string]http.HandlerFunc

	// RateLimit and RateLimitBurst bound requests to the extra routes.
	RateLimit      rate.Limit
	RateLimitBurst int

	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Name:              "server",
		Version:           "undefined",
		Address:           ":9090",
		RateLimit:         20,
		RateLimitBurst:    40,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithName sets the name and version reported by the index route.
func WithName(name, version string) Option {
	return func(s *Server) {
		s.config.Name = name
		s.config.Version = version
	}
}

// WithAddress sets the listen address.
func WithAddress(addr string) Option {
	return func(s *Server) {
		s.config.Address = addr
	}
}

// WithHandler adds routes served behind the middleware chain.
func WithHandler(routes map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		if s.config.Handlers == nil {
			s.config.Handlers = make(map[string]http.HandlerFunc, len(routes))
		}
		for path, h := range routes {
			s.config.Handlers[path] = h
		}
	}
}
