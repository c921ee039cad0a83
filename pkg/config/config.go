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

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/NVIDIA/xm-capture/pkg/defaults"
	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
	"github.com/NVIDIA/xm-capture/pkg/header"
	"github.com/NVIDIA/xm-capture/pkg/serializer"
)

// DevicesNotFound selects what a user record carries when its device
// collection answers 404.
type DevicesNotFound string

const (
	// DevicesEmpty writes "devices": [].
	DevicesEmpty DevicesNotFound = "empty"
	// DevicesOmit leaves the devices field out of the user wrapper.
	DevicesOmit DevicesNotFound = "omit"
)

// Output names the files a capture produces. File names are relative to Dir
// unless absolute.
type Output struct {
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Sites  string `json:"sites,omitempty" yaml:"sites,omitempty"`
	Users  string `json:"users,omitempty" yaml:"users,omitempty"`
	Groups string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Admin  string `json:"admin,omitempty" yaml:"admin,omitempty"`
}

// Config holds everything a capture run needs to know about the instance and
// the output. It is read from a JSON or YAML file, then overridden by flags.
type Config struct {
	Kind       header.Kind `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string      `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// URL is the instance root, e.g. https://acme.xmatters.com.
	URL      string `json:"url" yaml:"url"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	PageSize         int             `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	CompanyAdminRole string          `json:"companyAdminRole,omitempty" yaml:"companyAdminRole,omitempty"`
	DeviceSeparator  string          `json:"deviceSeparator,omitempty" yaml:"deviceSeparator,omitempty"`
	DevicesNotFound  DevicesNotFound `json:"devicesNotFound,omitempty" yaml:"devicesNotFound,omitempty"`

	// RateLimit caps requests per second; 0 disables pacing.
	RateLimit float64 `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	RateBurst int     `json:"rateBurst,omitempty" yaml:"rateBurst,omitempty"`

	// Timeout is the per-request timeout as a Go duration string.
	Timeout            string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`

	// Parallel captures users alongside the sites then groups chain.
	Parallel bool `json:"parallel,omitempty" yaml:"parallel,omitempty"`

	Output Output `json:"output" yaml:"output"`

	timeout time.Duration
}

// Default returns a Config with every optional field set.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads the file at path (format by extension) and fills unset fields
// with defaults. The result is not validated.
func Load(path string) (*Config, error) {
	c, err := serializer.FromFile[Config](path)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to load configuration", err, map[string]any{"path": path})
	}
	c.ApplyDefaults()
	return c, nil
}

// ApplyDefaults sets every empty optional field to its default.
func (c *Config) ApplyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = defaults.PageSize
	}
	if c.CompanyAdminRole == "" {
		c.CompanyAdminRole = defaults.CompanyAdminRole
	}
	if c.DeviceSeparator == "" {
		c.DeviceSeparator = defaults.DeviceKeySeparator
	}
	if c.DevicesNotFound == "" {
		c.DevicesNotFound = DevicesEmpty
	}
	if c.RateBurst == 0 {
		c.RateBurst = 1
	}
	if c.Timeout == "" {
		c.Timeout = defaults.HTTPClientTimeout.String()
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.Sites == "" {
		c.Output.Sites = defaults.SitesFilename
	}
	if c.Output.Users == "" {
		c.Output.Users = defaults.UsersFilename
	}
	if c.Output.Groups == "" {
		c.Output.Groups = defaults.GroupsFilename
	}
	if c.Output.Admin == "" {
		c.Output.Admin = defaults.AdminFilename
	}
}

// Validate reports every problem with the configuration at once as a single
// INVALID_REQUEST error.
func (c *Config) Validate() error {
	var errs []error

	if c.Kind != "" && c.Kind != header.KindCaptureConfig {
		errs = append(errs, fmt.Errorf("kind must be %s, got %q", header.KindCaptureConfig, c.Kind))
	}

	u, err := url.Parse(c.URL)
	switch {
	case c.URL == "":
		errs = append(errs, errors.New("url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("url is invalid: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("url scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("url has no host"))
	}

	if strings.TrimSpace(c.Username) == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("password is required"))
	}
	if c.PageSize < 1 || c.PageSize > defaults.MaxPageSize {
		errs = append(errs, fmt.Errorf("pageSize must be between 1 and %d, got %d", defaults.MaxPageSize, c.PageSize))
	}
	if c.DeviceSeparator == "" {
		errs = append(errs, errors.New("deviceSeparator must not be empty"))
	}
	switch c.DevicesNotFound {
	case DevicesEmpty, DevicesOmit:
	default:
		errs = append(errs, fmt.Errorf("devicesNotFound must be %q or %q, got %q", DevicesEmpty, DevicesOmit, c.DevicesNotFound))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rateLimit must not be negative, got %v", c.RateLimit))
	}

	d, err := time.ParseDuration(c.Timeout)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("timeout is invalid: %w", err))
	case d <= 0:
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	default:
		c.timeout = d
	}

	if len(errs) > 0 {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid configuration", errors.Join(errs...))
	}
	return nil
}

// RequestTimeout returns the parsed Timeout. It is only meaningful after a
// successful Validate.
func (c *Config) RequestTimeout() time.Duration {
	if c.timeout == 0 {
		return defaults.HTTPClientTimeout
	}
	return c.timeout
}

// SitesPath returns the output file for sites.
func (c *Config) SitesPath() string { return c.resolve(c.Output.Sites) }

// UsersPath returns the output file for users.
func (c *Config) UsersPath() string { return c.resolve(c.Output.Users) }

// GroupsPath returns the output file for groups.
func (c *Config) GroupsPath() string { return c.resolve(c.Output.Groups) }

// AdminPath returns the metadata file.
func (c *Config) AdminPath() string { return c.resolve(c.Output.Admin) }

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// LogValue keeps the password out of log output.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", c.URL),
		slog.String("username", c.Username),
		slog.Int("pageSize", c.PageSize),
		slog.String("devicesNotFound", string(c.DevicesNotFound)),
		slog.Float64("rateLimit", c.RateLimit),
		slog.String("timeout", c.Timeout),
		slog.Bool("parallel", c.Parallel),
		slog.String("outputDir", c.Output.Dir),
	)
}
