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

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/xm-capture/pkg/capture"
	"github.com/NVIDIA/xm-capture/pkg/config"
	"github.com/NVIDIA/xm-capture/pkg/defaults"
	"github.com/NVIDIA/xm-capture/pkg/serializer"
	"github.com/NVIDIA/xm-capture/pkg/xmclient"
)

const envPrefix = "XMCAPTURE_"

// errIncomplete marks a run that finished but left something out.
var errIncomplete = errors.New("capture incomplete, see log for details")

func captureCmd() *cli.Command {
	return &cli.Command{
		Name:                  "capture",
		EnableShellCompletion: true,
		Usage:                 "Capture instance data to JSON files",
		ArgsUsage:             "sites|users|devices|groups|all ...",
		Description: `Capture the selected object types of an xMatters instance:
  - sites   every site, as returned by the API
  - users   every person with roles and supervisors
  - devices the devices of every person (implies users)
  - groups  every group with supervisors and shifts, site ids replaced by names
  - all     everything above

Each type is written as a JSON array to its own file in the output directory,
and the distinct roles, timezones, countries, languages, device types,
carriers and administrators seen along the way are written to admin.json.
A summary report is printed when the run ends.

# Examples

Capture everything with settings from a file:
  XMCAPTURE_PASSWORD=... xmcapture capture --config capture.yaml all

Capture sites and groups only, with a JSON report:
  xmcapture capture --url https://acme.xmatters.com --username bot \
    --output-dir ./acme --format json sites groups`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (JSON or YAML)",
				Sources: cli.EnvVars(envPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Instance URL, e.g. https://acme.xmatters.com",
				Sources: cli.EnvVars(envPrefix + "URL"),
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "API user name",
				Sources: cli.EnvVars(envPrefix + "USERNAME"),
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "API password (prefer the environment variable)",
				Sources: cli.EnvVars(envPrefix + "PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"d"},
				Usage:   "Directory for the captured files",
				Sources: cli.EnvVars(envPrefix + "OUTPUT_DIR"),
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: fmt.Sprintf("Records per page (1-%d)", defaults.MaxPageSize),
				Value: defaults.PageSize,
			},
			&cli.StringFlag{
				Name:  "company-admin-role",
				Usage: "Role name that marks a user as administrator",
				Value: defaults.CompanyAdminRole,
			},
			&cli.StringFlag{
				Name:  "device-separator",
				Usage: "Separator between device type and name in the devices set",
				Value: defaults.DeviceKeySeparator,
			},
			&cli.StringFlag{
				Name:  "devices-not-found",
				Usage: "What to write for a user without a device collection (empty, omit)",
				Value: string(config.DevicesEmpty),
			},
			&cli.FloatFlag{
				Name:    "rate-limit",
				Usage:   "Maximum requests per second (0 = unlimited)",
				Sources: cli.EnvVars(envPrefix + "RATE_LIMIT"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per request timeout",
				Value: defaults.HTTPClientTimeout,
			},
			&cli.DurationFlag{
				Name:  "run-timeout",
				Usage: "Upper bound for the whole run",
				Value: defaults.CLICaptureTimeout,
			},
			&cli.BoolFlag{
				Name:  "parallel",
				Usage: "Capture users concurrently with sites and groups",
			},
			&cli.BoolFlag{
				Name:  "insecure-skip-verify",
				Usage: "Skip TLS certificate verification",
			},
			&cli.StringFlag{
				Name:    "status-addr",
				Usage:   "Serve /health, /ready, /metrics and /v1/status on this address during the run",
				Sources: cli.EnvVars(envPrefix + "STATUS_ADDR"),
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write run metrics in Prometheus text format to this file",
			},
			reportFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			sel, err := capture.ParseSelection(cmd.Args().Slice()...)
			if err != nil {
				return err
			}

			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			slog.Debug("configuration loaded", "config", cfg)

			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			client, err := xmclient.New(cfg.URL,
				xmclient.WithBasicAuth(cfg.Username, cfg.Password),
				xmclient.WithPageSize(cfg.PageSize),
				xmclient.WithTimeout(cfg.RequestTimeout()),
				xmclient.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
				xmclient.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
				xmclient.WithUserAgent(name+"/"+version),
			)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("run-timeout"))
			defer cancel()

			report := serializer.NewFileWriterOrStdout(outFormat, cmd.String("report"))
			defer func() {
				if closeErr := report.Close(); closeErr != nil {
					slog.Warn("failed to close report", "error", closeErr)
				}
			}()

			c := capture.NewCapturer(version, capture.NewSession(client, capture.OptionsFromConfig(cfg)))
			c.Serializer = report

			stopStatus := func() error { return nil }
			if addr := cmd.String("status-addr"); addr != "" {
				if stopStatus, err = startStatusServer(ctx, addr, c); err != nil {
					return err
				}
			}

			result, err := c.Run(ctx, sel)

			if sErr := stopStatus(); sErr != nil {
				slog.Warn("status server did not stop cleanly", "error", sErr)
			}

			if path := cmd.String("metrics-file"); path != "" {
				if mErr := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); mErr != nil {
					slog.Error("failed to write metrics", "path", path, "error", mErr)
				}
			}

			if err != nil {
				return err
			}
			if result.Failed() {
				return errIncomplete
			}
			return nil
		},
	}
}

// buildConfig layers defaults, the optional config file and explicitly set
// flags (or their environment variables), then validates the result.
func buildConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.IsSet("url") {
		cfg.URL = cmd.String("url")
	}
	if cmd.IsSet("username") {
		cfg.Username = cmd.String("username")
	}
	if cmd.IsSet("password") {
		cfg.Password = cmd.String("password")
	}
	if cmd.IsSet("output-dir") {
		cfg.Output.Dir = cmd.String("output-dir")
	}
	if cmd.IsSet("page-size") {
		cfg.PageSize = cmd.Int("page-size")
	}
	if cmd.IsSet("company-admin-role") {
		cfg.CompanyAdminRole = cmd.String("company-admin-role")
	}
	if cmd.IsSet("device-separator") {
		cfg.DeviceSeparator = cmd.String("device-separator")
	}
	if cmd.IsSet("devices-not-found") {
		cfg.DevicesNotFound = config.DevicesNotFound(cmd.String("devices-not-found"))
	}
	if cmd.IsSet("rate-limit") {
		cfg.RateLimit = cmd.Float("rate-limit")
	}
	if cmd.IsSet("timeout") {
		cfg.Timeout = cmd.Duration("timeout").String()
	}
	if cmd.IsSet("parallel") {
		cfg.Parallel = cmd.Bool("parallel")
	}
	if cmd.IsSet("insecure-skip-verify") {
		cfg.InsecureSkipVerify = cmd.Bool("insecure-skip-verify")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

