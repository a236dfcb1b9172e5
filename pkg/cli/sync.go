/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/monsync/pkg/config"
	"github.com/NVIDIA/monsync/pkg/gitrepo"
	"github.com/NVIDIA/monsync/pkg/grafana"
	"github.com/NVIDIA/monsync/pkg/logging"
	"github.com/NVIDIA/monsync/pkg/provision"
	pipeline "github.com/NVIDIA/monsync/pkg/sync"
	"github.com/NVIDIA/monsync/pkg/venv"
	"github.com/NVIDIA/monsync/pkg/zabbix"
)

func syncCmd() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Run one deployment pass",
		ArgsUsage: "[config-path]",
		Description: `Run the deployment pipeline once: fetch the asset repositories,
authenticate against Zabbix, apply each configured category (templates,
scripts, dashboards in order), provision Grafana plugins and the monitoring
datasource, and optionally prepare the script virtualenv.

The optional positional argument is the configuration file path
(default: ` + config.DefaultPath + `).`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "enumerate assets and log intended actions without remote changes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			initLogging(cmd)

			configPath := cmd.Args().First()
			if configPath == "" {
				configPath = config.DefaultPath
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			fetcher, err := gitrepo.NewFetcher()
			if err != nil {
				return err
			}

			zbx := zabbix.New(cfg.Zabbix.URL)
			graf := grafana.New(cfg.Grafana.URL, cfg.Grafana.APIKey)

			provOpts := []provision.Option{
				provision.WithProvisioningPath(cfg.Grafana.ProvisioningPath),
			}
			if cfg.Grafana.PluginFile != "" {
				installer, err := grafana.NewPluginInstaller()
				if err != nil {
					slog.Warn("plugin installs disabled", "error", err)
				} else {
					provOpts = append(provOpts,
						provision.WithPluginFile(cfg.Grafana.PluginFile),
						provision.WithInstaller(installer))
				}
			}
			provisioner := provision.New(cfg.Datasource, graf,
				grafana.NewServiceManager(cfg.Grafana.Service), provOpts...)

			runner := pipeline.New(cfg, fetcher, zbx, graf,
				pipeline.WithProvisioner(provisioner),
				pipeline.WithEnvProvisioner(venv.New(cfg.ExternalScriptPath)),
				pipeline.WithDryRun(cmd.Bool("dry-run")),
			)

			summary, err := runner.Run(ctx)
			if err != nil {
				slog.Error("run failed", "error", err)
				return err
			}

			slog.Info("deployment finished",
				"templates", summary.Templates,
				"scripts", summary.Scripts,
				"dashboards", summary.Dashboards,
			)
			return nil
		},
	}
}

// initLogging configures slog after flag parsing so --log-level and
// --log-file take effect before the pipeline starts.
func initLogging(cmd *cli.Command) {
	level := cmd.String("log-level")
	if path := cmd.String("log-file"); path != "" {
		logging.SetDefaultStructuredLoggerWithFile(name, version, level, path)
	} else {
		logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	}

	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)
}
