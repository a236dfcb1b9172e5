/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

const (
	name           = "monsync"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Deploy monitoring assets from version control",
		Description: fmt.Sprintf(`monsync - monitoring asset deployment

Version: %s
Commit:  %s
Built:   %s

Synchronizes Zabbix templates, external scripts, and Grafana dashboards from
git repositories into live monitoring infrastructure, then provisions Grafana
plugins and the monitoring datasource.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Value: "/var/log/monsync/monsync.log",
				Usage: "rotating run log path (empty disables the file sink)",
			},
		},
		Commands: []*cli.Command{
			syncCmd(),
			versionCmd(),
		},
	}
}

// Execute runs the CLI. This is called by main.main().
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	return rootCmd().Run(ctx, os.Args)
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "%s %s (commit %s, built %s)\n", name, version, commit, date)
			return nil
		},
	}
}
