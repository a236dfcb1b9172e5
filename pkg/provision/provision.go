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

package provision

import (
	"context"
	"log/slog"
	"os"

	"github.com/NVIDIA/monsync/pkg/config"
	"github.com/NVIDIA/monsync/pkg/grafana"
	"github.com/NVIDIA/monsync/pkg/listfile"
)

// PluginInstaller installs a single plugin by identifier.
type PluginInstaller interface {
	Install(ctx context.Context, id string) error
}

// ServiceRestarter restarts the dashboard service.
type ServiceRestarter interface {
	Restart(ctx context.Context) error
}

// DatasourceAPI is the Grafana API surface the provisioner needs.
type DatasourceAPI interface {
	ListDatasources(ctx context.Context) ([]grafana.Datasource, error)
	CreateDatasource(ctx context.Context, ds grafana.Datasource) error
	WaitReady(ctx context.Context) error
}

// Option defines a configuration option for Provisioner.
type Option func(*Provisioner)

// WithPluginFile sets the plugin manifest path. Empty disables the plugin
// step.
func WithPluginFile(path string) Option {
	return func(p *Provisioner) {
		p.pluginFile = path
	}
}

// WithProvisioningPath sets the datasource provisioning file path. Empty
// selects the query-then-create API fallback.
func WithProvisioningPath(path string) Option {
	return func(p *Provisioner) {
		p.provisioningPath = path
	}
}

// WithInstaller sets the plugin installer.
func WithInstaller(installer PluginInstaller) Option {
	return func(p *Provisioner) {
		p.installer = installer
	}
}

// Provisioner runs the post-import stage: optional plugin installs followed
// by ensuring exactly one monitoring datasource exists. The whole stage is
// best-effort; callers log its error and continue.
type Provisioner struct {
	datasource config.Datasource
	api        DatasourceAPI
	service    ServiceRestarter
	installer  PluginInstaller
	parser     *listfile.Parser

	pluginFile       string
	provisioningPath string
}

// New creates a Provisioner for the given datasource declaration.
func New(ds config.Datasource, api DatasourceAPI, service ServiceRestarter, opts ...Option) *Provisioner {
	p := &Provisioner{
		datasource: ds,
		api:        api,
		service:    service,
		parser:     listfile.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the provisioning stage. The returned error reports the
// datasource step's outcome; per-plugin failures are logged and never
// surface.
func (p *Provisioner) Run(ctx context.Context) error {
	installed := p.installPlugins(ctx)

	if p.provisioningPath != "" {
		// Declarative variant: the provisioning file is rewritten every run
		// and the single restart below also activates any new plugins.
		return p.provisionByFile(ctx)
	}

	// API fallback: restart only when a plugin install changed state.
	if installed {
		if err := p.restartAndWait(ctx); err != nil {
			slog.Warn("plugin activation restart failed", "error", err)
		}
	}
	return p.ensureDatasourceViaAPI(ctx)
}

// installPlugins processes the plugin manifest and reports whether at least
// one install succeeded. A missing manifest is a warning, not an error.
func (p *Provisioner) installPlugins(ctx context.Context) bool {
	if p.pluginFile == "" || p.installer == nil {
		return false
	}

	if _, err := os.Stat(p.pluginFile); err != nil {
		slog.Warn("plugin list file not found, skipping plugin installs", "path", p.pluginFile)
		return false
	}

	plugins, err := p.parser.ParseFile(p.pluginFile)
	if err != nil {
		slog.Warn("failed to parse plugin list", "path", p.pluginFile, "error", err)
		return false
	}

	installed := 0
	for _, id := range plugins {
		if err := p.installer.Install(ctx, id); err != nil {
			slog.Warn("plugin install failed", "plugin", id, "error", err)
			continue
		}
		installed++
	}

	slog.Info("plugin installs finished", "requested", len(plugins), "installed", installed)
	return installed > 0
}

func (p *Provisioner) restartAndWait(ctx context.Context) error {
	if err := p.service.Restart(ctx); err != nil {
		return err
	}
	return p.api.WaitReady(ctx)
}
