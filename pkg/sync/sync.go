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

package sync

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/NVIDIA/monsync/pkg/config"
	"github.com/NVIDIA/monsync/pkg/errors"
	"github.com/NVIDIA/monsync/pkg/gitrepo"
)

// Checkout directory names inside the run workspace.
const (
	templatesDir  = "zbx_tpl"
	scriptsDir    = "zbx_scr"
	dashboardsDir = "graf_dash"
)

// Fetcher synchronizes a repository into a local directory.
type Fetcher interface {
	CloneOrPull(ctx context.Context, repoURL, dir string) (string, error)
}

// MonitoringAPI is the Zabbix surface the pipeline needs.
type MonitoringAPI interface {
	Login(ctx context.Context, user, password string) error
	ImportConfiguration(ctx context.Context, format, source string) error
}

// DashboardAPI is the Grafana surface the pipeline needs.
type DashboardAPI interface {
	UploadDashboard(ctx context.Context, dashboard json.RawMessage) (int, error)
}

// Stage is a best-effort pipeline stage run after all categories.
type Stage interface {
	Run(ctx context.Context) error
}

// EnvProvisioner prepares the script dependency environment.
type EnvProvisioner interface {
	Ensure(ctx context.Context) error
}

// Summary counts the remote side effects of one run.
type Summary struct {
	Templates         int `json:"templates"`
	TemplateFailures  int `json:"templateFailures"`
	Scripts           int `json:"scripts"`
	ScriptFailures    int `json:"scriptFailures"`
	Dashboards        int `json:"dashboards"`
	DashboardFailures int `json:"dashboardFailures"`
}

// Option defines a configuration option for Runner.
type Option func(*Runner)

// WithProvisioner sets the plugin/datasource stage.
func WithProvisioner(stage Stage) Option {
	return func(r *Runner) {
		r.provisioner = stage
	}
}

// WithEnvProvisioner sets the optional environment provisioning stage.
func WithEnvProvisioner(env EnvProvisioner) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithDryRun enumerates assets and logs intended actions without performing
// any remote mutation.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// Runner executes one deployment pass: fetch sources, authenticate, apply
// each configured category (templates, then scripts, then dashboards), run
// the provisioning stage, and optionally prepare the script environment.
// There is no rollback; partial application across categories is accepted.
type Runner struct {
	cfg         *config.Config
	fetcher     Fetcher
	monitoring  MonitoringAPI
	dashboards  DashboardAPI
	provisioner Stage
	env         EnvProvisioner
	dryRun      bool

	log     *slog.Logger
	summary Summary
}

// New creates a Runner for one invocation.
func New(cfg *config.Config, fetcher Fetcher, monitoring MonitoringAPI, dashboards DashboardAPI, opts ...Option) *Runner {
	r := &Runner{
		cfg:        cfg,
		fetcher:    fetcher,
		monitoring: monitoring,
		dashboards: dashboards,
		log:        slog.With("run", uuid.NewString()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs the pipeline and returns the run summary. Fetch and
// authentication failures abort the run; per-asset failures are counted and
// logged but never abort a category loop.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	ws, err := gitrepo.NewWorkspace()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create workspace", err)
	}
	defer func() {
		if err := ws.Close(); err != nil {
			r.log.Warn("workspace cleanup failed", "error", err)
		}
	}()

	r.log.Info("fetching source repositories")
	tplDir, err := r.fetcher.CloneOrPull(ctx, r.cfg.GitRepos.ZabbixTemplates, ws.Dir(templatesDir))
	if err != nil {
		return nil, err
	}
	scrDir, err := r.fetcher.CloneOrPull(ctx, r.cfg.GitRepos.ZabbixScripts, ws.Dir(scriptsDir))
	if err != nil {
		return nil, err
	}
	grafDir, err := r.fetcher.CloneOrPull(ctx, r.cfg.GitRepos.GrafanaDashboards, ws.Dir(dashboardsDir))
	if err != nil {
		return nil, err
	}

	// Nothing downstream can succeed without a session token; auth failure
	// aborts before any import, copy, or upload.
	if !r.dryRun {
		if err := r.monitoring.Login(ctx, r.cfg.Zabbix.User, r.cfg.Zabbix.Password); err != nil {
			return nil, err
		}
	}

	for _, category := range r.cfg.Categories() {
		r.log.Info("processing category", "category", category)
		r.importTemplates(ctx, tplDir, category)
		r.installScripts(ctx, scrDir, category)
		r.uploadDashboards(ctx, grafDir, category)
	}

	if r.provisioner != nil {
		if r.dryRun {
			r.log.Info("dry-run: skipping plugin/datasource provisioning")
		} else if err := r.provisioner.Run(ctx); err != nil {
			// Best-effort stage by contract.
			r.log.Warn("provisioning stage failed", "error", err)
		}
	}

	if r.cfg.VenvRequired && r.env != nil && !r.dryRun {
		r.log.Info("provisioning script environment")
		if err := r.env.Ensure(ctx); err != nil {
			return &r.summary, err
		}
	}

	r.log.Info("run finished",
		"templates", r.summary.Templates,
		"templateFailures", r.summary.TemplateFailures,
		"scripts", r.summary.Scripts,
		"scriptFailures", r.summary.ScriptFailures,
		"dashboards", r.summary.Dashboards,
		"dashboardFailures", r.summary.DashboardFailures,
	)
	return &r.summary, nil
}
