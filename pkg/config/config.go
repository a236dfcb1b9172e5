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
	"encoding/json"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/NVIDIA/monsync/pkg/errors"
)

// DefaultPath is the config file used when no path argument is given.
const DefaultPath = "auto_update_config_v2.json"

// Datasource provisioning defaults. The datasource URL defaults to the
// configured Zabbix API endpoint when left empty.
const (
	DefaultDatasourceName = "Zabbix"
	DefaultDatasourceType = "alexanderzobnin-zabbix-datasource"
	DefaultGrafanaService = "grafana-server.service"
)

// Zabbix holds the monitoring API endpoint and credentials.
type Zabbix struct {
	URL      string `json:"url" validate:"required,url"`
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Grafana holds the dashboard platform endpoint and API key, plus the
// optional provisioning knobs for the plugin/datasource stage.
type Grafana struct {
	URL    string `json:"url" validate:"required,url"`
	APIKey string `json:"api_key" validate:"required"`

	// PluginFile is a newline-delimited list of plugin identifiers to
	// install. Optional; absence of the file is a warning, not an error.
	PluginFile string `json:"plugin_file,omitempty"`

	// Service is the systemd unit restarted after plugin or datasource
	// changes. Defaults to grafana-server.service.
	Service string `json:"service,omitempty"`

	// ProvisioningPath is where the datasource provisioning YAML is written.
	// When empty, the query-then-create API fallback is used instead.
	ProvisioningPath string `json:"provisioning_path,omitempty"`
}

// GitRepos holds the three source repository URLs.
type GitRepos struct {
	ZabbixTemplates   string `json:"zabbix_templates" validate:"required"`
	ZabbixScripts     string `json:"zabbix_scripts" validate:"required"`
	GrafanaDashboards string `json:"grafana_dashboards" validate:"required"`
}

// Datasource describes the monitoring datasource that must exist in Grafana
// after the run. All fields are optional; unset fields take defaults derived
// from the Zabbix section.
type Datasource struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	URL      string `json:"url,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// Config is the static run configuration, read once per invocation and
// immutable afterwards.
type Config struct {
	// Category is the raw comma-separated category list as configured.
	Category string `json:"category"`

	Zabbix   Zabbix   `json:"zabbix" validate:"required"`
	Grafana  Grafana  `json:"grafana" validate:"required"`
	GitRepos GitRepos `json:"git_repos" validate:"required"`

	// ExternalScriptPath is the destination directory for operational
	// scripts (the Zabbix externalscripts directory).
	ExternalScriptPath string `json:"externalscript_path" validate:"required"`

	// VenvRequired enables the optional environment provisioning stage.
	VenvRequired bool `json:"venv_required"`

	Datasource Datasource `json:"datasource,omitempty"`

	// categories is the parsed, order-preserving category list.
	categories []string
}

// Load reads, decodes, validates, and defaults the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to read config file", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to parse config file", err)
	}

	c.applyDefaults()

	if err := validator.New().Struct(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "invalid configuration", err)
	}

	c.categories = parseCategories(c.Category)
	return &c, nil
}

// Categories returns the configured category names in configuration order.
func (c *Config) Categories() []string {
	return c.categories
}

func (c *Config) applyDefaults() {
	if c.Grafana.Service == "" {
		c.Grafana.Service = DefaultGrafanaService
	}
	if c.Datasource.Name == "" {
		c.Datasource.Name = DefaultDatasourceName
	}
	if c.Datasource.Type == "" {
		c.Datasource.Type = DefaultDatasourceType
	}
	if c.Datasource.URL == "" {
		c.Datasource.URL = c.Zabbix.URL
	}
	if c.Datasource.User == "" {
		c.Datasource.User = c.Zabbix.User
	}
	if c.Datasource.Password == "" {
		c.Datasource.Password = c.Zabbix.Password
	}
}

// parseCategories splits the comma-separated category string, trimming
// whitespace and dropping empty entries while preserving order.
func parseCategories(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
