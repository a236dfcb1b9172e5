package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/monsync/pkg/errors"
)

const validConfig = `{
  "category": "network, db,,storage",
  "zabbix": {
    "url": "http://zabbix.example.com/api_jsonrpc.php",
    "user": "Admin",
    "password": "zabbix"
  },
  "grafana": {
    "url": "http://grafana.example.com:3000",
    "api_key": "eyJrIjoi"
  },
  "git_repos": {
    "zabbix_templates": "https://git.example.com/ops/zbx-templates.git",
    "zabbix_scripts": "https://git.example.com/ops/zbx-scripts.git",
    "grafana_dashboards": "https://git.example.com/ops/graf-dashboards.git"
  },
  "externalscript_path": "/usr/lib/zabbix/externalscripts",
  "venv_required": true
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"network", "db", "storage"}, c.Categories())
	assert.Equal(t, "Admin", c.Zabbix.User)
	assert.True(t, c.VenvRequired)

	// Defaults derived from the Zabbix section.
	assert.Equal(t, DefaultDatasourceName, c.Datasource.Name)
	assert.Equal(t, DefaultDatasourceType, c.Datasource.Type)
	assert.Equal(t, c.Zabbix.URL, c.Datasource.URL)
	assert.Equal(t, c.Zabbix.User, c.Datasource.User)
	assert.Equal(t, c.Zabbix.Password, c.Datasource.Password)
	assert.Equal(t, DefaultGrafanaService, c.Grafana.Service)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(writeConfig(t, "{not json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate string
	}{
		{
			name: "missing zabbix url",
			mutate: `{
  "zabbix": {"user": "Admin", "password": "zabbix"},
  "grafana": {"url": "http://g", "api_key": "k"},
  "git_repos": {"zabbix_templates": "a", "zabbix_scripts": "b", "grafana_dashboards": "c"},
  "externalscript_path": "/tmp"
}`,
		},
		{
			name: "missing grafana api key",
			mutate: `{
  "zabbix": {"url": "http://z", "user": "Admin", "password": "zabbix"},
  "grafana": {"url": "http://g"},
  "git_repos": {"zabbix_templates": "a", "zabbix_scripts": "b", "grafana_dashboards": "c"},
  "externalscript_path": "/tmp"
}`,
		},
		{
			name: "missing script path",
			mutate: `{
  "zabbix": {"url": "http://z", "user": "Admin", "password": "zabbix"},
  "grafana": {"url": "http://g", "api_key": "k"},
  "git_repos": {"zabbix_templates": "a", "zabbix_scripts": "b", "grafana_dashboards": "c"}
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mutate))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
		})
	}
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"plain", "network,db", []string{"network", "db"}},
		{"spaces", " network , db ", []string{"network", "db"}},
		{"empty entries", "network,,db,", []string{"network", "db"}},
		{"empty string", "", []string{}},
		{"single", "network", []string{"network"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCategories(tt.raw))
		})
	}
}
