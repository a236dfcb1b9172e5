package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/monsync/pkg/config"
	"github.com/NVIDIA/monsync/pkg/errors"
)

const (
	tplRepo  = "https://git.example.com/ops/zbx-templates.git"
	scrRepo  = "https://git.example.com/ops/zbx-scripts.git"
	grafRepo = "https://git.example.com/ops/graf-dashboards.git"
)

// recorder captures the ordered sequence of remote operations.
type recorder struct {
	events []string
}

func (r *recorder) add(event string) {
	r.events = append(r.events, event)
}

type fakeFetcher struct {
	dirs map[string]string
}

func (f *fakeFetcher) CloneOrPull(_ context.Context, repoURL, _ string) (string, error) {
	dir, ok := f.dirs[repoURL]
	if !ok {
		return "", errors.New(errors.ErrCodeFetchFailed, "unknown repo "+repoURL)
	}
	return dir, nil
}

type fakeMonitoring struct {
	rec      *recorder
	loginErr error
	imports  int
}

func (f *fakeMonitoring) Login(_ context.Context, _, _ string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.rec.add("login")
	return nil
}

func (f *fakeMonitoring) ImportConfiguration(_ context.Context, format, _ string) error {
	f.imports++
	f.rec.add("import:" + format)
	return nil
}

type fakeDashboards struct {
	rec     *recorder
	uploads int
}

func (f *fakeDashboards) UploadDashboard(_ context.Context, dashboard json.RawMessage) (int, error) {
	f.uploads++
	var d struct {
		Title string `json:"title"`
	}
	_ = json.Unmarshal(dashboard, &d)
	f.rec.add("upload:" + d.Title)
	return 200, nil
}

type fakeStage struct {
	rec  *recorder
	runs int
}

func (f *fakeStage) Run(_ context.Context) error {
	f.runs++
	f.rec.add("provision")
	return nil
}

// testConfig loads a config whose category list and script destination are
// controlled by the test.
func testConfig(t *testing.T, categories, scriptPath string) *config.Config {
	t.Helper()
	content := fmt.Sprintf(`{
  "category": %q,
  "zabbix": {"url": "http://zabbix.example.com/api_jsonrpc.php", "user": "Admin", "password": "zabbix"},
  "grafana": {"url": "http://grafana.example.com:3000", "api_key": "key"},
  "git_repos": {
    "zabbix_templates": %q,
    "zabbix_scripts": %q,
    "grafana_dashboards": %q
  },
  "externalscript_path": %q
}`, categories, tplRepo, scrRepo, grafRepo, scriptPath)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

// repoTree builds a source tree under a fresh temp dir:
// files maps "category/name" to content.
func repoTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func newFetcher(t *testing.T, tplFiles, scrFiles, grafFiles map[string]string) *fakeFetcher {
	t.Helper()
	return &fakeFetcher{dirs: map[string]string{
		tplRepo:  repoTree(t, tplFiles),
		scrRepo:  repoTree(t, scrFiles),
		grafRepo: repoTree(t, grafFiles),
	}}
}

func TestRunMissingCategoryIsNoOp(t *testing.T) {
	rec := &recorder{}
	// network exists in the template repo, db does not exist anywhere.
	fetcher := newFetcher(t,
		map[string]string{"network/tpl1.xml": "<zabbix_export/>"},
		nil, nil)
	monitoring := &fakeMonitoring{rec: rec}
	dashboards := &fakeDashboards{rec: rec}

	r := New(testConfig(t, "network,db", t.TempDir()), fetcher, monitoring, dashboards)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, monitoring.imports)
	assert.Equal(t, 1, summary.Templates)
	assert.Zero(t, summary.TemplateFailures)
}

func TestRunSkipsUnsupportedTemplateExtensions(t *testing.T) {
	rec := &recorder{}
	fetcher := newFetcher(t,
		map[string]string{
			"network/tpl1.yaml": "zabbix_export: {}",
			"network/README.md": "docs",
		},
		nil, nil)
	monitoring := &fakeMonitoring{rec: rec}

	r := New(testConfig(t, "network", t.TempDir()), fetcher, monitoring, &fakeDashboards{rec: rec})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, monitoring.imports)
	assert.Equal(t, []string{"login", "import:yaml"}, rec.events)
	assert.Zero(t, summary.TemplateFailures)
}

func TestRunAbortsOnAuthFailureBeforeAnyImport(t *testing.T) {
	rec := &recorder{}
	fetcher := newFetcher(t,
		map[string]string{"network/tpl1.xml": "<zabbix_export/>"},
		map[string]string{"network/check.sh": "#!/bin/sh\n"},
		map[string]string{"network/dash.json": `{"title":"net"}`})
	monitoring := &fakeMonitoring{
		rec:      rec,
		loginErr: errors.New(errors.ErrCodeAuthFailed, "login rejected"),
	}
	dashboards := &fakeDashboards{rec: rec}
	scriptDir := t.TempDir()

	r := New(testConfig(t, "network", scriptDir), fetcher, monitoring, dashboards)
	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthFailed, errors.CodeOf(err))

	// No import, copy, or upload happened.
	assert.Zero(t, monitoring.imports)
	assert.Zero(t, dashboards.uploads)
	entries, _ := os.ReadDir(scriptDir)
	assert.Empty(t, entries)
}

func TestRunOrderingWithinAndAcrossCategories(t *testing.T) {
	rec := &recorder{}
	fetcher := newFetcher(t,
		map[string]string{
			"network/tpl.xml": "<a/>",
			"db/tpl.yml":      "b: {}",
		},
		nil,
		map[string]string{
			"network/dash.json": `{"title":"net"}`,
			"db/dash.json":      `{"title":"db"}`,
		})
	monitoring := &fakeMonitoring{rec: rec}
	dashboards := &fakeDashboards{rec: rec}
	stage := &fakeStage{rec: rec}

	r := New(testConfig(t, "network,db", t.TempDir()), fetcher, monitoring, dashboards,
		WithProvisioner(stage))
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	// Categories in configuration order, templates before dashboards within
	// each, provisioning once after all categories.
	assert.Equal(t, []string{
		"login",
		"import:xml", "upload:net",
		"import:yaml", "upload:db",
		"provision",
	}, rec.events)
	assert.Equal(t, 1, stage.runs)
}

func TestRunInstallsScriptsWithExecutableBit(t *testing.T) {
	rec := &recorder{}
	fetcher := newFetcher(t, nil,
		map[string]string{
			"network/check.sh":  "#!/bin/sh\nexit 0\n",
			"network/data.conf": "key=value\n",
		},
		nil)
	scriptDir := t.TempDir()

	r := New(testConfig(t, "network", scriptDir), fetcher,
		&fakeMonitoring{rec: rec}, &fakeDashboards{rec: rec})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Scripts)

	info, err := os.Stat(filepath.Join(scriptDir, "check.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0111, "shell script must be executable")

	info, err = os.Stat(filepath.Join(scriptDir, "data.conf"))
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&0111, "plain file must not be executable")
}

func TestRunSkipsInvalidDashboardJSON(t *testing.T) {
	rec := &recorder{}
	fetcher := newFetcher(t, nil, nil,
		map[string]string{
			"network/good.json":   `{"title":"ok"}`,
			"network/broken.json": `{not json`,
			"network/notes.txt":   "ignored",
		})
	dashboards := &fakeDashboards{rec: rec}

	r := New(testConfig(t, "network", t.TempDir()), fetcher,
		&fakeMonitoring{rec: rec}, dashboards)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, dashboards.uploads)
	assert.Equal(t, 1, summary.Dashboards)
	assert.Equal(t, 1, summary.DashboardFailures)
}

func TestRunDryRunPerformsNoMutations(t *testing.T) {
	rec := &recorder{}
	fetcher := newFetcher(t,
		map[string]string{"network/tpl.xml": "<a/>"},
		map[string]string{"network/check.sh": "#!/bin/sh\n"},
		map[string]string{"network/dash.json": `{"title":"net"}`})
	monitoring := &fakeMonitoring{rec: rec}
	dashboards := &fakeDashboards{rec: rec}
	stage := &fakeStage{rec: rec}
	scriptDir := t.TempDir()

	r := New(testConfig(t, "network", scriptDir), fetcher, monitoring, dashboards,
		WithProvisioner(stage), WithDryRun(true))
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rec.events)
	assert.Zero(t, monitoring.imports)
	assert.Zero(t, dashboards.uploads)
	assert.Zero(t, stage.runs)
	entries, _ := os.ReadDir(scriptDir)
	assert.Empty(t, entries)
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	rec := &recorder{}
	fetcher := &fakeFetcher{dirs: map[string]string{}} // every fetch fails
	monitoring := &fakeMonitoring{rec: rec}

	r := New(testConfig(t, "network", t.TempDir()), fetcher, monitoring, &fakeDashboards{rec: rec})
	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetchFailed, errors.CodeOf(err))
	assert.Empty(t, rec.events)
}
