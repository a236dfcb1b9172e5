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
	"os"
	"path/filepath"
	"strings"
)

// uploadDashboards submits every JSON dashboard in the category
// subdirectory with overwrite semantics. Non-success statuses are logged
// and do not abort the loop or the run.
func (r *Runner) uploadDashboards(ctx context.Context, repoDir, category string) {
	dir := filepath.Join(repoDir, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.Debug("no dashboard directory for category", "category", category)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("failed to read dashboard", "file", entry.Name(), "error", err)
			r.summary.DashboardFailures++
			continue
		}
		if !json.Valid(data) {
			r.log.Warn("dashboard is not valid JSON, skipping", "file", entry.Name())
			r.summary.DashboardFailures++
			continue
		}

		if r.dryRun {
			r.log.Info("dry-run: would upload dashboard", "file", entry.Name())
			continue
		}

		status, err := r.dashboards.UploadDashboard(ctx, json.RawMessage(data))
		if err != nil {
			r.log.Warn("dashboard upload failed",
				"file", entry.Name(), "status", status, "error", err)
			r.summary.DashboardFailures++
			continue
		}

		r.log.Info("dashboard uploaded", "file", entry.Name(), "status", status)
		r.summary.Dashboards++
	}
}
