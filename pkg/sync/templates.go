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
	"os"
	"path/filepath"

	"github.com/NVIDIA/monsync/pkg/zabbix"
)

// importTemplates submits every supported template file in the category
// subdirectory. A missing subdirectory is a no-op; per-file failures are
// logged and do not abort the loop.
func (r *Runner) importTemplates(ctx context.Context, repoDir, category string) {
	dir := filepath.Join(repoDir, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.Debug("no template directory for category", "category", category)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		format, ok := zabbix.FormatForFile(path)
		if !ok {
			r.log.Warn("unsupported template format, skipping", "file", entry.Name())
			continue
		}

		source, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("failed to read template", "file", entry.Name(), "error", err)
			r.summary.TemplateFailures++
			continue
		}

		if r.dryRun {
			r.log.Info("dry-run: would import template", "file", entry.Name(), "format", format)
			continue
		}

		if err := r.monitoring.ImportConfiguration(ctx, format, string(source)); err != nil {
			r.log.Warn("template import failed", "file", entry.Name(), "error", err)
			r.summary.TemplateFailures++
			continue
		}

		r.log.Info("template imported", "file", entry.Name())
		r.summary.Templates++
	}
}
