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
	"io"
	"os"
	"path/filepath"
	"strings"
)

// executableSuffixes mark scripts that receive the executable bit after
// installation.
var executableSuffixes = []string{".sh", ".py"}

// installScripts copies every regular file in the category subdirectory to
// the external-script directory. Copies are direct, checked filesystem
// operations; per-file failures are logged and do not abort the loop.
func (r *Runner) installScripts(ctx context.Context, repoDir, category string) {
	dir := filepath.Join(repoDir, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.Debug("no script directory for category", "category", category)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if !entry.Type().IsRegular() {
			continue
		}

		src := filepath.Join(dir, entry.Name())
		dst := filepath.Join(r.cfg.ExternalScriptPath, entry.Name())

		if r.dryRun {
			r.log.Info("dry-run: would install script", "file", entry.Name(), "dst", dst)
			continue
		}

		if err := installScript(src, dst); err != nil {
			r.log.Warn("script install failed", "file", entry.Name(), "error", err)
			r.summary.ScriptFailures++
			continue
		}

		r.log.Info("script installed", "file", entry.Name(), "dst", dst)
		r.summary.Scripts++
	}
}

// installScript copies src to dst and sets the executable bit for
// recognized script suffixes.
func installScript(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if isExecutableScript(dst) {
		return os.Chmod(dst, 0755)
	}
	return nil
}

func isExecutableScript(path string) bool {
	for _, suffix := range executableSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
