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

package gitrepo

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/NVIDIA/monsync/pkg/defaults"
	"github.com/NVIDIA/monsync/pkg/errors"
)

// Fetcher synchronizes remote repositories into local directories using the
// git binary. Authentication is delegated to the operator's git credential
// configuration.
type Fetcher struct {
	gitPath string
}

// NewFetcher resolves the git binary from PATH.
func NewFetcher() (*Fetcher, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, "git not found in PATH", err)
	}
	return &Fetcher{gitPath: gitPath}, nil
}

// CloneOrPull ensures dir contains an up-to-date checkout of repoURL: it
// pulls when the directory already holds a checkout and clones otherwise.
// Returns the directory path. Any git failure is fatal to the caller's run.
func (f *Fetcher) CloneOrPull(ctx context.Context, repoURL, dir string) (string, error) {
	if _, err := os.Stat(dir); err == nil {
		if err := f.pull(ctx, dir); err != nil {
			return "", err
		}
		return dir, nil
	}

	if err := f.clone(ctx, repoURL, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (f *Fetcher) clone(ctx context.Context, repoURL, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.GitCloneTimeout)
	defer cancel()

	slog.Info("cloning repository", "url", repoURL, "dir", dir)

	cmd := exec.CommandContext(ctx, f.gitPath, "clone", "--depth", "1", repoURL, dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed,
			"git clone failed: "+strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (f *Fetcher) pull(ctx context.Context, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.GitPullTimeout)
	defer cancel()

	slog.Info("updating repository", "dir", dir)

	cmd := exec.CommandContext(ctx, f.gitPath, "-C", dir, "pull", "--ff-only")
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed,
			"git pull failed: "+strings.TrimSpace(string(out)), err)
	}
	return nil
}
