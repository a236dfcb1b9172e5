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

package venv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/NVIDIA/monsync/pkg/defaults"
)

// Provisioner ensures an isolated Python environment exists for auxiliary
// scripts under the external-script directory.
type Provisioner struct {
	baseDir string
}

// New creates a Provisioner rooted at the external-script directory.
func New(baseDir string) *Provisioner {
	return &Provisioner{baseDir: baseDir}
}

// Ensure creates the venv if absent, upgrades pip, and installs the
// requirements manifest when present. Any non-zero exit is an error; earlier
// pipeline stages are not undone.
func (p *Provisioner) Ensure(ctx context.Context) error {
	venvDir := filepath.Join(p.baseDir, "venv")

	if _, err := os.Stat(venvDir); os.IsNotExist(err) {
		python, err := exec.LookPath("python3")
		if err != nil {
			return fmt.Errorf("python3 not found in PATH: %w", err)
		}
		slog.Info("creating virtualenv", "dir", venvDir)
		if err := p.run(ctx, defaults.VenvCreateTimeout, python, "-m", "venv", venvDir); err != nil {
			return fmt.Errorf("venv creation failed: %w", err)
		}
	}

	pip := filepath.Join(venvDir, "bin", "pip")

	if err := p.run(ctx, defaults.PipInstallTimeout, pip, "install", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("pip upgrade failed: %w", err)
	}

	requirements := filepath.Join(p.baseDir, "requirements.txt")
	if _, err := os.Stat(requirements); err == nil {
		slog.Info("installing requirements", "file", requirements)
		if err := p.run(ctx, defaults.PipInstallTimeout, pip, "install", "-r", requirements); err != nil {
			return fmt.Errorf("requirements install failed: %w", err)
		}
	}

	return nil
}

func (p *Provisioner) run(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err,
			strings.TrimSpace(string(out)))
	}
	return nil
}
