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

package grafana

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/NVIDIA/monsync/pkg/defaults"
	"github.com/NVIDIA/monsync/pkg/errors"
)

// PluginInstaller installs Grafana plugins through the grafana-cli binary.
type PluginInstaller struct {
	cliPath string
}

// NewPluginInstaller resolves the grafana-cli binary from PATH.
func NewPluginInstaller() (*PluginInstaller, error) {
	cliPath, err := exec.LookPath("grafana-cli")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "grafana-cli not found in PATH", err)
	}
	return &PluginInstaller{cliPath: cliPath}, nil
}

// Install installs a single plugin by identifier. Installing an already
// present plugin is a success (grafana-cli upgrades in place).
func (p *PluginInstaller) Install(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.PluginInstallTimeout)
	defer cancel()

	slog.Info("installing grafana plugin", "plugin", id)

	cmd := exec.CommandContext(ctx, p.cliPath, "plugins", "install", id)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"plugin install failed: "+strings.TrimSpace(string(out)), err)
	}
	return nil
}
