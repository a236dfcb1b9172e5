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
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/monsync/pkg/defaults"
	"github.com/NVIDIA/monsync/pkg/errors"
)

// ServiceManager restarts the Grafana systemd unit, preferring the systemd
// D-Bus API and falling back to systemctl where the bus is unavailable.
type ServiceManager struct {
	unit string
}

// NewServiceManager creates a manager for the given systemd unit name.
func NewServiceManager(unit string) *ServiceManager {
	return &ServiceManager{unit: unit}
}

// Restart restarts the unit and waits for systemd to report the job done.
func (s *ServiceManager) Restart(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ServiceRestartTimeout)
	defer cancel()

	slog.Info("restarting service", "unit", s.unit)

	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		slog.Warn("systemd bus unavailable, falling back to systemctl", "error", err)
		return s.restartViaSystemctl(ctx)
	}
	defer conn.Close()

	result := make(chan string, 1)
	if _, err := conn.RestartUnitContext(ctx, s.unit, "replace", result); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "restart request failed", err)
	}

	select {
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeTimeout, "restart did not complete", ctx.Err())
	case r := <-result:
		if r != "done" {
			return errors.New(errors.ErrCodeUnavailable,
				fmt.Sprintf("restart of %s finished with result %q", s.unit, r))
		}
	}
	return nil
}

func (s *ServiceManager) restartViaSystemctl(ctx context.Context) error {
	systemctl, err := exec.LookPath("systemctl")
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "systemctl not found in PATH", err)
	}

	cmd := exec.CommandContext(ctx, systemctl, "restart", s.unit)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable,
			"systemctl restart failed: "+strings.TrimSpace(string(out)), err)
	}
	return nil
}
