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

package defaults

import "time"

// Source fetch timeouts for git operations.
const (
	// GitCloneTimeout is the maximum duration for cloning a repository.
	GitCloneTimeout = 5 * time.Minute

	// GitPullTimeout is the maximum duration for updating an existing checkout.
	GitPullTimeout = 2 * time.Minute
)

// HTTP client timeouts for outbound requests to the Zabbix and Grafana APIs.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// TemplateImportTimeout is the per-request timeout for bulk
	// configuration.import calls. Larger than HTTPClientTimeout because the
	// Zabbix server processes the whole template synchronously.
	TemplateImportTimeout = 2 * time.Minute
)

// Provisioning timeouts for the plugin/datasource stage.
const (
	// PluginInstallTimeout is the maximum duration for a single
	// grafana-cli plugin install invocation.
	PluginInstallTimeout = 3 * time.Minute

	// ServiceRestartTimeout is the maximum duration to wait for systemd to
	// report the restart job done.
	ServiceRestartTimeout = 30 * time.Second

	// ReadinessPollInterval is the delay between health-check probes after a
	// service restart.
	ReadinessPollInterval = 2 * time.Second

	// ReadinessTimeout bounds the post-restart health poll. The service not
	// answering within this window surfaces as an error instead of the run
	// proceeding blindly.
	ReadinessTimeout = 60 * time.Second
)

// Environment provisioning timeouts.
const (
	// VenvCreateTimeout is the maximum duration for creating the virtualenv.
	VenvCreateTimeout = 2 * time.Minute

	// PipInstallTimeout is the maximum duration for a pip install step.
	PipInstallTimeout = 10 * time.Minute
)

// Import pacing for bulk API calls.
const (
	// ImportRequestsPerSecond caps the rate of configuration.import calls so
	// a large template repository does not starve the Zabbix server.
	ImportRequestsPerSecond = 4

	// ImportBurst is the burst allowance for import pacing.
	ImportBurst = 2
)
