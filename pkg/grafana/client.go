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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/NVIDIA/monsync/pkg/defaults"
	"github.com/NVIDIA/monsync/pkg/errors"
)

const userAgent = "monsync-grafana/1.0"

// Datasource is the Grafana datasource registration object, reduced to the
// fields the provisioner manages.
type Datasource struct {
	Name           string            `json:"name"`
	Type           string            `json:"type"`
	URL            string            `json:"url"`
	Access         string            `json:"access"`
	JSONData       map[string]any    `json:"jsonData,omitempty"`
	SecureJSONData map[string]string `json:"secureJsonData,omitempty"`
}

// Option defines a configuration option for Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithReadinessPolicy overrides the post-restart health poll bounds.
func WithReadinessPolicy(timeout, interval time.Duration) Option {
	return func(c *Client) {
		c.readinessTimeout = timeout
		c.readinessInterval = interval
	}
}

// Client is a minimal Grafana REST API client authenticated with a bearer
// API key.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client

	readinessTimeout  time.Duration
	readinessInterval time.Duration
}

// New creates a Grafana API client for the given base URL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: defaults.HTTPClientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   defaults.HTTPConnectTimeout,
					KeepAlive: defaults.HTTPKeepAlive,
				}).DialContext,
				TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
				ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
				IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
				ForceAttemptHTTP2:     true,
				TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		readinessTimeout:  defaults.ReadinessTimeout,
		readinessInterval: defaults.ReadinessPollInterval,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadDashboard submits a dashboard definition with overwrite semantics so
// re-uploading an unchanged dashboard is idempotent. Returns the response
// status code; non-2xx statuses are reported through the error without any
// expectation that the caller aborts the run.
func (c *Client) UploadDashboard(ctx context.Context, dashboard json.RawMessage) (int, error) {
	payload := map[string]any{
		"dashboard": dashboard,
		"overwrite": true,
	}

	status, _, err := c.do(ctx, http.MethodPost, "/api/dashboards/db", payload)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeImportFailed, "dashboard upload failed", err)
	}
	if status < 200 || status > 299 {
		return status, errors.New(errors.ErrCodeImportFailed,
			fmt.Sprintf("dashboard upload returned status %d", status))
	}
	return status, nil
}

// ListDatasources returns the datasources currently registered.
func (c *Client) ListDatasources(ctx context.Context) ([]Datasource, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/datasources", nil)
	if err != nil {
		return nil, fmt.Errorf("datasource listing failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("datasource listing returned status %d", status)
	}

	var out []Datasource
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("invalid datasource listing: %w", err)
	}
	return out, nil
}

// CreateDatasource registers a new datasource.
func (c *Client) CreateDatasource(ctx context.Context, ds Datasource) error {
	status, _, err := c.do(ctx, http.MethodPost, "/api/datasources", ds)
	if err != nil {
		return fmt.Errorf("datasource creation failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("datasource creation returned status %d", status)
	}
	return nil
}

// WaitReady polls the health endpoint until the service answers 200 or the
// readiness window closes. This replaces a blind post-restart delay with a
// bounded check.
func (c *Client) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.readinessTimeout)
	defer cancel()

	ticker := time.NewTicker(c.readinessInterval)
	defer ticker.Stop()

	for {
		if c.healthy(ctx) {
			slog.Info("grafana service ready")
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.New(errors.ErrCodeUnavailable,
				fmt.Sprintf("service did not become ready within %s", c.readinessTimeout))
		case <-ticker.C:
		}
	}
}

func (c *Client) healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// do performs one authenticated API round trip and returns the status code
// and response body.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
