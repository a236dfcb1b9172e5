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

package zabbix

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
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/monsync/pkg/defaults"
	"github.com/NVIDIA/monsync/pkg/errors"
)

const userAgent = "monsync-zabbix/1.0"

// Option defines a configuration option for Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLimiter overrides the import pacing limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// Client is a JSON-RPC 2.0 client for the Zabbix API. After a successful
// Login the session token is held for the lifetime of the client; there is
// no refresh or expiry handling, a run either succeeds with one token or
// aborts.
type Client struct {
	apiURL  string
	client  *http.Client
	limiter *rate.Limiter
	token   string
	nextID  atomic.Int64
}

// New creates a Zabbix API client for the given JSON-RPC endpoint.
func New(apiURL string, opts ...Option) *Client {
	c := &Client{
		apiURL: apiURL,
		// No overall client timeout: configuration.import runs far longer
		// than a login round trip, so each call carries its own context bound.
		client: &http.Client{
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
		limiter: rate.NewLimiter(rate.Limit(defaults.ImportRequestsPerSecond), defaults.ImportBurst),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates with the configured credentials and stores the opaque
// session token on the client. Any response without a result is an
// authentication failure; the caller is expected to abort the run.
func (c *Client) Login(ctx context.Context, user, password string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.HTTPClientTimeout)
	defer cancel()

	result, rpcErr, err := c.call(ctx, "user.login", loginParams{
		Username: user,
		Password: password,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeAuthFailed, "login request failed", err)
	}
	if rpcErr != nil {
		return errors.New(errors.ErrCodeAuthFailed, "login rejected: "+rpcErr.String())
	}

	var token string
	if err := json.Unmarshal(result, &token); err != nil || token == "" {
		return errors.New(errors.ErrCodeAuthFailed, "login response carried no token")
	}

	c.token = token
	slog.Info("zabbix login successful")
	return nil
}

// Token returns the session token obtained by Login, empty before login.
func (c *Client) Token() string {
	return c.token
}

// ImportConfiguration submits a template bundle through configuration.import
// with create-missing/update-existing rules for all carried object types.
// The call is paced by the client's rate limiter and bounded by the template
// import timeout.
func (c *Client) ImportConfiguration(ctx context.Context, format, source string) error {
	if c.token == "" {
		return errors.New(errors.ErrCodeAuthFailed, "import attempted without session token")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "import pacing interrupted", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.TemplateImportTimeout)
	defer cancel()

	_, rpcErr, err := c.call(ctx, "configuration.import", importParams{
		Format: format,
		Rules:  defaultImportRules(),
		Source: source,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeImportFailed, "import request failed", err)
	}
	if rpcErr != nil {
		return errors.New(errors.ErrCodeImportFailed, rpcErr.String())
	}
	return nil
}

// call performs one JSON-RPC round trip. Transport failures are returned as
// err; API-level failures are returned as rpcErr.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, *rpcError, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	// user.login is the only unauthenticated method.
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, nil, fmt.Errorf("invalid %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error, nil
	}
	if rpcResp.Result == nil {
		return nil, nil, fmt.Errorf("%s response carried neither result nor error", method)
	}
	return rpcResp.Result, nil, nil
}
