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

package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/monsync/pkg/grafana"
)

// provisioningDoc is the Grafana datasource provisioning file schema.
type provisioningDoc struct {
	APIVersion  int                      `yaml:"apiVersion"`
	Datasources []provisioningDatasource `yaml:"datasources"`
}

type provisioningDatasource struct {
	Name           string            `yaml:"name"`
	Type           string            `yaml:"type"`
	Access         string            `yaml:"access"`
	URL            string            `yaml:"url"`
	Editable       bool              `yaml:"editable"`
	JSONData       map[string]any    `yaml:"jsonData,omitempty"`
	SecureJSONData map[string]string `yaml:"secureJsonData,omitempty"`
}

// provisionByFile writes the datasource declaration to the provisioning
// path, restarts the service, and waits for it to come back. The file is
// rewritten unconditionally; idempotence comes from the overwrite.
//
// The password lands in the provisioning file as configured. Operators who
// do not want the secret on disk should configure it as a $__env{VAR}
// reference so Grafana resolves it at startup.
func (p *Provisioner) provisionByFile(ctx context.Context) error {
	doc := provisioningDoc{
		APIVersion: 1,
		Datasources: []provisioningDatasource{
			{
				Name:     p.datasource.Name,
				Type:     p.datasource.Type,
				Access:   "proxy",
				URL:      p.datasource.URL,
				Editable: false,
				JSONData: map[string]any{
					"username": p.datasource.User,
				},
				SecureJSONData: map[string]string{
					"password": p.datasource.Password,
				},
			},
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal provisioning file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.provisioningPath), 0755); err != nil {
		return fmt.Errorf("failed to create provisioning directory: %w", err)
	}
	if err := os.WriteFile(p.provisioningPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write provisioning file: %w", err)
	}

	slog.Info("datasource provisioning file written", "path", p.provisioningPath)

	if err := p.restartAndWait(ctx); err != nil {
		return fmt.Errorf("provisioning restart: %w", err)
	}
	return nil
}

// ensureDatasourceViaAPI registers the datasource only when no datasource of
// the same type exists yet.
func (p *Provisioner) ensureDatasourceViaAPI(ctx context.Context) error {
	existing, err := p.api.ListDatasources(ctx)
	if err != nil {
		return fmt.Errorf("datasource listing: %w", err)
	}

	for _, ds := range existing {
		if ds.Type == p.datasource.Type {
			slog.Info("datasource already registered", "name", ds.Name, "type", ds.Type)
			return nil
		}
	}

	err = p.api.CreateDatasource(ctx, grafana.Datasource{
		Name:   p.datasource.Name,
		Type:   p.datasource.Type,
		URL:    p.datasource.URL,
		Access: "proxy",
		JSONData: map[string]any{
			"username": p.datasource.User,
		},
		SecureJSONData: map[string]string{
			"password": p.datasource.Password,
		},
	})
	if err != nil {
		return fmt.Errorf("datasource creation: %w", err)
	}

	slog.Info("datasource registered", "name", p.datasource.Name, "type", p.datasource.Type)
	return nil
}
