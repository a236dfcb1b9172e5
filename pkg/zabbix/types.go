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
	"encoding/json"
	"path/filepath"
	"strings"
)

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

// rpcError is the error object returned by the Zabbix API.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *rpcError) String() string {
	if e.Data != "" {
		return e.Message + ": " + e.Data
	}
	return e.Message
}

// rpcResponse is a JSON-RPC 2.0 response envelope. A success carries Result
// and no Error; any other shape is a failure.
type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

// loginParams are the user.login parameters.
type loginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// importRule is the per-object-type import policy.
type importRule struct {
	CreateMissing  bool `json:"createMissing"`
	UpdateExisting bool `json:"updateExisting"`
}

// importParams are the configuration.import parameters.
type importParams struct {
	Format string                `json:"format"`
	Rules  map[string]importRule `json:"rules"`
	Source string                `json:"source"`
}

// defaultImportRules applies create-missing/update-existing to every object
// type carried by a template bundle.
func defaultImportRules() map[string]importRule {
	rule := importRule{CreateMissing: true, UpdateExisting: true}
	return map[string]importRule{
		"templates":      rule,
		"items":          rule,
		"triggers":       rule,
		"discoveryRules": rule,
		"graphs":         rule,
		"valueMaps":      rule,
		"httptests":      rule,
	}
}

// formatByExtension maps template file extensions to import formats.
var formatByExtension = map[string]string{
	".xml":  "xml",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
}

// FormatForFile returns the configuration.import format for the given file
// path and whether the extension is a supported template format.
func FormatForFile(path string) (string, bool) {
	format, ok := formatByExtension[strings.ToLower(filepath.Ext(path))]
	return format, ok
}
