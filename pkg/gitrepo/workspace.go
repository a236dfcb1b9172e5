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
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is a scoped temporary directory holding the fetched checkouts.
// Close removes the whole tree; callers must defer it so the workspace is
// reclaimed on every exit path.
type Workspace struct {
	root string
}

// NewWorkspace creates a fresh temporary workspace.
func NewWorkspace() (*Workspace, error) {
	root, err := os.MkdirTemp("", "monsync-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Dir returns the path for a named checkout inside the workspace. The
// directory is not created; the fetcher clones into it.
func (w *Workspace) Dir(name string) string {
	return filepath.Join(w.root, name)
}

// Close removes the workspace tree. Safe to call multiple times.
func (w *Workspace) Close() error {
	if w.root == "" {
		return nil
	}
	err := os.RemoveAll(w.root)
	w.root = ""
	return err
}
