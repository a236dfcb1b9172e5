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

// Package defaults provides centralized configuration constants for monsync.
//
// This package defines timeout values and pacing parameters used across the
// codebase. Centralizing these values ensures consistency and makes tuning
// easier.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/monsync/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.GitCloneTimeout)
//	defer cancel()
//
// Every outbound HTTP request and external process invocation in monsync is
// bounded by one of these values; there are no unbounded blocking calls.
package defaults
