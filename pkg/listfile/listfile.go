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

package listfile

import (
	"fmt"
	"os"
	"strings"
)

// Options for configuring the Parser.
type Option func(*Parser)

// Parser parses newline-delimited list files with customizable settings.
type Parser struct {
	maxSize       int
	commentPrefix string
}

// WithMaxSize sets the maximum size (in bytes) of the file to be parsed.
// Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithCommentPrefix sets the prefix marking a line as a comment.
// Default is "#".
func WithCommentPrefix(prefix string) Option {
	return func(p *Parser) {
		p.commentPrefix = prefix
	}
}

// New creates a Parser with the given options.
func New(opts ...Option) *Parser {
	p := &Parser{
		maxSize:       1 << 20, // 1MB
		commentPrefix: "#",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses the list file at path.
func (p *Parser) ParseFile(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > int64(p.maxSize) {
		return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", path, p.maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(string(data)), nil
}

// Parse splits data into entries, trimming whitespace and dropping empty
// and comment lines. Entry order is preserved.
func (p *Parser) Parse(data string) []string {
	lines := strings.Split(data, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		entry := strings.TrimSpace(line)
		if entry == "" || strings.HasPrefix(entry, p.commentPrefix) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
