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

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log rotation settings for the file sink.
const (
	// LogMaxSizeMB is the size threshold, in megabytes, at which the log
	// file is rotated.
	LogMaxSizeMB = 5

	// LogMaxBackups is the number of rotated files kept on disk.
	LogMaxBackups = 3
)

// envLogLevel is the environment variable controlling the default log level.
const envLogLevel = "LOG_LEVEL"

// ParseLevel converts a level name to a slog.Level. Unrecognized values
// default to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRotatingFileWriter returns a writer that appends to the file at path,
// rotating at LogMaxSizeMB and keeping LogMaxBackups compressed backups.
func NewRotatingFileWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    LogMaxSizeMB,
		MaxBackups: LogMaxBackups,
		Compress:   true,
	}
}

// NewStructuredLogger creates a JSON slog.Logger writing to w with module and
// version attributes attached to every record. Source location is included
// at debug level.
func NewStructuredLogger(module, version, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := ParseLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return slog.New(handler).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultStructuredLogger configures the process-default logger writing to
// stderr, with the level taken from the LOG_LEVEL environment variable.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv(envLogLevel))
}

// SetDefaultStructuredLoggerWithLevel configures the process-default logger
// writing to stderr at the given level.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level, os.Stderr))
}

// SetDefaultStructuredLoggerWithFile configures the process-default logger to
// write both to stderr and to a rotating file at path. The returned closer
// flushes the file sink; callers should close it at process exit.
func SetDefaultStructuredLoggerWithFile(module, version, level, path string) io.Closer {
	sink := NewRotatingFileWriter(path)
	slog.SetDefault(NewStructuredLogger(module, version, level, io.MultiWriter(os.Stderr, sink)))
	return sink
}
