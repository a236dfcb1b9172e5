// Package logging provides structured logging utilities for monsync.
//
// It wraps the standard library slog package with project defaults: JSON
// output, module/version context injection, environment-based level
// configuration (LOG_LEVEL), and an optional rotating file sink (5 MB
// threshold, 3 compressed backups) for the run log.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    closer := logging.SetDefaultStructuredLoggerWithFile(
//	        "monsync", version, "info", "/var/log/monsync/run.log")
//	    defer closer.Close()
//
//	    slog.Info("starting", "version", version)
//	}
package logging
