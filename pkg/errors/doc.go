// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.Wrap(
//	    errors.ErrCodeFetchFailed,
//	    "failed to synchronize template repository",
//	    gitErr,
//	)
package errors
