// Package venv provisions an isolated Python dependency environment for
// auxiliary operational scripts: create-if-absent, pip upgrade, and optional
// requirements install, each as a checked external-process invocation.
package venv
