// Package sync implements the deployment pipeline: fetch the asset
// repositories, authenticate against the monitoring API, apply each
// configured category in order (templates, then scripts, then dashboards),
// run the plugin/datasource provisioning stage, and optionally prepare the
// script dependency environment.
//
// The pipeline is deliberately sequential and performs exactly one pass per
// invocation. Authentication and fetch failures abort the run; per-asset
// failures are isolated inside their category loop. There is no rollback:
// categories applied before a failure remain applied.
package sync
